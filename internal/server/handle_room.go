package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizverse/duelroom/internal/duel"
)

type CreateRoomRequest struct {
	Name         string `json:"name"`
	Mode         string `json:"mode"`
	Universe     string `json:"universe"`
	Difficulty   string `json:"difficulty"`
	TimerSeconds int    `json:"timerSeconds"`
	PlayerID     string `json:"playerId"`
	Pseudo       string `json:"pseudo"`
}

func handleCreateRoom(registry *duel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.PlayerID = strings.TrimSpace(req.PlayerID)
		req.Pseudo = strings.TrimSpace(req.Pseudo)
		if req.PlayerID == "" || req.Pseudo == "" {
			writeError(w, http.StatusBadRequest, "playerId and pseudo are required")
			return
		}
		if req.TimerSeconds <= 0 {
			writeError(w, http.StatusBadRequest, "timerSeconds must be positive")
			return
		}

		state, err := registry.CreateRoom(duel.Settings{
			Name:         req.Name,
			Mode:         req.Mode,
			Universe:     req.Universe,
			Difficulty:   req.Difficulty,
			TimerSeconds: req.TimerSeconds,
		}, req.PlayerID, req.Pseudo)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, state)
	}
}

func handleRoomLookup(registry *duel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := registry.Snapshot(roomCode(r))
		if err != nil {
			writeDuelError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

// handleRoomState is the leader's live progress view: same snapshot as the
// lookup, kept as a separate endpoint so the answered/total counters can be
// polled without overloading room lookup semantics.
func handleRoomState(registry *duel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := registry.Snapshot(roomCode(r))
		if err != nil {
			writeDuelError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

type JoinRequest struct {
	PlayerID string `json:"playerId"`
	Pseudo   string `json:"pseudo"`
}

func handleJoin(registry *duel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.PlayerID = strings.TrimSpace(req.PlayerID)
		req.Pseudo = strings.TrimSpace(req.Pseudo)
		if req.PlayerID == "" || req.Pseudo == "" {
			writeError(w, http.StatusBadRequest, "playerId and pseudo are required")
			return
		}

		state, err := registry.JoinRoom(roomCode(r), req.PlayerID, req.Pseudo)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

type LeaveRequest struct {
	PlayerID string `json:"playerId"`
}

func handleLeave(registry *duel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LeaveRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}

		if err := registry.LeaveRoom(roomCode(r), req.PlayerID); err != nil {
			writeDuelError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type KickRequest struct {
	PlayerID string `json:"playerId"` // acting player, must be the leader
	TargetID string `json:"targetId"`
}

func handleKick(registry *duel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req KickRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerID == "" || req.TargetID == "" {
			writeError(w, http.StatusBadRequest, "playerId and targetId are required")
			return
		}

		if err := registry.KickPlayer(roomCode(r), req.PlayerID, req.TargetID); err != nil {
			writeDuelError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func roomCode(r *http.Request) string {
	return strings.ToUpper(chi.URLParam(r, "code"))
}
