package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizverse/duelroom/internal/duel"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// GateErrorResponse is the body of a failed non-forced advance. It carries
// the counts so the client can offer the leader a force override.
type GateErrorResponse struct {
	Error    string `json:"error"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

// writeDuelError maps core errors to HTTP statuses. Anything unrecognized
// is an internal error with a generic retry message.
func writeDuelError(w http.ResponseWriter, err error) {
	var gate *duel.NotAllAnsweredError
	if errors.As(err, &gate) {
		writeJSON(w, http.StatusConflict, GateErrorResponse{
			Error:    "not all players answered",
			Answered: gate.Answered,
			Total:    gate.Total,
		})
		return
	}

	switch {
	case errors.Is(err, duel.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, duel.ErrPlayerBanned),
		errors.Is(err, duel.ErrUnauthorized),
		errors.Is(err, duel.ErrNotInRoom):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, duel.ErrRoomNotJoinable),
		errors.Is(err, duel.ErrGameAlreadyStarted),
		errors.Is(err, duel.ErrRoomNotActive),
		errors.Is(err, duel.ErrQuestionClosed),
		errors.Is(err, duel.ErrNotEnoughPlayers),
		errors.Is(err, duel.ErrNoQuestions):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, duel.ErrCodeExhausted):
		writeError(w, http.StatusServiceUnavailable, "could not allocate a room code, try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
