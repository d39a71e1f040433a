package server

import (
	"net/http"

	"github.com/quizverse/duelroom/internal/duel"
)

type StartRequest struct {
	PlayerID  string          `json:"playerId"`
	Questions []duel.Question `json:"questions"`
}

func handleStart(coord *duel.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}

		state, err := coord.StartGame(roomCode(r), req.PlayerID, req.Questions)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

type AnswerRequest struct {
	PlayerID      string  `json:"playerId"`
	QuestionIndex int     `json:"questionIndex"`
	SelectedIndex int     `json:"selectedIndex"`
	TimeRemaining float64 `json:"timeRemaining"`
}

func handleAnswer(coord *duel.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}

		res, err := coord.SubmitAnswer(roomCode(r), req.PlayerID,
			req.QuestionIndex, req.SelectedIndex, req.TimeRemaining)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type AdvanceRequest struct {
	PlayerID string `json:"playerId"`
	Force    bool   `json:"force"`

	// QuestionIndex, when set, pins the advance to that question so a
	// duplicated confirmation cannot skip two questions.
	QuestionIndex *int `json:"questionIndex,omitempty"`
}

func handleAdvance(coord *duel.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdvanceRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}

		fromIndex := -1
		if req.QuestionIndex != nil {
			fromIndex = *req.QuestionIndex
		}

		state, err := coord.Advance(roomCode(r), req.PlayerID, fromIndex, req.Force)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

type CancelRequest struct {
	PlayerID string `json:"playerId"`
}

func handleCancel(coord *duel.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CancelRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}

		if err := coord.Cancel(roomCode(r), req.PlayerID); err != nil {
			writeDuelError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
