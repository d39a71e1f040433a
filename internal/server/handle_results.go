package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type ResultItem struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"playerId"`
	Pseudo      string `json:"pseudo"`
	TotalPoints int    `json:"totalPoints"`
	CompletedAt string `json:"completedAt"`
}

type ResultsResponse struct {
	SessionID string       `json:"sessionId"`
	Results   []ResultItem `json:"results"`
}

// handleResults serves the historical ranking of a finished session from
// the durable store. Unlike the live endpoints it works after the room is
// long gone from the registry.
func handleResults(store *SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		rows, err := store.SessionResults(r.Context(), sessionID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no results for this session")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := ResultsResponse{SessionID: sessionID}
		for _, row := range rows {
			resp.Results = append(resp.Results, ResultItem{
				Rank:        row.Rank,
				PlayerID:    row.PlayerID,
				Pseudo:      row.Pseudo,
				TotalPoints: row.TotalPoints,
				CompletedAt: row.CompletedAt.UTC().Format(time.RFC3339Nano),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
