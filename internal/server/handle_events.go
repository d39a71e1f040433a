package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/quizverse/duelroom/internal/duel"
)

// handleEvents streams room events over SSE. Push is the primary channel;
// for as long as the stream is open a reconciliation poller re-reads the
// durable store and addresses catch-up snapshots to this subscriber only.
// Both the subscription and the poller die with the request context.
func handleEvents(registry *duel.Registry, bus *duel.Bus, poller *duel.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerId")
		if playerID == "" {
			writeError(w, http.StatusBadRequest, "playerId query parameter required")
			return
		}

		code := roomCode(r)
		state, err := registry.Snapshot(code)
		if err != nil {
			writeDuelError(w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		sub := bus.Subscribe(code, playerID)
		defer bus.Unsubscribe(code, sub)

		go poller.Run(r.Context(), code, state.ID, playerID)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-sub.Done():
				// Force-disconnected (kick or room teardown).
				return
			case data := <-sub.C():
				fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
