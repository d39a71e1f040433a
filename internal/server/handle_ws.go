package server

import (
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/quizverse/duelroom/internal/duel"
)

// handleWS delivers the same room event stream over a WebSocket, for
// clients that prefer a socket to SSE. Server-to-client only: actions go
// through the REST endpoints.
func handleWS(logger *slog.Logger, registry *duel.Registry, bus *duel.Bus, poller *duel.Poller) http.HandlerFunc {
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

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()

		sub := bus.Subscribe(code, playerID)
		defer bus.Unsubscribe(code, sub)

		go poller.Run(ctx, code, state.ID, playerID)

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.Done():
				conn.Close(websocket.StatusNormalClosure, "disconnected by server")
				return
			case data := <-sub.C():
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
