package duel

import (
	"context"
	"log/slog"
	"time"
)

const (
	persistAttempts = 3
	persistBackoff  = 250 * time.Millisecond
	persistTimeout  = 5 * time.Second
)

// persistAsync runs a durable-store write in the background with bounded
// retries. Write failures are logged and never surfaced to players: the
// in-memory room stays the operational source of truth, the store is the
// system of record for history.
func persistAsync(logger *slog.Logger, what string, fn func(context.Context) error) {
	go func() {
		backoff := persistBackoff
		var err error
		for attempt := 1; attempt <= persistAttempts; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			err = fn(ctx)
			cancel()
			if err == nil {
				return
			}
			logger.Warn("durable write failed",
				"what", what, "attempt", attempt, "error", err)
			if attempt < persistAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		logger.Error("durable write abandoned", "what", what, "error", err)
	}()
}
