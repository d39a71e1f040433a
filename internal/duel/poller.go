package duel

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Poller is the fallback consistency mechanism for clients holding a live
// view. Push on the Bus stays the primary channel; while a view is open the
// poller re-reads the durable store at a low frequency and delivers a
// catch-up snapshot to that one subscriber, healing missed events. It is
// never the primary driver: it stops the moment the view's context is
// cancelled.
type Poller struct {
	store    SessionStore
	bus      *Bus
	clock    clockwork.Clock
	logger   *slog.Logger
	interval time.Duration
}

func NewPoller(store SessionStore, bus *Bus, clock clockwork.Clock, logger *slog.Logger, interval time.Duration) *Poller {
	return &Poller{
		store:    store,
		bus:      bus,
		clock:    clock,
		logger:   logger,
		interval: interval,
	}
}

// Run polls until ctx is cancelled, delivering game:sync events addressed
// only to playerID's subscriptions on the room channel. Blocking: callers
// run it in the goroutine serving the view.
func (p *Poller) Run(ctx context.Context, roomCode, sessionID, playerID string) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			progress, err := p.store.SessionProgress(ctx, sessionID)
			if err != nil {
				p.logger.Warn("reconciliation read failed",
					"session", sessionID, "error", err)
				continue
			}
			p.bus.PublishTo(roomCode, playerID, Event{Type: EventSync, Payload: SyncPayload{
				Status:               progress.Status,
				CurrentQuestionIndex: progress.CurrentQuestionIndex,
				Answered:             progress.Answered,
				Total:                progress.Total,
			}})
		}
	}
}
