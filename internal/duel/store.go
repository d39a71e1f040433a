package duel

import (
	"context"
	"time"
)

// Participant is the durable summary of one room member.
type Participant struct {
	ID     string `json:"id"`
	Pseudo string `json:"pseudo"`
}

// SessionRecord is the durable session row. The in-memory room stays
// authoritative for gameplay; this row is the system of record for
// historical reads and the reconciliation poller.
type SessionRecord struct {
	ID                   string
	Code                 string
	Settings
	Status               Status
	CurrentQuestionIndex int
	LeaderID             string
	Participants         []Participant
}

// Progress is the store-side view the reconciliation poller reads: session
// status, the persisted current question index, and how many answer rows
// exist for that index.
type Progress struct {
	Status               string
	CurrentQuestionIndex int
	Answered             int
	Total                int
}

// ResultRow is the persisted end-of-game aggregate for one player. Totals
// are rounded to integers only here; ranking comparisons upstream use the
// raw float values.
type ResultRow struct {
	PlayerID    string
	Pseudo      string
	TotalPoints int
	Rank        int
	CompletedAt time.Time
}

// SessionStore is the durable-store surface the coordinator consumes. The
// coordinator only needs upsert and point-lookup semantics; the concrete
// implementation lives in the server package.
type SessionStore interface {
	// SaveSession upserts the session row.
	SaveSession(ctx context.Context, rec SessionRecord) error

	// SaveAnswer inserts an answer row, first write wins. Inserting an
	// existing (session, player, question) key is a silent no-op.
	SaveAnswer(ctx context.Context, a Answer) error

	// SaveResults writes the final ranked aggregates for a session.
	SaveResults(ctx context.Context, sessionID string, rows []ResultRow) error

	// SessionProgress reads the poller's catch-up snapshot.
	SessionProgress(ctx context.Context, sessionID string) (Progress, error)
}
