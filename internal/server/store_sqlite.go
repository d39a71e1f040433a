package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quizverse/duelroom/internal/duel"
)

var ErrNotFound = errors.New("not found")

var _ duel.SessionStore = (*SQLiteStore)(nil)

// SQLiteStore is the durable session store. The in-memory room is the
// operational source of truth; these rows back the reconciliation poller
// and historical result reads.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) SaveSession(ctx context.Context, rec duel.SessionRecord) error {
	participants, err := json.Marshal(rec.Participants)
	if err != nil {
		return fmt.Errorf("encoding participants: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, code, name, mode, universe, difficulty, status,
			current_question_index, timer_seconds, leader_id, participants)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			current_question_index = excluded.current_question_index,
			participants = excluded.participants,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, rec.ID, rec.Code, rec.Name, rec.Mode, rec.Universe, rec.Difficulty,
		string(rec.Status), rec.CurrentQuestionIndex, rec.TimerSeconds,
		rec.LeaderID, string(participants))
	return err
}

// SaveAnswer inserts an answer row; the composite primary key makes a
// repeat insert for the same (session, player, question) a silent no-op,
// so the first write always wins.
func (s *SQLiteStore) SaveAnswer(ctx context.Context, a duel.Answer) error {
	var selected sql.NullInt64
	if a.SelectedIndex != nil {
		selected = sql.NullInt64{Int64: int64(*a.SelectedIndex), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (session_id, player_id, question_id, question_index,
			selected_index, time_remaining, points_earned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, player_id, question_id) DO NOTHING
	`, a.SessionID, a.PlayerID, a.QuestionID, a.QuestionIndex,
		selected, a.TimeRemaining, a.PointsEarned,
		a.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) SaveResults(ctx context.Context, sessionID string, rows []duel.ResultRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO results (session_id, player_id, pseudo, total_points, rank, completed_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (session_id, player_id) DO UPDATE SET
				total_points = excluded.total_points,
				rank = excluded.rank
		`, sessionID, row.PlayerID, row.Pseudo, row.TotalPoints, row.Rank,
			row.CompletedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) SessionProgress(ctx context.Context, sessionID string) (duel.Progress, error) {
	var p duel.Progress
	var participantsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT status, current_question_index, participants
		FROM sessions WHERE id = ?
	`, sessionID).Scan(&p.Status, &p.CurrentQuestionIndex, &participantsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}

	var participants []duel.Participant
	if err := json.Unmarshal([]byte(participantsJSON), &participants); err != nil {
		return p, fmt.Errorf("decoding participants: %w", err)
	}
	p.Total = len(participants)

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM answers
		WHERE session_id = ? AND question_index = ?
	`, sessionID, p.CurrentQuestionIndex).Scan(&p.Answered)
	return p, err
}

// SessionResults reads the persisted final ranking for a session.
func (s *SQLiteStore) SessionResults(ctx context.Context, sessionID string) ([]duel.ResultRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, pseudo, total_points, rank, completed_at
		FROM results WHERE session_id = ?
		ORDER BY rank
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []duel.ResultRow
	for rows.Next() {
		var row duel.ResultRow
		var completedAt string
		if err := rows.Scan(&row.PlayerID, &row.Pseudo, &row.TotalPoints, &row.Rank, &completedAt); err != nil {
			return nil, err
		}
		row.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, rows.Err()
}
