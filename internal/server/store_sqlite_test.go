package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quizverse/duelroom/internal/duel"
)

func testSessionRecord() duel.SessionRecord {
	return duel.SessionRecord{
		ID:   "sess-1",
		Code: "ABC234",
		Settings: duel.Settings{
			Name: "friday duel", Mode: "classic", TimerSeconds: 20,
		},
		Status:   duel.StatusLobby,
		LeaderID: "leader",
		Participants: []duel.Participant{
			{ID: "leader", Pseudo: "Alice"},
			{ID: "p2", Pseudo: "Bob"},
		},
	}
}

func TestSQLiteStoreSessionUpsert(t *testing.T) {
	_, deps := newTestRouter(t)
	ctx := context.Background()
	store := deps.Store

	rec := testSessionRecord()
	if err := store.SaveSession(ctx, rec); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	rec.Status = duel.StatusActive
	rec.CurrentQuestionIndex = 1
	if err := store.SaveSession(ctx, rec); err != nil {
		t.Fatalf("SaveSession upsert: %v", err)
	}

	p, err := store.SessionProgress(ctx, rec.ID)
	if err != nil {
		t.Fatalf("SessionProgress: %v", err)
	}
	if p.Status != string(duel.StatusActive) {
		t.Errorf("status = %q, want active", p.Status)
	}
	if p.CurrentQuestionIndex != 1 {
		t.Errorf("index = %d, want 1", p.CurrentQuestionIndex)
	}
	if p.Total != 2 {
		t.Errorf("total = %d, want 2", p.Total)
	}
	if p.Answered != 0 {
		t.Errorf("answered = %d, want 0", p.Answered)
	}
}

func TestSQLiteStoreAnswerFirstWriteWins(t *testing.T) {
	_, deps := newTestRouter(t)
	ctx := context.Background()
	store := deps.Store

	if err := store.SaveSession(ctx, testSessionRecord()); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	selected := 2
	first := duel.Answer{
		SessionID: "sess-1", PlayerID: "leader", QuestionID: "q1",
		QuestionIndex: 0, SelectedIndex: &selected,
		TimeRemaining: 7, PointsEarned: 13.5, CreatedAt: time.Now(),
	}
	if err := store.SaveAnswer(ctx, first); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}

	// Same key with different values must not overwrite the first row.
	second := first
	second.SelectedIndex = nil
	second.PointsEarned = 0
	if err := store.SaveAnswer(ctx, second); err != nil {
		t.Fatalf("SaveAnswer repeat: %v", err)
	}

	var points float64
	err := deps.DB.QueryRowContext(ctx, `
		SELECT points_earned FROM answers
		WHERE session_id = ? AND player_id = ? AND question_id = ?
	`, "sess-1", "leader", "q1").Scan(&points)
	if err != nil {
		t.Fatalf("reading answer back: %v", err)
	}
	if points != 13.5 {
		t.Errorf("points = %v, want first write 13.5", points)
	}

	p, err := store.SessionProgress(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionProgress: %v", err)
	}
	if p.Answered != 1 {
		t.Errorf("answered = %d, want 1", p.Answered)
	}
}

func TestSQLiteStoreResultsRoundTrip(t *testing.T) {
	_, deps := newTestRouter(t)
	ctx := context.Background()
	store := deps.Store

	rows := []duel.ResultRow{
		{PlayerID: "p2", Pseudo: "Bob", TotalPoints: 28, Rank: 1, CompletedAt: time.Now()},
		{PlayerID: "leader", Pseudo: "Alice", TotalPoints: 18, Rank: 2, CompletedAt: time.Now()},
	}
	if err := store.SaveResults(ctx, "sess-1", rows); err != nil {
		t.Fatalf("SaveResults: %v", err)
	}

	got, err := store.SessionResults(ctx, "sess-1")
	if err != nil {
		t.Fatalf("SessionResults: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].PlayerID != "p2" || got[0].Rank != 1 {
		t.Errorf("first row = %+v, want p2 at rank 1", got[0])
	}
	if got[1].TotalPoints != 18 {
		t.Errorf("second row points = %d, want 18", got[1].TotalPoints)
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	_, deps := newTestRouter(t)
	ctx := context.Background()

	if _, err := deps.Store.SessionProgress(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionProgress err = %v, want ErrNotFound", err)
	}
	if _, err := deps.Store.SessionResults(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionResults err = %v, want ErrNotFound", err)
	}
}
