package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/quizverse/duelroom/internal/database"
	"github.com/quizverse/duelroom/internal/duel"
	"github.com/quizverse/duelroom/internal/migrations"
)

// newTestRouter wires the full handler stack against an in-memory SQLite
// store, mirroring production composition.
func newTestRouter(t *testing.T) (*chi.Mux, Deps) {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewRealClock()
	bus := duel.NewBus()
	store := NewSQLiteStore(db)
	registry := duel.NewRegistry(bus, store, clock, logger, 5, time.Minute)
	coordinator := duel.NewCoordinator(registry, bus, store, clock, logger, 2)
	poller := duel.NewPoller(store, bus, clock, logger, 30*time.Second)

	deps := Deps{
		Logger:      logger,
		DB:          db,
		Registry:    registry,
		Coordinator: coordinator,
		Bus:         bus,
		Poller:      poller,
		Store:       store,
	}

	r := chi.NewRouter()
	addRoutes(r, deps)
	return r, deps
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

// waitFor polls until the condition holds or the deadline passes. Used for
// assertions on asynchronous durable writes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// createTwoPlayerRoom creates a room with a leader and one joined member.
func createTwoPlayerRoom(t *testing.T, r http.Handler) duel.RoomState {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/rooms", CreateRoomRequest{
		Name: "test duel", TimerSeconds: 10, PlayerID: "leader", Pseudo: "Alice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create room status = %d: %s", rec.Code, rec.Body.String())
	}
	state := decode[duel.RoomState](t, rec)

	rec = doJSON(t, r, http.MethodPost, "/api/rooms/"+state.Code+"/join", JoinRequest{
		PlayerID: "p2", Pseudo: "Bob",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d: %s", rec.Code, rec.Body.String())
	}
	return state
}

func sampleQuestions() []duel.Question {
	return []duel.Question{
		{ID: "q1", Text: "capital of peru", Choices: []string{"Lima", "Quito", "Bogota", "La Paz"}, CorrectIndex: 0},
		{ID: "q2", Text: "largest planet", Choices: []string{"Mars", "Jupiter", "Venus", "Saturn"}, CorrectIndex: 1},
	}
}
