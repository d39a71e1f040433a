package duel

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory SessionStore for coordinator tests.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]SessionRecord
	answers  map[string]Answer // sessionID/playerID/questionID
	results  map[string][]ResultRow
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]SessionRecord),
		answers:  make(map[string]Answer),
		results:  make(map[string][]ResultRow),
	}
}

func (m *memStore) SaveSession(_ context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[rec.ID] = rec
	return nil
}

func (m *memStore) SaveAnswer(_ context.Context, a Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := a.SessionID + "/" + a.PlayerID + "/" + a.QuestionID
	if _, exists := m.answers[key]; exists {
		return nil // insert-once
	}
	m.answers[key] = a
	return nil
}

func (m *memStore) SaveResults(_ context.Context, sessionID string, rows []ResultRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[sessionID] = rows
	return nil
}

func (m *memStore) SessionProgress(_ context.Context, sessionID string) (Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return Progress{}, ErrRoomNotFound
	}
	p := Progress{
		Status:               string(rec.Status),
		CurrentQuestionIndex: rec.CurrentQuestionIndex,
		Total:                len(rec.Participants),
	}
	for _, a := range m.answers {
		if a.SessionID == sessionID && a.QuestionIndex == rec.CurrentQuestionIndex {
			p.Answered++
		}
	}
	return p, nil
}

func (m *memStore) answerCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.answers {
		if a.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (m *memStore) storedAnswer(sessionID, playerID, questionID string) (Answer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[sessionID+"/"+playerID+"/"+questionID]
	return a, ok
}

func (m *memStore) storedResults(sessionID string) []ResultRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[sessionID]
}

type testEnv struct {
	registry *Registry
	coord    *Coordinator
	bus      *Bus
	store    *memStore
	clock    *clockwork.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClock()
	bus := NewBus()
	store := newMemStore()
	registry := NewRegistry(bus, store, clock, logger, 5, 2*time.Minute)
	coord := NewCoordinator(registry, bus, store, clock, logger, 2)
	return &testEnv{registry: registry, coord: coord, bus: bus, store: store, clock: clock}
}

func testQuestions(n int) []Question {
	qs := make([]Question, 0, n)
	letters := []string{"a", "b", "c", "d", "e", "f"}
	for i := 0; i < n; i++ {
		qs = append(qs, Question{
			ID:           "q" + letters[i],
			Text:         "question " + letters[i],
			Choices:      []string{"one", "two", "three", "four"},
			CorrectIndex: i % 4,
		})
	}
	return qs
}

// twoPlayerGame creates a room with leader and one member and starts a
// game with the given questions and timer.
func twoPlayerGame(t *testing.T, env *testEnv, timerSeconds, questions int) RoomState {
	t.Helper()
	state, err := env.registry.CreateRoom(
		Settings{Name: "duel", TimerSeconds: timerSeconds}, "leader", "Alice")
	require.NoError(t, err)
	_, err = env.registry.JoinRoom(state.Code, "p2", "Bob")
	require.NoError(t, err)
	started, err := env.coord.StartGame(state.Code, "leader", testQuestions(questions))
	require.NoError(t, err)
	return started
}

type receivedEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// drainEvents decodes everything currently buffered on a subscription.
func drainEvents(t *testing.T, sub *Subscription) []receivedEvent {
	t.Helper()
	var events []receivedEvent
	for {
		select {
		case data := <-sub.C():
			var ev receivedEvent
			require.NoError(t, json.Unmarshal(data, &ev))
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventTypes(events []receivedEvent) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}
