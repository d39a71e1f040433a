package duel

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// Coordinator owns question progression for every room: starting the game,
// collecting answers, timing questions out, and gating the advance on the
// all-answered-or-forced predicate. It reads the roster the Registry
// maintains but never mutates membership.
type Coordinator struct {
	registry *Registry
	bus      *Bus
	store    SessionStore
	clock    clockwork.Clock
	logger   *slog.Logger

	minPlayers int
}

func NewCoordinator(registry *Registry, bus *Bus, store SessionStore, clock clockwork.Clock, logger *slog.Logger, minPlayers int) *Coordinator {
	return &Coordinator{
		registry:   registry,
		bus:        bus,
		store:      store,
		clock:      clock,
		logger:     logger,
		minPlayers: minPlayers,
	}
}

// AnswerResult is what the submitting client gets back. Duplicate
// submissions return the originally stored result, not an error.
type AnswerResult struct {
	IsCorrect     bool    `json:"isCorrect"`
	PointsEarned  float64 `json:"pointsEarned"`
	QuestionIndex int     `json:"questionIndex"`
	Answered      int     `json:"answered"`
	Total         int     `json:"total"`
}

// StartGame fixes the question sequence and moves the room lobby → active.
// Leader-only; requires the configured minimum roster and a non-empty
// sequence.
func (c *Coordinator) StartGame(code, actingID string, questions []Question) (RoomState, error) {
	room, err := c.registry.get(code)
	if err != nil {
		return RoomState{}, err
	}

	room.mu.Lock()
	switch {
	case actingID != room.LeaderID:
		room.mu.Unlock()
		return RoomState{}, ErrUnauthorized
	case room.Status != StatusLobby:
		room.mu.Unlock()
		return RoomState{}, ErrGameAlreadyStarted
	case len(room.players) < c.minPlayers:
		room.mu.Unlock()
		return RoomState{}, ErrNotEnoughPlayers
	case len(questions) == 0:
		room.mu.Unlock()
		return RoomState{}, ErrNoQuestions
	}

	room.questions = questions
	room.Status = StatusActive
	room.CurrentIndex = 0
	c.openQuestion(room)
	state := room.snapshot()
	room.mu.Unlock()

	c.persistSession(room)
	c.logger.Info("game started", "code", code, "questions", len(questions))
	return state, nil
}

// SubmitAnswer records a player's answer for the current question. The
// first write wins: a repeat for the same (player, question), identical or
// conflicting, is a no-op that returns the stored result.
func (c *Coordinator) SubmitAnswer(code, playerID string, questionIndex, selectedIndex int, timeRemaining float64) (AnswerResult, error) {
	room, err := c.registry.get(code)
	if err != nil {
		return AnswerResult{}, err
	}

	room.mu.Lock()
	if room.banned[playerID] {
		room.mu.Unlock()
		return AnswerResult{}, ErrPlayerBanned
	}
	if room.player(playerID) == nil {
		room.mu.Unlock()
		return AnswerResult{}, ErrNotInRoom
	}
	if room.Status != StatusActive {
		room.mu.Unlock()
		return AnswerResult{}, ErrRoomNotActive
	}
	if questionIndex != room.CurrentIndex {
		room.mu.Unlock()
		return AnswerResult{}, ErrQuestionClosed
	}

	question := room.questions[questionIndex]

	if prior := room.answerFor(questionIndex, playerID); prior != nil {
		res := c.resultFor(room, prior, question)
		room.mu.Unlock()
		return res, nil
	}

	// Server timeout is authoritative; clamp whatever the client reports.
	total := float64(room.TimerSeconds)
	timeRemaining = math.Min(math.Max(timeRemaining, 0), total)

	sel := selectedIndex
	answer := &Answer{
		SessionID:     room.ID,
		PlayerID:      playerID,
		QuestionID:    question.ID,
		QuestionIndex: questionIndex,
		SelectedIndex: &sel,
		TimeRemaining: timeRemaining,
		PointsEarned:  Score(selectedIndex == question.CorrectIndex, timeRemaining, total),
		CreatedAt:     c.clock.Now(),
	}
	room.recordAnswer(answer)

	answered, totalPlayers := room.progress(questionIndex)
	c.bus.Publish(code, Event{Type: EventAnswerAdded, Payload: ProgressPayload{
		QuestionIndex: questionIndex, PlayerID: playerID,
		Answered: answered, Total: totalPlayers,
	}})
	if answered == totalPlayers {
		c.bus.Publish(code, Event{Type: EventAllAnswered, Payload: ProgressPayload{
			QuestionIndex: questionIndex, Answered: answered, Total: totalPlayers,
		}})
	}
	res := c.resultFor(room, answer, question)
	room.mu.Unlock()

	c.persistAnswer(*answer)
	return res, nil
}

// Advance moves the room from question i to i+1. Without force it succeeds
// only when every current roster member has an answer recorded for i;
// the failure carries the counts so the leader can choose to force. A
// non-negative fromIndex pins the advance to that question, making a
// duplicate confirmation for an already-advanced question a rejected
// stale request instead of a double skip. The last question's advance
// completes the game and publishes the final ranked scores.
func (c *Coordinator) Advance(code, actingID string, fromIndex int, force bool) (RoomState, error) {
	room, err := c.registry.get(code)
	if err != nil {
		return RoomState{}, err
	}

	room.mu.Lock()
	if actingID != room.LeaderID {
		room.mu.Unlock()
		return RoomState{}, ErrUnauthorized
	}
	if room.Status != StatusActive {
		room.mu.Unlock()
		return RoomState{}, ErrRoomNotActive
	}
	if fromIndex >= 0 && fromIndex != room.CurrentIndex {
		room.mu.Unlock()
		return RoomState{}, ErrQuestionClosed
	}

	answered, total := room.progress(room.CurrentIndex)
	if !force && answered < total {
		room.mu.Unlock()
		return RoomState{}, &NotAllAnsweredError{Answered: answered, Total: total}
	}

	room.stopCountdown()

	if room.CurrentIndex+1 == len(room.questions) {
		state := c.complete(room)
		room.mu.Unlock()
		c.persistSession(room)
		return state, nil
	}

	room.CurrentIndex++
	c.bus.Publish(code, Event{Type: EventScoresUpdate, Payload: ScoresPayload{
		Scores: room.rankings(),
	}})
	c.openQuestion(room)
	state := room.snapshot()
	room.mu.Unlock()

	c.persistSession(room)
	return state, nil
}

// Cancel is the leader abandoning the room.
func (c *Coordinator) Cancel(code, actingID string) error {
	room, err := c.registry.get(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if actingID != room.LeaderID {
		room.mu.Unlock()
		return ErrUnauthorized
	}
	if room.Status.Terminal() {
		room.mu.Unlock()
		return nil
	}
	room.Status = StatusCancelled
	c.registry.scheduleDestroy(room)
	room.mu.Unlock()

	c.persistSession(room)
	c.logger.Info("room cancelled", "code", code)
	return nil
}

// openQuestion publishes the current question and arms its countdown.
// Caller holds room.mu.
func (c *Coordinator) openQuestion(room *Room) {
	index := room.CurrentIndex
	code := room.Code

	c.bus.Publish(code, Event{Type: EventQuestion, Payload: QuestionPayload{
		Question:       room.questions[index].View(),
		QuestionIndex:  index,
		TotalQuestions: len(room.questions),
		TimerSeconds:   room.TimerSeconds,
	}})

	room.stopCountdown()
	room.countdown = c.clock.AfterFunc(time.Duration(room.TimerSeconds)*time.Second, func() {
		c.questionTimeout(code, index)
	})
}

// questionTimeout synthesizes a nil answer for every player who did not
// submit before the countdown expired, which guarantees the all-answered
// predicate can eventually hold without leader intervention.
func (c *Coordinator) questionTimeout(code string, index int) {
	room, err := c.registry.get(code)
	if err != nil {
		return
	}

	room.mu.Lock()
	if room.Status != StatusActive || room.CurrentIndex != index {
		// Manually advanced before expiry; the firing timer is stale.
		room.mu.Unlock()
		return
	}

	question := room.questions[index]
	var synthesized []Answer
	for _, p := range room.players {
		if room.answerFor(index, p.ID) != nil {
			continue
		}
		a := &Answer{
			SessionID:     room.ID,
			PlayerID:      p.ID,
			QuestionID:    question.ID,
			QuestionIndex: index,
			SelectedIndex: nil,
			TimeRemaining: 0,
			PointsEarned:  0,
			CreatedAt:     c.clock.Now(),
		}
		room.recordAnswer(a)
		synthesized = append(synthesized, *a)
	}

	if len(synthesized) > 0 {
		answered, total := room.progress(index)
		c.bus.Publish(code, Event{Type: EventAllAnswered, Payload: ProgressPayload{
			QuestionIndex: index, Answered: answered, Total: total,
		}})
	}
	room.mu.Unlock()

	for _, a := range synthesized {
		c.persistAnswer(a)
	}
	if len(synthesized) > 0 {
		c.logger.Info("question timed out", "code", code, "question", index,
			"synthesized", len(synthesized))
	}
}

// complete transitions the room to its final state and publishes the
// end-of-game ranking. Caller holds room.mu.
func (c *Coordinator) complete(room *Room) RoomState {
	room.Status = StatusCompleted
	ranked := room.rankings()

	c.bus.Publish(room.Code, Event{Type: EventGameEnd, Payload: ScoresPayload{
		Scores: ranked, Final: true,
	}})

	// Only the persisted aggregate is rounded; ranking used the floats.
	rows := make([]ResultRow, 0, len(ranked))
	now := c.clock.Now()
	for _, e := range ranked {
		rows = append(rows, ResultRow{
			PlayerID:    e.PlayerID,
			Pseudo:      e.Pseudo,
			TotalPoints: int(math.Round(e.Points)),
			Rank:        e.Rank,
			CompletedAt: now,
		})
	}
	sessionID := room.ID
	persistAsync(c.logger, "results "+sessionID, func(ctx context.Context) error {
		return c.store.SaveResults(ctx, sessionID, rows)
	})

	c.registry.scheduleDestroy(room)
	c.logger.Info("game completed", "code", room.Code)
	return room.snapshot()
}

// resultFor builds the client-facing view of a stored answer.
// Caller holds room.mu.
func (c *Coordinator) resultFor(room *Room, a *Answer, q Question) AnswerResult {
	answered, total := room.progress(a.QuestionIndex)
	return AnswerResult{
		IsCorrect:     a.SelectedIndex != nil && *a.SelectedIndex == q.CorrectIndex,
		PointsEarned:  a.PointsEarned,
		QuestionIndex: a.QuestionIndex,
		Answered:      answered,
		Total:         total,
	}
}

func (c *Coordinator) persistAnswer(a Answer) {
	persistAsync(c.logger, "answer "+a.SessionID+"/"+a.PlayerID, func(ctx context.Context) error {
		return c.store.SaveAnswer(ctx, a)
	})
}

func (c *Coordinator) persistSession(room *Room) {
	c.registry.persistSession(room)
}
