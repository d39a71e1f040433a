package duel

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomNotFound is returned when no active room matches the code.
	ErrRoomNotFound = errors.New("room not found")

	// ErrCodeExhausted is returned when room-code generation keeps
	// colliding past the configured attempt cap.
	ErrCodeExhausted = errors.New("room code generation exhausted")

	// ErrPlayerBanned rejects any action from a banned player.
	ErrPlayerBanned = errors.New("player is banned from this room")

	// ErrRoomNotJoinable is returned when joining a room that already
	// left the lobby.
	ErrRoomNotJoinable = errors.New("room is not joinable")

	// ErrUnauthorized rejects leader-only actions from non-leaders.
	ErrUnauthorized = errors.New("action requires room leader")

	// ErrNotInRoom rejects gameplay actions from players who are not
	// part of the roster.
	ErrNotInRoom = errors.New("player is not in this room")

	// ErrRoomNotActive rejects gameplay actions outside the active state.
	ErrRoomNotActive = errors.New("room is not active")

	// ErrGameAlreadyStarted rejects a second start action.
	ErrGameAlreadyStarted = errors.New("game already started")

	// ErrNotEnoughPlayers rejects starting below the configured minimum.
	ErrNotEnoughPlayers = errors.New("not enough players to start")

	// ErrNoQuestions rejects starting without a question sequence.
	ErrNoQuestions = errors.New("no questions supplied")

	// ErrQuestionClosed rejects answers for a question that is no longer
	// the current one.
	ErrQuestionClosed = errors.New("question is no longer open")
)

// NotAllAnsweredError is returned by a non-forced advance while answers are
// still outstanding. It carries the counts so the caller can offer the
// leader a force-override choice.
type NotAllAnsweredError struct {
	Answered int
	Total    int
}

func (e *NotAllAnsweredError) Error() string {
	return fmt.Sprintf("not all players answered: %d/%d", e.Answered, e.Total)
}
