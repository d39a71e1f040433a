package duel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Registry is the in-memory directory of active rooms and the sole owner
// of membership mutations (join, leave, kick, ban). Question progression
// belongs to the Coordinator, which reads the roster but never mutates it.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room // by code

	bus    *Bus
	store  SessionStore
	clock  clockwork.Clock
	logger *slog.Logger

	codeMaxAttempts int
	gracePeriod     time.Duration
}

func NewRegistry(bus *Bus, store SessionStore, clock clockwork.Clock, logger *slog.Logger, codeMaxAttempts int, gracePeriod time.Duration) *Registry {
	return &Registry{
		rooms:           make(map[string]*Room),
		bus:             bus,
		store:           store,
		clock:           clock,
		logger:          logger,
		codeMaxAttempts: codeMaxAttempts,
		gracePeriod:     gracePeriod,
	}
}

// CreateRoom generates a unique code with bounded collision retries and
// registers a new lobby room led by the creator.
func (reg *Registry) CreateRoom(settings Settings, leaderID, leaderPseudo string) (RoomState, error) {
	for attempt := 0; attempt < reg.codeMaxAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return RoomState{}, err
		}

		reg.mu.Lock()
		if _, taken := reg.rooms[code]; taken {
			reg.mu.Unlock()
			continue
		}
		room := newRoom(uuid.NewString(), code, settings, leaderID, leaderPseudo)
		reg.rooms[code] = room
		reg.mu.Unlock()

		reg.persistSession(room)
		reg.logger.Info("room created", "code", code, "leader", leaderID)
		return reg.Snapshot(code)
	}
	return RoomState{}, ErrCodeExhausted
}

// JoinRoom adds a player to a lobby room. Re-joining with a known player id
// is the reconnect case: it refreshes the transport handle and does not
// duplicate the roster entry.
func (reg *Registry) JoinRoom(code, playerID, pseudo string) (RoomState, error) {
	room, err := reg.get(code)
	if err != nil {
		return RoomState{}, err
	}

	room.mu.Lock()
	if room.banned[playerID] {
		room.mu.Unlock()
		return RoomState{}, ErrPlayerBanned
	}
	if existing := room.player(playerID); existing != nil {
		// Reconnect: membership unchanged.
		room.mu.Unlock()
		return reg.Snapshot(code)
	}
	if room.Status != StatusLobby {
		room.mu.Unlock()
		return RoomState{}, ErrRoomNotJoinable
	}
	room.players = append(room.players, &Player{ID: playerID, Pseudo: pseudo})
	reg.bus.Publish(code, Event{Type: EventPlayerJoined, Payload: MemberPayload{
		RoomCode: code, PlayerID: playerID, Pseudo: pseudo,
	}})
	room.mu.Unlock()

	reg.persistSession(room)
	return reg.Snapshot(code)
}

// LeaveRoom removes a player. If the leader leaves while the room is still
// in the lobby the room is cancelled; once active, play continues and
// timeouts alone can complete the game. Leadership is never reassigned.
func (reg *Registry) LeaveRoom(code, playerID string) error {
	room, err := reg.get(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if !room.removePlayer(playerID) {
		room.mu.Unlock()
		return ErrNotInRoom
	}
	reg.bus.Publish(code, Event{Type: EventPlayerLeft, Payload: MemberPayload{
		RoomCode: code, PlayerID: playerID,
	}})

	if playerID == room.LeaderID && room.Status == StatusLobby {
		room.Status = StatusCancelled
		reg.scheduleDestroy(room)
	}

	// A departing straggler may have been the only unanswered player.
	reg.notifyIfAllAnswered(room)
	room.mu.Unlock()

	reg.persistSession(room)
	return nil
}

// KickPlayer is the leader expelling a member: the target is banned,
// removed from the roster, told directly, and force-disconnected.
func (reg *Registry) KickPlayer(code, actingID, targetID string) error {
	room, err := reg.get(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if actingID != room.LeaderID {
		room.mu.Unlock()
		return ErrUnauthorized
	}
	if !room.removePlayer(targetID) {
		room.mu.Unlock()
		return ErrNotInRoom
	}
	room.banned[targetID] = true

	reg.bus.PublishTo(code, targetID, Event{Type: EventKicked, Payload: MemberPayload{
		RoomCode: code, PlayerID: targetID, Reason: "kicked by leader",
	}})
	reg.bus.Publish(code, Event{Type: EventPlayerLeft, Payload: MemberPayload{
		RoomCode: code, PlayerID: targetID,
	}})

	reg.notifyIfAllAnswered(room)
	room.mu.Unlock()

	reg.bus.ClosePlayer(code, targetID)
	reg.persistSession(room)
	reg.logger.Info("player kicked", "code", code, "target", targetID)
	return nil
}

// Snapshot returns a consistent read-only view of the room.
func (reg *Registry) Snapshot(code string) (RoomState, error) {
	room, err := reg.get(code)
	if err != nil {
		return RoomState{}, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	return room.snapshot(), nil
}

// get resolves a room by code.
func (reg *Registry) get(code string) (*Room, error) {
	reg.mu.RLock()
	room, ok := reg.rooms[code]
	reg.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// notifyIfAllAnswered publishes the all-answered signal when a roster
// shrink leaves no outstanding answers for the current question.
// Caller holds room.mu.
func (reg *Registry) notifyIfAllAnswered(room *Room) {
	if room.Status != StatusActive {
		return
	}
	answered, total := room.progress(room.CurrentIndex)
	if total > 0 && answered == total {
		reg.bus.Publish(room.Code, Event{Type: EventAllAnswered, Payload: ProgressPayload{
			QuestionIndex: room.CurrentIndex, Answered: answered, Total: total,
		}})
	}
}

// scheduleDestroy arms the grace-period removal of a terminal room.
// Caller holds room.mu.
func (reg *Registry) scheduleDestroy(room *Room) {
	room.stopCountdown()
	if room.destroyer != nil {
		return
	}
	code := room.Code
	room.destroyer = reg.clock.AfterFunc(reg.gracePeriod, func() {
		reg.destroy(code)
	})
}

// destroy drops the room and releases its resources.
func (reg *Registry) destroy(code string) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mu.Unlock()
	if !ok {
		return
	}

	room.mu.Lock()
	room.stopCountdown()
	room.mu.Unlock()

	reg.bus.CloseRoom(code)
	reg.logger.Info("room destroyed", "code", code)
}

// persistSession writes the current session row in the background.
func (reg *Registry) persistSession(room *Room) {
	room.mu.Lock()
	rec := room.sessionRecord()
	room.mu.Unlock()
	persistAsync(reg.logger, "session "+rec.ID, func(ctx context.Context) error {
		return reg.store.SaveSession(ctx, rec)
	})
}
