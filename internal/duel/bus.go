package duel

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Subscription is one connected client's view of a room channel. Events
// arrive on C in publish order; Done is closed when the server forcibly
// ends the connection (kick, room teardown).
type Subscription struct {
	ID       string
	PlayerID string
	ch       chan []byte
	done     chan struct{}
	closed   bool
}

func (s *Subscription) C() <-chan []byte      { return s.ch }
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Bus is an in-process pub/sub for room events, keyed by room code.
// Delivery is best-effort at-most-once: each subscriber has a small buffer
// and slow subscribers lose events rather than block the publisher. Missed
// events are healed by the reconciliation poller, not the bus.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[string]*Subscription // room code → subscription id
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[string]*Subscription)}
}

// Subscribe registers a connection for a room's events.
func (b *Bus) Subscribe(roomCode, playerID string) *Subscription {
	sub := &Subscription{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		ch:       make(chan []byte, 16),
		done:     make(chan struct{}),
	}
	b.mu.Lock()
	if b.subs[roomCode] == nil {
		b.subs[roomCode] = make(map[string]*Subscription)
	}
	b.subs[roomCode][sub.ID] = sub
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a connection from the room channel.
func (b *Bus) Unsubscribe(roomCode string, sub *Subscription) {
	b.mu.Lock()
	delete(b.subs[roomCode], sub.ID)
	if len(b.subs[roomCode]) == 0 {
		delete(b.subs, roomCode)
	}
	b.mu.Unlock()
}

// Publish fans an event out to every subscriber of the room.
func (b *Bus) Publish(roomCode string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for _, sub := range b.subs[roomCode] {
		sub.send(data)
	}
	b.mu.RUnlock()
}

// PublishTo delivers an event only to the given player's connections,
// e.g. a direct kicked notification or a reconciliation snapshot.
func (b *Bus) PublishTo(roomCode, playerID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for _, sub := range b.subs[roomCode] {
		if sub.PlayerID == playerID {
			sub.send(data)
		}
	}
	b.mu.RUnlock()
}

// ClosePlayer force-disconnects every connection the player holds on the
// room channel. Used when a player is kicked.
func (b *Bus) ClosePlayer(roomCode, playerID string) {
	b.mu.Lock()
	for id, sub := range b.subs[roomCode] {
		if sub.PlayerID == playerID {
			sub.close()
			delete(b.subs[roomCode], id)
		}
	}
	if len(b.subs[roomCode]) == 0 {
		delete(b.subs, roomCode)
	}
	b.mu.Unlock()
}

// CloseRoom tears down every subscription for the room. Called when a room
// is destroyed after its grace period.
func (b *Bus) CloseRoom(roomCode string) {
	b.mu.Lock()
	for _, sub := range b.subs[roomCode] {
		sub.close()
	}
	delete(b.subs, roomCode)
	b.mu.Unlock()
}

// Subscribers reports how many connections are attached to the room.
func (b *Bus) Subscribers(roomCode string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[roomCode])
}

func (s *Subscription) send(data []byte) {
	if s.closed {
		return
	}
	select {
	case s.ch <- data:
	default:
		// Drop if the subscriber is slow; the poller catches them up.
	}
}

func (s *Subscription) close() {
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}
