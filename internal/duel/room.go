package duel

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Status is the lifecycle state of a room. Rooms move lobby → active →
// completed or cancelled; terminal states never transition again.
type Status string

const (
	StatusLobby     Status = "lobby"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Settings are the leader-chosen parameters of a duel.
type Settings struct {
	Name         string `json:"name"`
	Mode         string `json:"mode"`
	Universe     string `json:"universe"`
	Difficulty   string `json:"difficulty"`
	TimerSeconds int    `json:"timerSeconds"`
}

// Question is one entry of the fixed sequence supplied at game start.
// CorrectIndex is never sent to clients; QuestionView is the wire shape.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
}

// QuestionView is the client-visible projection of a Question.
type QuestionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Text: q.Text, Choices: q.Choices}
}

// Player is a room member. ConnID is the current transport handle and is
// empty while the player is disconnected.
type Player struct {
	ID     string `json:"id"`
	Pseudo string `json:"pseudo"`
	ConnID string `json:"-"`
}

// Answer is one player's record for one question. SelectedIndex is nil for
// a synthesized timeout answer. An answer is written at most once per
// (session, player, question); later submissions return the stored row.
type Answer struct {
	SessionID     string    `json:"sessionId"`
	PlayerID      string    `json:"playerId"`
	QuestionID    string    `json:"questionId"`
	QuestionIndex int       `json:"questionIndex"`
	SelectedIndex *int      `json:"selectedIndex"`
	TimeRemaining float64   `json:"timeRemaining"`
	PointsEarned  float64   `json:"pointsEarned"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Room is the in-memory authority for one duel. Every mutation and snapshot
// acquires mu, so no two operations on the same room interleave; different
// rooms proceed in parallel.
type Room struct {
	mu sync.Mutex

	ID   string
	Code string
	Settings

	Status    Status
	LeaderID  string
	players   []*Player // insertion order preserved for display and ranking ties
	banned    map[string]bool
	questions []Question

	CurrentIndex int
	answers      map[int]map[string]*Answer
	lastAnswer   map[string]time.Time

	countdown clockwork.Timer
	destroyer clockwork.Timer
}

func newRoom(id, code string, settings Settings, leaderID, leaderPseudo string) *Room {
	return &Room{
		ID:       id,
		Code:     code,
		Settings: settings,
		Status:   StatusLobby,
		LeaderID: leaderID,
		players:  []*Player{{ID: leaderID, Pseudo: leaderPseudo}},
		banned:   make(map[string]bool),
		answers:  make(map[int]map[string]*Answer),
	}
}

// player returns the member with the given id, or nil. Caller holds mu.
func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// removePlayer drops the member with the given id, preserving order.
// Caller holds mu.
func (r *Room) removePlayer(id string) bool {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

// answerFor returns the recorded answer for a player at a question index,
// or nil. Caller holds mu.
func (r *Room) answerFor(index int, playerID string) *Answer {
	return r.answers[index][playerID]
}

// recordAnswer stores an answer in memory. Caller holds mu and has already
// checked that no answer exists for the pair.
func (r *Room) recordAnswer(a *Answer) {
	byPlayer := r.answers[a.QuestionIndex]
	if byPlayer == nil {
		byPlayer = make(map[string]*Answer)
		r.answers[a.QuestionIndex] = byPlayer
	}
	byPlayer[a.PlayerID] = a
	if r.lastAnswer == nil {
		r.lastAnswer = make(map[string]time.Time)
	}
	r.lastAnswer[a.PlayerID] = a.CreatedAt
}

// progress returns how many current roster members have answered the given
// question, and the roster size. Banned and departed players do not count
// toward either number. Caller holds mu.
func (r *Room) progress(index int) (answered, total int) {
	total = len(r.players)
	for _, p := range r.players {
		if r.answerFor(index, p.ID) != nil {
			answered++
		}
	}
	return answered, total
}

// stopCountdown cancels the per-question timer if one is running.
// Caller holds mu.
func (r *Room) stopCountdown() {
	if r.countdown != nil {
		r.countdown.Stop()
		r.countdown = nil
	}
}

// totalFor sums a player's points across all questions. Caller holds mu.
func (r *Room) totalFor(playerID string) float64 {
	var sum float64
	for _, byPlayer := range r.answers {
		if a, ok := byPlayer[playerID]; ok {
			sum += a.PointsEarned
		}
	}
	return sum
}

// rankings returns the roster ordered by total score descending. Ties go
// to the player whose final answer landed earlier; remaining ties keep
// join order. Comparisons use the raw float totals, never rounded values.
// Caller holds mu.
func (r *Room) rankings() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(r.players))
	for _, p := range r.players {
		entries = append(entries, ScoreEntry{
			PlayerID: p.ID,
			Pseudo:   p.Pseudo,
			Points:   r.totalFor(p.ID),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return r.lastAnswer[entries[i].PlayerID].Before(r.lastAnswer[entries[j].PlayerID])
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
