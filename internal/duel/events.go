package duel

// Event types published on the room channel. Client-to-server actions
// arrive over REST; everything here flows server-to-client.
const (
	EventPlayerJoined = "room:player-joined"
	EventPlayerLeft   = "room:player-left"
	EventKicked       = "room:kicked"
	EventQuestion     = "game:question"
	EventAnswerAdded  = "game:answer-arrived"
	EventAllAnswered  = "game:all-answered"
	EventScoresUpdate = "game:scores-update"
	EventGameEnd      = "game:end"
	EventSync         = "game:sync"
)

// Event is the envelope pushed to room subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// MemberPayload accompanies join/leave/kick events.
type MemberPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Pseudo   string `json:"pseudo,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// QuestionPayload announces the current question to the room.
type QuestionPayload struct {
	Question       QuestionView `json:"question"`
	QuestionIndex  int          `json:"questionIndex"`
	TotalQuestions int          `json:"totalQuestions"`
	TimerSeconds   int          `json:"timerSeconds"`
}

// ProgressPayload accompanies answer-arrived and all-answered events and
// drives the leader's live roster view.
type ProgressPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	PlayerID      string `json:"playerId,omitempty"`
	Answered      int    `json:"answered"`
	Total         int    `json:"total"`
}

// ScoreEntry is one row of a ranked score list.
type ScoreEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"playerId"`
	Pseudo   string  `json:"pseudo"`
	Points   float64 `json:"points"`
}

// ScoresPayload carries interim or final rankings.
type ScoresPayload struct {
	Scores []ScoreEntry `json:"scores"`
	Final  bool         `json:"final,omitempty"`
}

// SyncPayload is the reconciliation snapshot delivered by the fallback
// poller to a single subscriber that may have missed push events.
type SyncPayload struct {
	Status               string `json:"status"`
	CurrentQuestionIndex int    `json:"currentQuestionIndex"`
	Answered             int    `json:"answered"`
	Total                int    `json:"total"`
}
