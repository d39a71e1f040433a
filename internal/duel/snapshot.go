package duel

// PlayerState is one roster row in a room snapshot.
type PlayerState struct {
	ID       string `json:"id"`
	Pseudo   string `json:"pseudo"`
	IsLeader bool   `json:"isLeader"`
	Answered bool   `json:"answered"`
}

// RoomState is a consistent read-only view of a room, safe to hand to
// transport code after the room lock is released.
type RoomState struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Settings

	Status   Status `json:"status"`
	LeaderID string `json:"leaderId"`

	Players []PlayerState `json:"players"`

	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	TotalQuestions       int           `json:"totalQuestions"`
	CurrentQuestion      *QuestionView `json:"currentQuestion,omitempty"`

	Answered int `json:"answered"`
	Total    int `json:"total"`

	Scores []ScoreEntry `json:"scores,omitempty"`
}

// snapshot projects the room into a RoomState. Caller holds mu.
func (r *Room) snapshot() RoomState {
	st := RoomState{
		ID:                   r.ID,
		Code:                 r.Code,
		Settings:             r.Settings,
		Status:               r.Status,
		LeaderID:             r.LeaderID,
		CurrentQuestionIndex: r.CurrentIndex,
		TotalQuestions:       len(r.questions),
	}

	for _, p := range r.players {
		st.Players = append(st.Players, PlayerState{
			ID:       p.ID,
			Pseudo:   p.Pseudo,
			IsLeader: p.ID == r.LeaderID,
			Answered: r.answerFor(r.CurrentIndex, p.ID) != nil,
		})
	}

	if r.Status == StatusActive && r.CurrentIndex < len(r.questions) {
		v := r.questions[r.CurrentIndex].View()
		st.CurrentQuestion = &v
		st.Answered, st.Total = r.progress(r.CurrentIndex)
	}

	if r.Status == StatusCompleted {
		st.Scores = r.rankings()
	}

	return st
}

// sessionRecord projects the room into its durable row. Caller holds mu.
func (r *Room) sessionRecord() SessionRecord {
	rec := SessionRecord{
		ID:                   r.ID,
		Code:                 r.Code,
		Settings:             r.Settings,
		Status:               r.Status,
		CurrentQuestionIndex: r.CurrentIndex,
		LeaderID:             r.LeaderID,
	}
	for _, p := range r.players {
		rec.Participants = append(rec.Participants, Participant{ID: p.ID, Pseudo: p.Pseudo})
	}
	return rec
}
