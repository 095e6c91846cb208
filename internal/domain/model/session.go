package model

import "time"

// State is a conversation step.
type State string

const (
	StateAwaitingInput        State = "awaiting_input"
	StateAwaitingColumn       State = "awaiting_column"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateAwaitingLevel        State = "awaiting_level"
	StateAwaitingTopic        State = "awaiting_topic"
	StateGenerating           State = "generating"
	StateDone                 State = "done"
)

// Session is the per-chat conversation value. It is stored as JSON.
type Session struct {
	ChatID       int64     `json:"chat_id"`
	State        State     `json:"state"`
	RawText      string    `json:"raw_text,omitempty"`
	Column       int       `json:"column,omitempty"`
	Words        []string  `json:"words,omitempty"`
	Language     string    `json:"language,omitempty"`
	Level        Level     `json:"level,omitempty"`
	Topic        string    `json:"topic,omitempty"`
	GenerationID string    `json:"generation_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewSession(chatID int64) Session {
	now := time.Now()
	return Session{
		ChatID:    chatID,
		State:     StateAwaitingInput,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Expired reports whether the session was idle for longer than ttl.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}

// JobGrace is added on top of the generation and narration timeouts before a
// generating session counts as abandoned.
const JobGrace = 30 * time.Second

// JobDeadline is how long a session may stay generating without a result.
func JobDeadline(generation, narration time.Duration) time.Duration {
	return generation + narration + JobGrace
}

// Stalled reports whether a generating session outlived the job deadline,
// which happens when its job was lost.
func (s Session) Stalled(now time.Time, deadline time.Duration) bool {
	if s.State != StateGenerating || deadline <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > deadline
}
