package models

import "time"

// LearnerSession represents one learner's run through a deck
type LearnerSession struct {
	ID          string
	DeckID      int64
	LearnerID   string
	Snapshot    string // serialized engine snapshot, stored verbatim as JSON
	StartedAt   time.Time
	CompletedAt *time.Time
	Score       int
	MaxScore    int
}

// Completed reports whether the session has reached completion
func (s LearnerSession) Completed() bool {
	return s.CompletedAt != nil
}

// SessionEvent records a single engine notification for analytics export
type SessionEvent struct {
	ID        int64
	SessionID string
	Kind      string // progressed, interacted, answered, completed
	CardIndex *int
	Payload   string
	CreatedAt time.Time
}

// Event kinds recorded by the session service
const (
	EventProgressed = "progressed"
	EventInteracted = "interacted"
	EventAnswered   = "answered"
	EventCompleted  = "completed"
)
