// Package eventstream publishes learning activity onto an event bus so
// downstream consumers can follow what the platform records without polling
// storage.
package eventstream

import (
	"context"
	"time"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/thread"
)

// SchemaVersionV1 is the current payload schema version. Consumers switch on
// it before decoding the rest of the payload.
const SchemaVersionV1 = 1

// Event is implemented by every payload placed on the bus.
type Event interface {
	// EventType names the payload kind.
	EventType() string

	// Key groups related events so per-learner order holds on brokers
	// that partition by key.
	Key() string
}

// Publisher delivers events to the bus. Implementations must be safe for
// concurrent use.
type Publisher interface {
	// Publish delivers a single event.
	Publish(ctx context.Context, event Event) error

	// Close flushes buffered events and releases the transport.
	Close() error
}

// AttemptRecordedEvent announces a graded quiz attempt.
type AttemptRecordedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	AttemptID     string    `json:"attempt_id"`
	Learner       string    `json:"learner"`
	QuizSlug      string    `json:"quiz_slug"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"max_score"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// NewAttemptRecorded builds the event for a stored attempt.
func NewAttemptRecorded(a *learn.Attempt) AttemptRecordedEvent {
	return AttemptRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		AttemptID:     a.ID,
		Learner:       a.Learner,
		QuizSlug:      a.QuizSlug,
		Score:         a.Score,
		MaxScore:      a.MaxScore,
		SubmittedAt:   a.SubmittedAt,
	}
}

func (AttemptRecordedEvent) EventType() string { return "attempt.recorded" }
func (e AttemptRecordedEvent) Key() string     { return e.Learner }

// CheckInRecordedEvent announces an emotional check-in. The free-text note
// stays off the bus; it is personal reflection, not telemetry.
type CheckInRecordedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	CheckInID     string    `json:"checkin_id"`
	Learner       string    `json:"learner"`
	Mood          int       `json:"mood"`
	Energy        int       `json:"energy"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// NewCheckInRecorded builds the event for a stored check-in.
func NewCheckInRecorded(c *learn.CheckIn) CheckInRecordedEvent {
	return CheckInRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		CheckInID:     c.ID,
		Learner:       c.Learner,
		Mood:          c.Mood,
		Energy:        c.Energy,
		RecordedAt:    c.RecordedAt,
	}
}

func (CheckInRecordedEvent) EventType() string { return "checkin.recorded" }
func (e CheckInRecordedEvent) Key() string     { return e.Learner }

// TurnPersistedEvent announces a stored conversation turn. The turn text
// travels by hash reference; consumers that need it fetch the turn.
type TurnPersistedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	Hash          string    `json:"hash"`
	ParentHash    *string   `json:"parent_hash"`
	Learner       string    `json:"learner"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewTurnPersisted builds the event for a stored turn.
func NewTurnPersisted(t *thread.Turn) TurnPersistedEvent {
	return TurnPersistedEvent{
		SchemaVersion: SchemaVersionV1,
		Hash:          t.Hash,
		ParentHash:    t.ParentHash,
		Learner:       t.Learner,
		Role:          t.Role,
		CreatedAt:     t.CreatedAt,
	}
}

func (TurnPersistedEvent) EventType() string { return "turn.persisted" }
func (e TurnPersistedEvent) Key() string     { return e.Learner }

// PlanGeneratedEvent announces a stored curriculum plan.
type PlanGeneratedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	PlanID        string    `json:"plan_id"`
	Learner       string    `json:"learner"`
	Goal          string    `json:"goal"`
	WeekCount     int       `json:"week_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewPlanGenerated builds the event for a stored plan.
func NewPlanGenerated(p *learn.Plan) PlanGeneratedEvent {
	return PlanGeneratedEvent{
		SchemaVersion: SchemaVersionV1,
		PlanID:        p.ID,
		Learner:       p.Learner,
		Goal:          p.Goal,
		WeekCount:     len(p.Weeks),
		CreatedAt:     p.CreatedAt,
	}
}

func (PlanGeneratedEvent) EventType() string { return "plan.generated" }
func (e PlanGeneratedEvent) Key() string     { return e.Learner }
