// Package storage defines the persistence boundary for studyhall: quizzes,
// attempts, check-ins, activity telemetry, mentor turns, and study plans.
package storage

import (
	"context"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/thread"
)

// Driver is the interface every storage backend implements. Reads that
// miss return NotFoundError. Listing methods return newest-first where a
// timestamp exists. The turn methods double as a thread.Loader.
type Driver interface {
	// PutQuiz stores a quiz keyed by slug, replacing the stored content
	// when the slug already exists. Returns true if the slug was newly
	// inserted.
	PutQuiz(ctx context.Context, quiz *learn.Quiz) (bool, error)

	// GetQuiz retrieves a quiz by its slug.
	GetQuiz(ctx context.Context, slug string) (*learn.Quiz, error)

	// ListQuizzes returns all quizzes ordered by slug.
	ListQuizzes(ctx context.Context) ([]*learn.Quiz, error)

	// PutAttempt stores a graded attempt.
	PutAttempt(ctx context.Context, attempt *learn.Attempt) error

	// GetAttempt retrieves an attempt by its ID.
	GetAttempt(ctx context.Context, id string) (*learn.Attempt, error)

	// AttemptsByLearner returns a learner's attempts, newest first.
	AttemptsByLearner(ctx context.Context, learner string) ([]*learn.Attempt, error)

	// PutCheckIn stores a wellness check-in.
	PutCheckIn(ctx context.Context, checkIn *learn.CheckIn) error

	// CheckInsByLearner returns a learner's check-ins, newest first.
	CheckInsByLearner(ctx context.Context, learner string) ([]*learn.CheckIn, error)

	// PutActivity stores one activity record.
	PutActivity(ctx context.Context, activity *learn.Activity) error

	// ActivitiesByLearner returns a learner's activity, newest first,
	// capped at limit when limit is positive.
	ActivitiesByLearner(ctx context.Context, learner string, limit int) ([]*learn.Activity, error)

	// PutTurn stores a conversation turn. Returns true if the turn was
	// newly inserted, false if it already existed; content-addressing
	// makes the insert idempotent.
	PutTurn(ctx context.Context, turn *thread.Turn) (bool, error)

	// GetTurn retrieves a turn by its hash.
	GetTurn(ctx context.Context, hash string) (*thread.Turn, error)

	// TurnsByParent retrieves all turns with the given parent hash. Pass
	// nil for thread roots.
	TurnsByParent(ctx context.Context, parentHash *string) ([]*thread.Turn, error)

	// TurnRoots returns all turns with no parent.
	TurnRoots(ctx context.Context) ([]*thread.Turn, error)

	// TurnLeaves returns all turns that no other turn points at.
	TurnLeaves(ctx context.Context) ([]*thread.Turn, error)

	// TurnHistory returns the path from a turn back to its thread root
	// (turn first, root last).
	TurnHistory(ctx context.Context, hash string) ([]*thread.Turn, error)

	// CountTurns returns the number of stored turns.
	CountTurns(ctx context.Context) (int, error)

	// PutPlan stores a study plan.
	PutPlan(ctx context.Context, plan *learn.Plan) error

	// GetPlan retrieves a plan by its ID.
	GetPlan(ctx context.Context, id string) (*learn.Plan, error)

	// PlansByLearner returns a learner's plans, newest first.
	PlansByLearner(ctx context.Context, learner string) ([]*learn.Plan, error)

	// Learners returns every learner with at least one stored record,
	// sorted by name.
	Learners(ctx context.Context) ([]string, error)

	// Close closes the store and releases any resources.
	Close() error
}
