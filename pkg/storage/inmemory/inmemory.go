// Package inmemory provides a map-backed storage driver, used by tests and
// by serve mode when no database is configured.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/thread"
)

// Driver implements storage.Driver on RWMutex-guarded maps.
type Driver struct {
	mu sync.RWMutex

	quizzes    map[string]*learn.Quiz
	attempts   map[string]*learn.Attempt
	checkIns   map[string]*learn.CheckIn
	activities map[string]*learn.Activity
	turns      map[string]*thread.Turn
	plans      map[string]*learn.Plan
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		quizzes:    make(map[string]*learn.Quiz),
		attempts:   make(map[string]*learn.Attempt),
		checkIns:   make(map[string]*learn.CheckIn),
		activities: make(map[string]*learn.Activity),
		turns:      make(map[string]*thread.Turn),
		plans:      make(map[string]*learn.Plan),
	}
}

// PutQuiz stores a quiz keyed by slug, replacing any existing content.
// Returns true if the slug was newly inserted.
func (s *Driver) PutQuiz(_ context.Context, quiz *learn.Quiz) (bool, error) {
	if quiz == nil {
		return false, errors.New("cannot store nil quiz")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.quizzes[quiz.Slug]
	s.quizzes[quiz.Slug] = quiz
	return !existed, nil
}

// GetQuiz retrieves a quiz by its slug.
func (s *Driver) GetQuiz(_ context.Context, slug string) (*learn.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[slug]
	if !ok {
		return nil, storage.NotFoundError{Kind: "quiz", Key: slug}
	}

	return quiz, nil
}

// ListQuizzes returns all quizzes ordered by slug.
func (s *Driver) ListQuizzes(_ context.Context) ([]*learn.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quizzes := make([]*learn.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].Slug < quizzes[j].Slug
	})

	return quizzes, nil
}

// PutAttempt stores a graded attempt.
func (s *Driver) PutAttempt(_ context.Context, attempt *learn.Attempt) error {
	if attempt == nil {
		return errors.New("cannot store nil attempt")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[attempt.ID] = attempt
	return nil
}

// GetAttempt retrieves an attempt by its ID.
func (s *Driver) GetAttempt(_ context.Context, id string) (*learn.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempt, ok := s.attempts[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "attempt", Key: id}
	}

	return attempt, nil
}

// AttemptsByLearner returns a learner's attempts, newest first.
func (s *Driver) AttemptsByLearner(_ context.Context, learner string) ([]*learn.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var attempts []*learn.Attempt
	for _, attempt := range s.attempts {
		if attempt.Learner == learner {
			attempts = append(attempts, attempt)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].SubmittedAt.After(attempts[j].SubmittedAt)
	})

	return attempts, nil
}

// PutCheckIn stores a wellness check-in.
func (s *Driver) PutCheckIn(_ context.Context, checkIn *learn.CheckIn) error {
	if checkIn == nil {
		return errors.New("cannot store nil check-in")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkIns[checkIn.ID] = checkIn
	return nil
}

// CheckInsByLearner returns a learner's check-ins, newest first.
func (s *Driver) CheckInsByLearner(_ context.Context, learner string) ([]*learn.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var checkIns []*learn.CheckIn
	for _, checkIn := range s.checkIns {
		if checkIn.Learner == learner {
			checkIns = append(checkIns, checkIn)
		}
	}
	sort.Slice(checkIns, func(i, j int) bool {
		return checkIns[i].RecordedAt.After(checkIns[j].RecordedAt)
	})

	return checkIns, nil
}

// PutActivity stores one activity record.
func (s *Driver) PutActivity(_ context.Context, activity *learn.Activity) error {
	if activity == nil {
		return errors.New("cannot store nil activity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activities[activity.ID] = activity
	return nil
}

// ActivitiesByLearner returns a learner's activity, newest first, capped
// at limit when limit is positive.
func (s *Driver) ActivitiesByLearner(_ context.Context, learner string, limit int) ([]*learn.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var activities []*learn.Activity
	for _, activity := range s.activities {
		if activity.Learner == learner {
			activities = append(activities, activity)
		}
	}
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].RecordedAt.After(activities[j].RecordedAt)
	})

	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}

	return activities, nil
}

// PutTurn stores a turn. Returns true if the turn was newly inserted,
// false if it already existed (no-op due to content-addressing).
func (s *Driver) PutTurn(_ context.Context, turn *thread.Turn) (bool, error) {
	if turn == nil {
		return false, errors.New("cannot store nil turn")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent insert, deduplication via content-addressing.
	if _, ok := s.turns[turn.Hash]; ok {
		return false, nil
	}

	s.turns[turn.Hash] = turn
	return true, nil
}

// GetTurn retrieves a turn by its hash.
func (s *Driver) GetTurn(_ context.Context, hash string) (*thread.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turn, ok := s.turns[hash]
	if !ok {
		return nil, storage.NotFoundError{Kind: "turn", Key: hash}
	}

	return turn, nil
}

// TurnsByParent retrieves all turns that have the provided parent. This is
// where thread branching shows up.
func (s *Driver) TurnsByParent(_ context.Context, parentHash *string) ([]*thread.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*thread.Turn
	for _, turn := range s.turns {
		if parentHash == nil {
			if turn.ParentHash == nil {
				result = append(result, turn)
			}
		} else {
			if turn.ParentHash != nil && *turn.ParentHash == *parentHash {
				result = append(result, turn)
			}
		}
	}
	return result, nil
}

// TurnRoots returns all turns with no parent.
func (s *Driver) TurnRoots(ctx context.Context) ([]*thread.Turn, error) {
	return s.TurnsByParent(ctx, nil)
}

// TurnLeaves returns all turns that no other turn points at.
func (s *Driver) TurnLeaves(_ context.Context) ([]*thread.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hasChildren := make(map[string]bool)
	for _, turn := range s.turns {
		if turn.ParentHash != nil {
			hasChildren[*turn.ParentHash] = true
		}
	}

	var leaves []*thread.Turn
	for _, turn := range s.turns {
		if !hasChildren[turn.Hash] {
			leaves = append(leaves, turn)
		}
	}

	return leaves, nil
}

// TurnHistory returns the path from a turn back to its thread root (turn
// first, root last).
func (s *Driver) TurnHistory(ctx context.Context, hash string) ([]*thread.Turn, error) {
	var path []*thread.Turn
	current := hash

	for {
		turn, err := s.GetTurn(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("getting turn %s: %w", current, err)
		}
		path = append(path, turn)

		if turn.ParentHash == nil {
			break
		}
		current = *turn.ParentHash
	}

	return path, nil
}

// CountTurns returns the number of stored turns.
func (s *Driver) CountTurns(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns), nil
}

// PutPlan stores a study plan.
func (s *Driver) PutPlan(_ context.Context, plan *learn.Plan) error {
	if plan == nil {
		return errors.New("cannot store nil plan")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[plan.ID] = plan
	return nil
}

// GetPlan retrieves a plan by its ID.
func (s *Driver) GetPlan(_ context.Context, id string) (*learn.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "plan", Key: id}
	}

	return plan, nil
}

// PlansByLearner returns a learner's plans, newest first.
func (s *Driver) PlansByLearner(_ context.Context, learner string) ([]*learn.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var plans []*learn.Plan
	for _, plan := range s.plans {
		if plan.Learner == learner {
			plans = append(plans, plan)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})

	return plans, nil
}

// Learners returns every learner with at least one stored record, sorted.
func (s *Driver) Learners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, attempt := range s.attempts {
		seen[attempt.Learner] = true
	}
	for _, checkIn := range s.checkIns {
		seen[checkIn.Learner] = true
	}
	for _, activity := range s.activities {
		seen[activity.Learner] = true
	}
	for _, turn := range s.turns {
		seen[turn.Learner] = true
	}
	for _, plan := range s.plans {
		seen[plan.Learner] = true
	}

	learners := make([]string, 0, len(seen))
	for learner := range seen {
		learners = append(learners, learner)
	}
	sort.Strings(learners)

	return learners, nil
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}
