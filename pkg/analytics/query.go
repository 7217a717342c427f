// Package analytics aggregates stored attempts, check-ins, and activity
// into per-learner progress summaries for the progress API and CLI.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/storage"
)

// ErrNoRecords reports a learner the store holds nothing for.
var ErrNoRecords = errors.New("no records for learner")

const (
	learnerCacheTTL    = 10 * time.Second
	streakCalendarDays = 28
	recentCheckInLimit = 5
	moodTrendWindow    = 5
)

// MasteryThreshold is the percent score at or above which a quiz counts
// as mastered.
const MasteryThreshold = 90.0

// Querier is an interface for querying learner progress.
// This allows for mock implementations in testing and sandboxes.
type Querier interface {
	Overview(ctx context.Context, filters Filters) (*Overview, error)
	LearnerDetail(ctx context.Context, learner string) (*LearnerDetail, error)
}

type Query struct {
	driver storage.Driver
	cache  learnerCache
}

// Ensure Query implements Querier
var _ Querier = (*Query)(nil)

// NewQuery builds a Query over an already-open storage driver. The caller
// keeps ownership of the driver and closes it.
func NewQuery(driver storage.Driver) *Query {
	return &Query{driver: driver}
}

// learnerRecords holds everything one learner has stored, listings
// newest first as the driver returns them. topics collects the topics of
// every quiz the learner attempted.
type learnerRecords struct {
	learner    string
	attempts   []*learn.Attempt
	checkIns   []*learn.CheckIn
	activities []*learn.Activity
	topics     map[string]bool
}

type learnerCache struct {
	mu       sync.RWMutex
	records  []learnerRecords
	loadedAt time.Time
}

func (q *Query) loadLearnerRecords(ctx context.Context, allowCache bool) ([]learnerRecords, error) {
	if allowCache {
		if cached := q.cachedLearnerRecords(); cached != nil {
			return cached, nil
		}
	}

	learners, err := q.driver.Learners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}

	quizzes, err := q.driver.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	topicBySlug := make(map[string]string, len(quizzes))
	for _, quiz := range quizzes {
		topicBySlug[quiz.Slug] = quiz.Topic
	}

	records := make([]learnerRecords, 0, len(learners))
	for _, learner := range learners {
		attempts, err := q.driver.AttemptsByLearner(ctx, learner)
		if err != nil {
			return nil, fmt.Errorf("list attempts: %w", err)
		}
		checkIns, err := q.driver.CheckInsByLearner(ctx, learner)
		if err != nil {
			return nil, fmt.Errorf("list check-ins: %w", err)
		}
		activities, err := q.driver.ActivitiesByLearner(ctx, learner, 0)
		if err != nil {
			return nil, fmt.Errorf("list activities: %w", err)
		}

		topics := map[string]bool{}
		for _, attempt := range attempts {
			if topic := topicBySlug[attempt.QuizSlug]; topic != "" {
				topics[topic] = true
			}
		}

		records = append(records, learnerRecords{
			learner:    learner,
			attempts:   attempts,
			checkIns:   checkIns,
			activities: activities,
			topics:     topics,
		})
	}

	q.storeLearnerRecords(records)
	return records, nil
}

func (q *Query) cachedLearnerRecords() []learnerRecords {
	q.cache.mu.RLock()
	defer q.cache.mu.RUnlock()

	if len(q.cache.records) == 0 {
		return nil
	}
	if time.Since(q.cache.loadedAt) > learnerCacheTTL {
		return nil
	}

	return copyLearnerRecords(q.cache.records)
}

func (q *Query) storeLearnerRecords(records []learnerRecords) {
	q.cache.mu.Lock()
	defer q.cache.mu.Unlock()
	q.cache.records = copyLearnerRecords(records)
	q.cache.loadedAt = time.Now()
}

func copyLearnerRecords(records []learnerRecords) []learnerRecords {
	if len(records) == 0 {
		return nil
	}

	cloned := make([]learnerRecords, len(records))
	copy(cloned, records)
	return cloned
}

func (q *Query) Overview(ctx context.Context, filters Filters) (*Overview, error) {
	records, err := q.loadLearnerRecords(ctx, false)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := dayKey(now)
	overview := &Overview{
		Learners: make([]LearnerSummary, 0, len(records)),
	}

	weightedScore := 0.0
	for _, record := range records {
		summary := buildLearnerSummary(record, now)
		if !matchesFilters(record, summary, filters) {
			continue
		}

		overview.Learners = append(overview.Learners, summary)
		overview.TotalAttempts += summary.Attempts
		overview.TotalCheckIns += summary.CheckIns
		overview.TotalMastered += summary.MasteredQuizzes
		weightedScore += summary.AvgScore * float64(summary.Attempts)

		if dayKey(summary.LastActive) == today {
			overview.ActiveToday++
		}
	}

	overview.TotalLearners = len(overview.Learners)
	if overview.TotalAttempts > 0 {
		overview.AvgScore = weightedScore / float64(overview.TotalAttempts)
	}

	SortLearners(overview.Learners, filters.Sort, filters.SortDir)

	return overview, nil
}

func (q *Query) LearnerDetail(ctx context.Context, learner string) (*LearnerDetail, error) {
	records, err := q.loadLearnerRecords(ctx, true)
	if err != nil {
		return nil, err
	}

	var record *learnerRecords
	for i := range records {
		if records[i].learner == learner {
			record = &records[i]
			break
		}
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, learner)
	}

	quizzes, err := q.driver.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	bySlug := make(map[string]*learn.Quiz, len(quizzes))
	for _, quiz := range quizzes {
		bySlug[quiz.Slug] = quiz
	}

	recent := record.checkIns
	if len(recent) > recentCheckInLimit {
		recent = recent[:recentCheckInLimit]
	}

	now := time.Now()
	detail := &LearnerDetail{
		Summary:        buildLearnerSummary(*record, now),
		Quizzes:        buildQuizBreakdown(record.attempts, bySlug),
		RecentCheckIns: recent,
		StreakCalendar: buildStreakCalendar(activityByDay(*record), now),
	}

	return detail, nil
}

func buildLearnerSummary(record learnerRecords, now time.Time) LearnerSummary {
	summary := LearnerSummary{
		Learner:  record.learner,
		Attempts: len(record.attempts),
		CheckIns: len(record.checkIns),
	}

	bestBySlug := map[string]float64{}
	scoreSum := 0.0
	for _, attempt := range record.attempts {
		percent := attempt.Percent()
		scoreSum += percent
		if percent > summary.BestScore {
			summary.BestScore = percent
		}
		best, ok := bestBySlug[attempt.QuizSlug]
		if !ok || percent > best {
			bestBySlug[attempt.QuizSlug] = percent
		}
	}
	if summary.Attempts > 0 {
		summary.AvgScore = scoreSum / float64(summary.Attempts)
	}

	summary.QuizzesTried = len(bestBySlug)
	for _, best := range bestBySlug {
		if best >= MasteryThreshold {
			summary.MasteredQuizzes++
		}
	}

	summary.MoodTrend = computeMoodTrend(record.checkIns)
	summary.StreakDays = computeStreak(activityByDay(record), now)
	summary.LastActive = lastActive(record)

	return summary
}

func lastActive(record learnerRecords) time.Time {
	var last time.Time
	for _, attempt := range record.attempts {
		if attempt.SubmittedAt.After(last) {
			last = attempt.SubmittedAt
		}
	}
	for _, checkIn := range record.checkIns {
		if checkIn.RecordedAt.After(last) {
			last = checkIn.RecordedAt
		}
	}
	for _, activity := range record.activities {
		if activity.RecordedAt.After(last) {
			last = activity.RecordedAt
		}
	}
	return last
}

// buildQuizBreakdown groups attempts by quiz slug, newest first. Quizzes
// that have since been unpublished fall back to the slug as title.
func buildQuizBreakdown(attempts []*learn.Attempt, quizzes map[string]*learn.Quiz) []QuizBreakdown {
	byQuiz := map[string]*QuizBreakdown{}
	order := []string{}
	scoreSums := map[string]float64{}

	for _, attempt := range attempts {
		percent := attempt.Percent()
		breakdown, ok := byQuiz[attempt.QuizSlug]
		if !ok {
			breakdown = &QuizBreakdown{
				QuizSlug:    attempt.QuizSlug,
				Title:       attempt.QuizSlug,
				LastScore:   percent,
				LastAttempt: attempt.SubmittedAt,
			}
			if quiz := quizzes[attempt.QuizSlug]; quiz != nil {
				breakdown.Title = quiz.Title
				breakdown.Topic = quiz.Topic
			}
			byQuiz[attempt.QuizSlug] = breakdown
			order = append(order, attempt.QuizSlug)
		}

		breakdown.Attempts++
		scoreSums[attempt.QuizSlug] += percent
		if percent > breakdown.BestScore {
			breakdown.BestScore = percent
		}
	}

	breakdowns := make([]QuizBreakdown, 0, len(order))
	for _, slug := range order {
		breakdown := byQuiz[slug]
		breakdown.AvgScore = scoreSums[slug] / float64(breakdown.Attempts)
		breakdown.Mastered = breakdown.BestScore >= MasteryThreshold
		breakdowns = append(breakdowns, *breakdown)
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].LastAttempt.After(breakdowns[j].LastAttempt)
	})

	return breakdowns
}

func matchesFilters(record learnerRecords, summary LearnerSummary, filters Filters) bool {
	if filters.Learner != "" && summary.Learner != filters.Learner {
		return false
	}
	if filters.Topic != "" && !record.topics[filters.Topic] {
		return false
	}
	if filters.Since > 0 {
		cutoff := time.Now().Add(-filters.Since)
		if summary.LastActive.Before(cutoff) {
			return false
		}
	}
	return true
}

// SortLearners sorts learner summaries in place by the given key and
// direction. The default key is average score.
func SortLearners(learners []LearnerSummary, sortKey, sortDir string) {
	ascending := strings.EqualFold(sortDir, "asc")
	switch sortKey {
	case "name":
		sort.Slice(learners, func(i, j int) bool {
			if ascending {
				return learners[i].Learner < learners[j].Learner
			}
			return learners[i].Learner > learners[j].Learner
		})
	case "attempts":
		sort.Slice(learners, func(i, j int) bool {
			if ascending {
				return learners[i].Attempts < learners[j].Attempts
			}
			return learners[i].Attempts > learners[j].Attempts
		})
	case "streak":
		sort.Slice(learners, func(i, j int) bool {
			if ascending {
				return learners[i].StreakDays < learners[j].StreakDays
			}
			return learners[i].StreakDays > learners[j].StreakDays
		})
	case "active":
		sort.Slice(learners, func(i, j int) bool {
			if ascending {
				return learners[i].LastActive.Before(learners[j].LastActive)
			}
			return learners[i].LastActive.After(learners[j].LastActive)
		})
	default:
		sort.Slice(learners, func(i, j int) bool {
			if ascending {
				return learners[i].AvgScore < learners[j].AvgScore
			}
			return learners[i].AvgScore > learners[j].AvgScore
		})
	}
}
