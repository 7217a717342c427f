package analytics

import (
	"time"

	"github.com/studyhallco/studyhall/pkg/learn"
)

// LearnerSummary is one learner's aggregate progress row. Scores are
// percentages in 0..100.
type LearnerSummary struct {
	Learner         string    `json:"learner"`
	Attempts        int       `json:"attempts"`
	QuizzesTried    int       `json:"quizzes_tried"`
	AvgScore        float64   `json:"avg_score"`
	BestScore       float64   `json:"best_score"`
	MasteredQuizzes int       `json:"mastered_quizzes"`
	CheckIns        int       `json:"check_ins"`
	MoodTrend       float64   `json:"mood_trend"`
	StreakDays      int       `json:"streak_days"`
	LastActive      time.Time `json:"last_active"`
}

type Overview struct {
	Learners      []LearnerSummary `json:"learners"`
	TotalLearners int              `json:"total_learners"`
	TotalAttempts int              `json:"total_attempts"`
	TotalCheckIns int              `json:"total_check_ins"`
	TotalMastered int              `json:"total_mastered"`
	AvgScore      float64          `json:"avg_score"`
	ActiveToday   int              `json:"active_today"`
}

// QuizBreakdown aggregates one learner's attempts at a single quiz.
type QuizBreakdown struct {
	QuizSlug    string    `json:"quiz_slug"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Attempts    int       `json:"attempts"`
	AvgScore    float64   `json:"avg_score"`
	BestScore   float64   `json:"best_score"`
	LastScore   float64   `json:"last_score"`
	Mastered    bool      `json:"mastered"`
	LastAttempt time.Time `json:"last_attempt"`
}

// StreakDay is one cell of the streak calendar. Date is "2006-01-02" in
// UTC; Count is how many records the learner produced that day.
type StreakDay struct {
	Date   string `json:"date"`
	Active bool   `json:"active"`
	Count  int    `json:"count"`
}

type LearnerDetail struct {
	Summary        LearnerSummary   `json:"summary"`
	Quizzes        []QuizBreakdown  `json:"quizzes"`
	RecentCheckIns []*learn.CheckIn `json:"recent_check_ins"`
	StreakCalendar []StreakDay      `json:"streak_calendar"`
}

type Filters struct {
	Since   time.Duration
	Learner string
	Topic   string
	Sort    string
	SortDir string
}
