package learn

import (
	"time"

	"github.com/google/uuid"
)

// Attempt records one graded submission of a quiz by a learner.
type Attempt struct {
	ID          string    `json:"id"`
	Learner     string    `json:"learner"`
	QuizSlug    string    `json:"quiz_slug"`
	Answers     []int     `json:"answers"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewAttempt grades answers against the quiz and stamps the attempt.
func NewAttempt(learner string, quiz *Quiz, answers []int) *Attempt {
	score, max := Grade(quiz, answers)
	return &Attempt{
		ID:          uuid.NewString(),
		Learner:     learner,
		QuizSlug:    quiz.Slug,
		Answers:     answers,
		Score:       score,
		MaxScore:    max,
		SubmittedAt: time.Now().UTC(),
	}
}

// Percent returns the attempt score as a 0..100 percentage.
func (a *Attempt) Percent() float64 {
	if a.MaxScore == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.MaxScore) * 100
}
