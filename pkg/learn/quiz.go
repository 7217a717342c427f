// Package learn defines the core domain types for the studyhall platform:
// quizzes and their questions, graded attempts, emotional check-ins,
// activity records, and curriculum plans.
package learn

import (
	"errors"
	"fmt"
)

// Quiz is a published set of questions identified by a stable slug.
type Quiz struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"` // "intro", "core", "stretch"
	Questions  []Question `json:"questions"`
}

// Question is a single multiple-choice question. Answer is the index into
// Choices of the correct option.
type Question struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
	Points  int      `json:"points,omitempty"` // defaults to 1 when zero
}

// Difficulty levels a quiz can declare.
const (
	DifficultyIntro   = "intro"
	DifficultyCore    = "core"
	DifficultyStretch = "stretch"
)

// Validate checks that a quiz is well formed enough to publish.
func (q *Quiz) Validate() error {
	if q.Slug == "" {
		return errors.New("quiz slug is required")
	}
	if q.Title == "" {
		return errors.New("quiz title is required")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %q has no questions", q.Slug)
	}
	for i, question := range q.Questions {
		if question.Prompt == "" {
			return fmt.Errorf("quiz %q question %d has no prompt", q.Slug, i)
		}
		if len(question.Choices) < 2 {
			return fmt.Errorf("quiz %q question %d needs at least two choices", q.Slug, i)
		}
		if question.Answer < 0 || question.Answer >= len(question.Choices) {
			return fmt.Errorf("quiz %q question %d answer index %d out of range", q.Slug, i, question.Answer)
		}
	}
	return nil
}

// MaxScore returns the total points available across all questions.
func (q *Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.points()
	}
	return total
}

// QuizSummary is the listing projection of a quiz.
type QuizSummary struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
	MaxScore      int    `json:"max_score"`
}

// QuizView is the learner-facing projection of a quiz: everything needed
// to take it, with the answer keys withheld.
type QuizView struct {
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Topic      string         `json:"topic"`
	Difficulty string         `json:"difficulty"`
	Questions  []QuestionView `json:"questions"`
}

// QuestionView is a question as presented to a learner.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Points  int      `json:"points"`
}

// Summary builds the listing projection of a quiz.
func (q *Quiz) Summary() QuizSummary {
	return QuizSummary{
		Slug:          q.Slug,
		Title:         q.Title,
		Topic:         q.Topic,
		Difficulty:    q.Difficulty,
		QuestionCount: len(q.Questions),
		MaxScore:      q.MaxScore(),
	}
}

// View builds the learner-facing projection of a quiz.
func (q *Quiz) View() *QuizView {
	view := &QuizView{
		Slug:       q.Slug,
		Title:      q.Title,
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
		Questions:  make([]QuestionView, len(q.Questions)),
	}
	for i, question := range q.Questions {
		view.Questions[i] = QuestionView{
			Prompt:  question.Prompt,
			Choices: question.Choices,
			Points:  question.points(),
		}
	}
	return view
}

func (qn *Question) points() int {
	if qn.Points <= 0 {
		return 1
	}
	return qn.Points
}

// Grade scores a set of answers against a quiz. Answers are matched to
// questions by position; a missing or out-of-range answer scores zero for
// that question. Extra answers beyond the question count are ignored.
func Grade(quiz *Quiz, answers []int) (score, max int) {
	for i, question := range quiz.Questions {
		max += question.points()
		if i >= len(answers) {
			continue
		}
		if answers[i] == question.Answer {
			score += question.points()
		}
	}
	return score, max
}
