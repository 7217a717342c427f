// Package quizflow models the quiz-taking flow as a pure reducer: answer
// selection, question navigation, and submission with derived scoring.
// The quiz TUI renders straight from these snapshots.
package quizflow

import (
	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/state"
)

// Unanswered marks a question the learner has not chosen an answer for.
const Unanswered = -1

// Phase tracks where the learner is in the flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnswering
	PhaseSubmitted
)

// State is the quiz-flow snapshot. Answers is positional per question,
// Unanswered where nothing has been picked yet.
type State struct {
	Quiz     *learn.Quiz
	Index    int
	Answers  []int
	Phase    Phase
	Score    int
	MaxScore int
}

// Started begins a fresh run of quiz.
type Started struct {
	state.ActionBase

	Quiz *learn.Quiz
}

// Answered picks choice for the current question.
type Answered struct {
	state.ActionBase

	Choice int
}

// Advanced moves to the next question, clamped at the last one.
type Advanced struct {
	state.ActionBase
}

// Retreated moves to the previous question, clamped at the first one.
type Retreated struct {
	state.ActionBase
}

// Submitted grades the run. Ignored unless the flow is answering.
type Submitted struct {
	state.ActionBase
}

// Reduce is the quiz-flow reducer.
func Reduce(s State, a state.Action) State {
	switch a := a.(type) {
	case Started:
		answers := make([]int, len(a.Quiz.Questions))
		for i := range answers {
			answers[i] = Unanswered
		}
		return State{Quiz: a.Quiz, Answers: answers, Phase: PhaseAnswering}
	case Answered:
		if s.Phase != PhaseAnswering {
			return s
		}
		if s.Index < 0 || s.Index >= len(s.Answers) {
			return s
		}
		answers := make([]int, len(s.Answers))
		copy(answers, s.Answers)
		answers[s.Index] = a.Choice
		s.Answers = answers
		return s
	case Advanced:
		if s.Quiz != nil && s.Index < len(s.Quiz.Questions)-1 {
			s.Index++
		}
		return s
	case Retreated:
		if s.Index > 0 {
			s.Index--
		}
		return s
	case Submitted:
		if s.Phase != PhaseAnswering || s.Quiz == nil {
			return s
		}
		s.Score, s.MaxScore = learn.Grade(s.Quiz, s.Answers)
		s.Phase = PhaseSubmitted
		return s
	}
	return s
}

// New returns a quiz-flow store seeded idle.
func New() *state.Store[State] {
	return state.New(State{Phase: PhaseIdle}, Reduce)
}

// Current returns the question under the cursor.
func Current(s State) (learn.Question, bool) {
	if s.Quiz == nil || s.Index < 0 || s.Index >= len(s.Quiz.Questions) {
		return learn.Question{}, false
	}
	return s.Quiz.Questions[s.Index], true
}

// AnsweredCount reports how many questions have an answer picked.
func AnsweredCount(s State) int {
	n := 0
	for _, a := range s.Answers {
		if a != Unanswered {
			n++
		}
	}
	return n
}
