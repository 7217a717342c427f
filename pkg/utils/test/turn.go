package testutils

import (
	"github.com/studyhallco/studyhall/pkg/thread"
)

// NewTestTurn creates a root conversation turn for testing
func NewTestTurn(learner, role, text string) *thread.Turn {
	return thread.NewTurn(nil, learner, role, text)
}

// NewTestThread builds a linear thread of turns alternating learner and
// mentor roles, returning them root first.
func NewTestThread(learner string, texts ...string) []*thread.Turn {
	turns := make([]*thread.Turn, 0, len(texts))

	var parent *thread.Turn
	for i, text := range texts {
		role := thread.RoleLearner
		if i%2 == 1 {
			role = thread.RoleMentor
		}
		turn := thread.NewTurn(parent, learner, role, text)
		turns = append(turns, turn)
		parent = turn
	}

	return turns
}
