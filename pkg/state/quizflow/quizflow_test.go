package quizflow_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/state"
	"github.com/studyhallco/studyhall/pkg/state/quizflow"
)

func decimalsQuiz() *learn.Quiz {
	return &learn.Quiz{
		Slug:       "decimals-1",
		Title:      "Decimals Basics",
		Topic:      "math",
		Difficulty: learn.DifficultyIntro,
		Questions: []learn.Question{
			{Prompt: "0.5 as a fraction?", Choices: []string{"1/2", "1/5"}, Answer: 0},
			{Prompt: "0.25 + 0.75?", Choices: []string{"0.9", "1.0"}, Answer: 1},
			{Prompt: "Round 2.45 to one place", Choices: []string{"2.4", "2.5"}, Answer: 1, Points: 2},
		},
	}
}

var _ = Describe("Quizflow state", func() {
	var store *state.Store[quizflow.State]

	BeforeEach(func() {
		store = quizflow.New()
	})

	It("starts idle", func() {
		s := store.State()
		Expect(s.Phase).To(Equal(quizflow.PhaseIdle))
		Expect(s.Quiz).To(BeNil())

		_, ok := quizflow.Current(s)
		Expect(ok).To(BeFalse())
	})

	Describe("Started", func() {
		It("seeds an answering run with everything unanswered", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})

			s := store.State()
			Expect(s.Phase).To(Equal(quizflow.PhaseAnswering))
			Expect(s.Index).To(BeZero())
			Expect(s.Answers).To(Equal([]int{
				quizflow.Unanswered, quizflow.Unanswered, quizflow.Unanswered,
			}))
			Expect(quizflow.AnsweredCount(s)).To(BeZero())
		})
	})

	Describe("Answered", func() {
		It("records the choice for the question under the cursor", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
			store.Dispatch(quizflow.Answered{Choice: 0})

			s := store.State()
			Expect(s.Answers[0]).To(Equal(0))
			Expect(quizflow.AnsweredCount(s)).To(Equal(1))
		})

		It("produces a fresh snapshot instead of editing the old one", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
			before := store.State()

			store.Dispatch(quizflow.Answered{Choice: 1})

			Expect(before.Answers[0]).To(Equal(quizflow.Unanswered))
			Expect(store.State().Answers[0]).To(Equal(1))
		})

		It("is a no-op while idle", func() {
			store.Dispatch(quizflow.Answered{Choice: 1})

			Expect(store.State().Phase).To(Equal(quizflow.PhaseIdle))
			Expect(store.State().Answers).To(BeNil())
		})
	})

	Describe("navigation", func() {
		BeforeEach(func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
		})

		It("advances and retreats the cursor", func() {
			store.Dispatch(quizflow.Advanced{})
			Expect(store.State().Index).To(Equal(1))

			q, ok := quizflow.Current(store.State())
			Expect(ok).To(BeTrue())
			Expect(q.Prompt).To(Equal("0.25 + 0.75?"))

			store.Dispatch(quizflow.Retreated{})
			Expect(store.State().Index).To(BeZero())
		})

		It("clamps at both ends", func() {
			store.Dispatch(quizflow.Retreated{})
			Expect(store.State().Index).To(BeZero())

			for range 5 {
				store.Dispatch(quizflow.Advanced{})
			}
			Expect(store.State().Index).To(Equal(2))
		})
	})

	Describe("Submitted", func() {
		It("grades the run and latches the phase", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
			store.Dispatch(quizflow.Answered{Choice: 0})
			store.Dispatch(quizflow.Advanced{})
			store.Dispatch(quizflow.Answered{Choice: 1})
			store.Dispatch(quizflow.Advanced{})
			store.Dispatch(quizflow.Answered{Choice: 0})

			store.Dispatch(quizflow.Submitted{})

			s := store.State()
			Expect(s.Phase).To(Equal(quizflow.PhaseSubmitted))
			Expect(s.Score).To(Equal(2))
			Expect(s.MaxScore).To(Equal(4))
		})

		It("scores unanswered questions as zero", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
			store.Dispatch(quizflow.Answered{Choice: 0})
			store.Dispatch(quizflow.Submitted{})

			s := store.State()
			Expect(s.Score).To(Equal(1))
			Expect(s.MaxScore).To(Equal(4))
		})

		It("rejects answers after submission", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
			store.Dispatch(quizflow.Submitted{})
			store.Dispatch(quizflow.Answered{Choice: 1})

			Expect(store.State().Answers[0]).To(Equal(quizflow.Unanswered))
		})

		It("ignores a second submission", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
			store.Dispatch(quizflow.Answered{Choice: 0})
			store.Dispatch(quizflow.Submitted{})
			first := store.State()

			store.Dispatch(quizflow.Submitted{})
			Expect(store.State()).To(Equal(first))
		})

		It("supports restarting after a submitted run", func() {
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})
			store.Dispatch(quizflow.Submitted{})
			store.Dispatch(quizflow.Started{Quiz: decimalsQuiz()})

			s := store.State()
			Expect(s.Phase).To(Equal(quizflow.PhaseAnswering))
			Expect(s.Score).To(BeZero())
		})
	})
})
