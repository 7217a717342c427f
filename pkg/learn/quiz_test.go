package learn_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/learn"
)

func fractionsQuiz() *learn.Quiz {
	return &learn.Quiz{
		Slug:       "fractions-basics",
		Title:      "Fractions Basics",
		Topic:      "math",
		Difficulty: learn.DifficultyIntro,
		Questions: []learn.Question{
			{Prompt: "1/2 + 1/4 = ?", Choices: []string{"3/4", "2/6", "1/8"}, Answer: 0},
			{Prompt: "Which is larger?", Choices: []string{"1/3", "1/2"}, Answer: 1},
			{Prompt: "Simplify 4/8", Choices: []string{"1/2", "2/4", "4/8"}, Answer: 0, Points: 2},
		},
	}
}

var _ = Describe("Grade", func() {
	It("scores all-correct answers to the max", func() {
		quiz := fractionsQuiz()
		score, max := learn.Grade(quiz, []int{0, 1, 0})
		Expect(score).To(Equal(4))
		Expect(max).To(Equal(4))
	})

	It("scores partially correct answers", func() {
		quiz := fractionsQuiz()
		score, max := learn.Grade(quiz, []int{0, 0, 1})
		Expect(score).To(Equal(1))
		Expect(max).To(Equal(4))
	})

	It("treats missing answers as wrong", func() {
		quiz := fractionsQuiz()
		score, max := learn.Grade(quiz, []int{0})
		Expect(score).To(Equal(1))
		Expect(max).To(Equal(4))
	})

	It("ignores extra answers beyond the question count", func() {
		quiz := fractionsQuiz()
		score, _ := learn.Grade(quiz, []int{0, 1, 0, 2, 2})
		Expect(score).To(Equal(4))
	})

	It("weights questions by their points", func() {
		quiz := fractionsQuiz()
		score, _ := learn.Grade(quiz, []int{1, 2, 0})
		Expect(score).To(Equal(2))
	})
})

var _ = Describe("Quiz validation", func() {
	It("accepts a well-formed quiz", func() {
		Expect(fractionsQuiz().Validate()).To(Succeed())
	})

	It("rejects a quiz without a slug", func() {
		quiz := fractionsQuiz()
		quiz.Slug = ""
		Expect(quiz.Validate()).To(MatchError(ContainSubstring("slug")))
	})

	It("rejects a quiz without questions", func() {
		quiz := fractionsQuiz()
		quiz.Questions = nil
		Expect(quiz.Validate()).To(MatchError(ContainSubstring("no questions")))
	})

	It("rejects a question with a single choice", func() {
		quiz := fractionsQuiz()
		quiz.Questions[1].Choices = []string{"only"}
		Expect(quiz.Validate()).To(MatchError(ContainSubstring("two choices")))
	})

	It("rejects an out-of-range answer index", func() {
		quiz := fractionsQuiz()
		quiz.Questions[0].Answer = 7
		Expect(quiz.Validate()).To(MatchError(ContainSubstring("out of range")))
	})
})

var _ = Describe("Quiz projections", func() {
	It("summarizes a quiz with question count and max score", func() {
		summary := fractionsQuiz().Summary()

		Expect(summary.Slug).To(Equal("fractions-basics"))
		Expect(summary.Title).To(Equal("Fractions Basics"))
		Expect(summary.Topic).To(Equal("math"))
		Expect(summary.Difficulty).To(Equal(learn.DifficultyIntro))
		Expect(summary.QuestionCount).To(Equal(3))
		Expect(summary.MaxScore).To(Equal(4))
	})

	It("builds a learner view without answer keys", func() {
		view := fractionsQuiz().View()

		Expect(view.Slug).To(Equal("fractions-basics"))
		Expect(view.Questions).To(HaveLen(3))
		Expect(view.Questions[0].Prompt).To(Equal("1/2 + 1/4 = ?"))
		Expect(view.Questions[0].Choices).To(Equal([]string{"3/4", "2/6", "1/8"}))
	})

	It("normalizes zero-point questions to one point in the view", func() {
		view := fractionsQuiz().View()

		Expect(view.Questions[0].Points).To(Equal(1))
		Expect(view.Questions[2].Points).To(Equal(2))
	})
})

var _ = Describe("NewAttempt", func() {
	It("grades and stamps the attempt", func() {
		quiz := fractionsQuiz()
		attempt := learn.NewAttempt("ada@example.com", quiz, []int{0, 1, 0})

		Expect(attempt.ID).NotTo(BeEmpty())
		Expect(attempt.QuizSlug).To(Equal("fractions-basics"))
		Expect(attempt.Score).To(Equal(4))
		Expect(attempt.MaxScore).To(Equal(4))
		Expect(attempt.Percent()).To(BeNumerically("==", 100))
		Expect(attempt.SubmittedAt).NotTo(BeZero())
	})

	It("reports zero percent for an empty max score", func() {
		attempt := &learn.Attempt{}
		Expect(attempt.Percent()).To(BeZero())
	})
})

var _ = Describe("NewCheckIn", func() {
	It("records a valid check-in", func() {
		checkin, err := learn.NewCheckIn("ada@example.com", 4, 3, "feeling good")
		Expect(err).NotTo(HaveOccurred())
		Expect(checkin.Mood).To(Equal(4))
		Expect(checkin.Energy).To(Equal(3))
		Expect(checkin.ID).NotTo(BeEmpty())
	})

	It("rejects mood outside 1..5", func() {
		_, err := learn.NewCheckIn("ada@example.com", 0, 3, "")
		Expect(err).To(MatchError(ContainSubstring("mood")))

		_, err = learn.NewCheckIn("ada@example.com", 6, 3, "")
		Expect(err).To(MatchError(ContainSubstring("mood")))
	})

	It("rejects energy outside 1..5", func() {
		_, err := learn.NewCheckIn("ada@example.com", 3, 9, "")
		Expect(err).To(MatchError(ContainSubstring("energy")))
	})
})
