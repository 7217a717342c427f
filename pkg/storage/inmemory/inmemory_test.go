package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/storage/inmemory"
	"github.com/studyhallco/studyhall/pkg/thread"
)

func testQuiz(slug string) *learn.Quiz {
	return &learn.Quiz{
		Slug:       slug,
		Title:      "Test Quiz " + slug,
		Topic:      "math",
		Difficulty: learn.DifficultyIntro,
		Questions: []learn.Question{
			{Prompt: "2+2?", Choices: []string{"3", "4"}, Answer: 1},
		},
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
	})

	Describe("quizzes", func() {
		It("stores and retrieves a quiz", func() {
			inserted, err := driver.PutQuiz(ctx, testQuiz("fractions-1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			quiz, err := driver.GetQuiz(ctx, "fractions-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(quiz.Title).To(Equal("Test Quiz fractions-1"))
		})

		It("replaces content on re-put and reports not-new", func() {
			driver.PutQuiz(ctx, testQuiz("fractions-1"))

			updated := testQuiz("fractions-1")
			updated.Title = "Fractions, Revised"
			inserted, err := driver.PutQuiz(ctx, updated)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			quiz, err := driver.GetQuiz(ctx, "fractions-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(quiz.Title).To(Equal("Fractions, Revised"))
		})

		It("returns NotFoundError for a missing slug", func() {
			_, err := driver.GetQuiz(ctx, "nonexistent")
			Expect(err).To(HaveOccurred())

			var notFoundErr storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFoundErr))
		})

		It("lists quizzes ordered by slug", func() {
			driver.PutQuiz(ctx, testQuiz("geometry-1"))
			driver.PutQuiz(ctx, testQuiz("algebra-1"))
			driver.PutQuiz(ctx, testQuiz("decimals-1"))

			quizzes, err := driver.ListQuizzes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(quizzes).To(HaveLen(3))
			Expect(quizzes[0].Slug).To(Equal("algebra-1"))
			Expect(quizzes[2].Slug).To(Equal("geometry-1"))
		})

		It("rejects nil quizzes", func() {
			_, err := driver.PutQuiz(ctx, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nil quiz"))
		})
	})

	Describe("attempts", func() {
		It("stores and retrieves an attempt", func() {
			attempt := learn.NewAttempt("ada@example.com", testQuiz("fractions-1"), []int{1})

			Expect(driver.PutAttempt(ctx, attempt)).To(Succeed())

			got, err := driver.GetAttempt(ctx, attempt.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Score).To(Equal(1))
			Expect(got.QuizSlug).To(Equal("fractions-1"))
		})

		It("returns a learner's attempts newest first", func() {
			base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
			for i, id := range []string{"a", "b", "c"} {
				driver.PutAttempt(ctx, &learn.Attempt{
					ID:          id,
					Learner:     "ada@example.com",
					QuizSlug:    "fractions-1",
					SubmittedAt: base.Add(time.Duration(i) * time.Hour),
				})
			}
			driver.PutAttempt(ctx, &learn.Attempt{
				ID:          "other",
				Learner:     "grace@example.com",
				QuizSlug:    "fractions-1",
				SubmittedAt: base,
			})

			attempts, err := driver.AttemptsByLearner(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(HaveLen(3))
			Expect(attempts[0].ID).To(Equal("c"))
			Expect(attempts[2].ID).To(Equal("a"))
		})

		It("returns NotFoundError for a missing attempt", func() {
			_, err := driver.GetAttempt(ctx, "nonexistent")

			var notFoundErr storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFoundErr))
		})
	})

	Describe("check-ins", func() {
		It("returns a learner's check-ins newest first", func() {
			base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
			for i, id := range []string{"one", "two"} {
				driver.PutCheckIn(ctx, &learn.CheckIn{
					ID:         id,
					Learner:    "ada@example.com",
					Mood:       3,
					Energy:     4,
					RecordedAt: base.Add(time.Duration(i) * time.Minute),
				})
			}

			checkIns, err := driver.CheckInsByLearner(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(checkIns).To(HaveLen(2))
			Expect(checkIns[0].ID).To(Equal("two"))
		})

		It("returns empty for an unknown learner", func() {
			checkIns, err := driver.CheckInsByLearner(ctx, "nobody@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(checkIns).To(BeEmpty())
		})
	})

	Describe("activities", func() {
		It("caps the result at the limit, newest first", func() {
			base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
			for i := range 5 {
				driver.PutActivity(ctx, &learn.Activity{
					ID:         string(rune('a' + i)),
					Learner:    "ada@example.com",
					Verb:       learn.VerbQuizSubmitted,
					RecordedAt: base.Add(time.Duration(i) * time.Second),
				})
			}

			activities, err := driver.ActivitiesByLearner(ctx, "ada@example.com", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(activities).To(HaveLen(2))
			Expect(activities[0].ID).To(Equal("e"))
			Expect(activities[1].ID).To(Equal("d"))
		})

		It("returns everything when limit is zero", func() {
			for i := range 3 {
				driver.PutActivity(ctx, &learn.Activity{
					ID:         string(rune('a' + i)),
					Learner:    "ada@example.com",
					Verb:       learn.VerbLogin,
					RecordedAt: time.Now().UTC(),
				})
			}

			activities, err := driver.ActivitiesByLearner(ctx, "ada@example.com", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(activities).To(HaveLen(3))
		})
	})

	Describe("turns", func() {
		It("is idempotent for duplicate puts", func() {
			turn := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "hello")

			isNew, err := driver.PutTurn(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())

			isNew, err = driver.PutTurn(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeFalse())

			count, _ := driver.CountTurns(ctx)
			Expect(count).To(Equal(1))
		})

		It("finds children of a parent", func() {
			parent := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "parent")
			child1 := thread.NewTurn(parent, "ada@example.com", thread.RoleMentor, "child1")
			child2 := thread.NewTurn(parent, "ada@example.com", thread.RoleMentor, "child2")

			driver.PutTurn(ctx, parent)
			driver.PutTurn(ctx, child1)
			driver.PutTurn(ctx, child2)

			children, err := driver.TurnsByParent(ctx, &parent.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(children).To(HaveLen(2))
		})

		It("returns roots and leaves", func() {
			root := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "root")
			mid := thread.NewTurn(root, "ada@example.com", thread.RoleMentor, "mid")
			leaf := thread.NewTurn(mid, "ada@example.com", thread.RoleLearner, "leaf")

			driver.PutTurn(ctx, root)
			driver.PutTurn(ctx, mid)
			driver.PutTurn(ctx, leaf)

			roots, err := driver.TurnRoots(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roots).To(HaveLen(1))
			Expect(roots[0].Hash).To(Equal(root.Hash))

			leaves, err := driver.TurnLeaves(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(leaves).To(HaveLen(1))
			Expect(leaves[0].Hash).To(Equal(leaf.Hash))
		})

		It("walks history from a leaf back to the root", func() {
			root := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "root")
			mid := thread.NewTurn(root, "ada@example.com", thread.RoleMentor, "mid")
			leaf := thread.NewTurn(mid, "ada@example.com", thread.RoleLearner, "leaf")

			driver.PutTurn(ctx, root)
			driver.PutTurn(ctx, mid)
			driver.PutTurn(ctx, leaf)

			history, err := driver.TurnHistory(ctx, leaf.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(3))
			Expect(history[0].Hash).To(Equal(leaf.Hash))
			Expect(history[2].Hash).To(Equal(root.Hash))
		})

		It("returns NotFoundError for a missing hash", func() {
			_, err := driver.GetTurn(ctx, "nonexistent")

			var notFoundErr storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFoundErr))
		})
	})

	Describe("plans", func() {
		It("stores and retrieves a plan", func() {
			plan := learn.NewPlan("ada@example.com", "pass algebra")
			plan.Weeks = []learn.PlanWeek{
				{Number: 1, Theme: "foundations", Items: []string{"fractions-1"}},
			}

			Expect(driver.PutPlan(ctx, plan)).To(Succeed())

			got, err := driver.GetPlan(ctx, plan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Goal).To(Equal("pass algebra"))
			Expect(got.Weeks).To(HaveLen(1))
		})

		It("returns a learner's plans newest first", func() {
			base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
			driver.PutPlan(ctx, &learn.Plan{ID: "old", Learner: "ada@example.com", CreatedAt: base})
			driver.PutPlan(ctx, &learn.Plan{ID: "new", Learner: "ada@example.com", CreatedAt: base.Add(time.Hour)})

			plans, err := driver.PlansByLearner(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(plans).To(HaveLen(2))
			Expect(plans[0].ID).To(Equal("new"))
		})
	})

	Describe("Learners", func() {
		It("returns an empty list for an empty store", func() {
			learners, err := driver.Learners(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(learners).To(BeEmpty())
		})

		It("collects learners across record types, deduplicated and sorted", func() {
			driver.PutAttempt(ctx, learn.NewAttempt("grace@example.com", testQuiz("fractions-1"), []int{1}))
			driver.PutCheckIn(ctx, &learn.CheckIn{ID: "c1", Learner: "ada@example.com", Mood: 4, Energy: 3})
			driver.PutActivity(ctx, &learn.Activity{ID: "a1", Learner: "ada@example.com", Verb: learn.VerbQuizSubmitted, Object: "fractions-1"})
			turn := thread.NewTurn(nil, "alan@example.com", thread.RoleLearner, "hello")
			driver.PutTurn(ctx, turn)

			learners, err := driver.Learners(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(learners).To(Equal([]string{"ada@example.com", "alan@example.com", "grace@example.com"}))
		})
	})

	Describe("Close", func() {
		It("is a no-op", func() {
			Expect(driver.Close()).To(Succeed())
		})
	})
})
