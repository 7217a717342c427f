package mcp

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/storage/inmemory"
)

func testQuiz() *learn.Quiz {
	return &learn.Quiz{
		Slug:       "fractions-1",
		Title:      "Fraction Foundations",
		Topic:      "fractions",
		Difficulty: learn.DifficultyIntro,
		Questions: []learn.Question{
			{Prompt: "1/2 + 1/4?", Choices: []string{"3/4", "2/6"}, Answer: 0},
			{Prompt: "Which is larger?", Choices: []string{"2/3", "3/5"}, Answer: 0, Points: 2},
		},
	}
}

var _ = Describe("Quiz lookup tool", func() {
	var (
		server *Server
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.TODO()

		var err error
		server, err = NewServer(Config{Driver: driver, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		_, err = driver.PutQuiz(ctx, testQuiz())
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns one quiz with the answer keys withheld", func() {
		result, output, err := server.handleQuizLookup(ctx, nil, QuizLookupInput{Slug: "fractions-1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeFalse())

		Expect(output.Count).To(Equal(1))
		Expect(output.Quiz).NotTo(BeNil())
		Expect(output.Quiz.Slug).To(Equal("fractions-1"))
		Expect(output.Quiz.Questions).To(HaveLen(2))

		text, ok := result.Content[0].(*mcp.TextContent)
		Expect(ok).To(BeTrue())
		Expect(text.Text).To(ContainSubstring("fractions-1"))
		Expect(text.Text).NotTo(ContainSubstring(`"answer"`))
	})

	It("lists the catalog when the slug is omitted", func() {
		result, output, err := server.handleQuizLookup(ctx, nil, QuizLookupInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeFalse())

		Expect(output.Quiz).To(BeNil())
		Expect(output.Quizzes).To(HaveLen(1))
		Expect(output.Count).To(Equal(1))
		Expect(output.Quizzes[0].MaxScore).To(Equal(3))
	})

	It("flags a miss as a tool error", func() {
		result, output, err := server.handleQuizLookup(ctx, nil, QuizLookupInput{Slug: "algebra-9"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())
		Expect(output.Count).To(Equal(0))

		text, ok := result.Content[0].(*mcp.TextContent)
		Expect(ok).To(BeTrue())
		Expect(text.Text).To(Equal("Quiz not found: algebra-9"))
	})
})
