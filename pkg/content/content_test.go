package content_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/content"
	"github.com/studyhallco/studyhall/pkg/storage/inmemory"
)

func quizTOML(slug, title string) string {
	return fmt.Sprintf(`slug = %q
title = %q
topic = "arithmetic"
difficulty = "intro"

[[questions]]
prompt = "What is 1/2 + 1/4?"
choices = ["3/4", "2/6", "1/6"]
answer = 0

[[questions]]
prompt = "Which fraction is largest?"
choices = ["1/3", "1/2", "1/4"]
answer = 1
points = 2
`, slug, title)
}

var _ = Describe("Content", func() {
	var (
		ctx    context.Context
		dir    string
		driver *inmemory.Driver
		loader *content.Loader
	)

	writeFile := func(name, body string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		driver = inmemory.NewDriver()
		loader = content.NewLoader(dir, driver, nil)
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("ParseFile", func() {
		It("parses a quiz with its questions", func() {
			writeFile("fractions-1.toml", quizTOML("fractions-1", "Fractions Foundations"))

			quiz, err := content.ParseFile(filepath.Join(dir, "fractions-1.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(quiz.Slug).To(Equal("fractions-1"))
			Expect(quiz.Title).To(Equal("Fractions Foundations"))
			Expect(quiz.Topic).To(Equal("arithmetic"))
			Expect(quiz.Questions).To(HaveLen(2))
			Expect(quiz.Questions[0].Answer).To(Equal(0))
			Expect(quiz.Questions[1].Points).To(Equal(2))
			Expect(quiz.MaxScore()).To(Equal(3))
		})

		It("falls back to the filename as slug", func() {
			body := `title = "Decimals"

[[questions]]
prompt = "0.5 equals?"
choices = ["1/2", "1/3"]
answer = 0
`
			writeFile("decimals-1.toml", body)

			quiz, err := content.ParseFile(filepath.Join(dir, "decimals-1.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(quiz.Slug).To(Equal("decimals-1"))
		})

		It("rejects TOML that is not a quiz", func() {
			writeFile("broken.toml", "this is not toml [")

			_, err := content.ParseFile(filepath.Join(dir, "broken.toml"))
			Expect(err).To(MatchError(ContainSubstring("parsing broken.toml")))
		})

		It("rejects a quiz that fails validation", func() {
			body := `slug = "bad-answer"
title = "Bad Answer"

[[questions]]
prompt = "Pick one"
choices = ["a", "b"]
answer = 5
`
			writeFile("bad-answer.toml", body)

			_, err := content.ParseFile(filepath.Join(dir, "bad-answer.toml"))
			Expect(err).To(MatchError(ContainSubstring("invalid quiz in bad-answer.toml")))
		})
	})

	Describe("LoadAll", func() {
		It("publishes every valid quiz file", func() {
			writeFile("fractions-1.toml", quizTOML("fractions-1", "Fractions Foundations"))
			writeFile("algebra-1.toml", quizTOML("algebra-1", "Solving Linear Equations"))
			writeFile("README.md", "# content")

			count, err := loader.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))

			quiz, err := driver.GetQuiz(ctx, "fractions-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(quiz.Title).To(Equal("Fractions Foundations"))
		})

		It("skips malformed files and publishes the rest", func() {
			writeFile("fractions-1.toml", quizTOML("fractions-1", "Fractions Foundations"))
			writeFile("broken.toml", "not [ valid")

			count, err := loader.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("fails when the content directory is missing", func() {
			missing := content.NewLoader(filepath.Join(dir, "nowhere"), driver, nil)

			_, err := missing.LoadAll(ctx)
			Expect(err).To(MatchError(ContainSubstring("reading content directory")))
		})
	})

	Describe("Watch", func() {
		It("publishes quiz files as they appear and updates on rewrite", func() {
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- loader.Watch(watchCtx)
			}()

			// Let the watcher register before the first write.
			time.Sleep(50 * time.Millisecond)

			writeFile("late.toml", quizTOML("late-quiz", "Late Arrival"))
			Eventually(func() error {
				_, err := driver.GetQuiz(ctx, "late-quiz")
				return err
			}, "2s", "20ms").Should(Succeed())

			writeFile("late.toml", quizTOML("late-quiz", "Late Arrival, Revised"))
			Eventually(func() string {
				quiz, err := driver.GetQuiz(ctx, "late-quiz")
				if err != nil {
					return ""
				}
				return quiz.Title
			}, "2s", "20ms").Should(Equal("Late Arrival, Revised"))

			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})

		It("keeps watching past a malformed write", func() {
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- loader.Watch(watchCtx)
			}()

			time.Sleep(50 * time.Millisecond)

			writeFile("broken.toml", "not [ valid")
			writeFile("good.toml", quizTOML("good-quiz", "Still Publishing"))

			Eventually(func() error {
				_, err := driver.GetQuiz(ctx, "good-quiz")
				return err
			}, "2s", "20ms").Should(Succeed())

			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})

		It("fails on a missing content directory", func() {
			missing := content.NewLoader(filepath.Join(dir, "nowhere"), driver, nil)

			err := missing.Watch(ctx)
			Expect(err).To(MatchError(ContainSubstring("watching content directory")))
		})
	})
})
