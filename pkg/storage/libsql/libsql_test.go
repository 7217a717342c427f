package libsql_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/storage/libsql"
	"github.com/studyhallco/studyhall/pkg/thread"
)

// testDSN returns the libSQL DSN from environment or skips the test. Use a
// local file URL ("file:/tmp/studyhall-test.db") to run without a Turso
// account.
func testDSN() string {
	dsn := os.Getenv("STUDYHALL_TEST_LIBSQL_DSN")
	if dsn == "" {
		Skip("STUDYHALL_TEST_LIBSQL_DSN not set, skipping libSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	var (
		driver *libsql.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		driver, err = libsql.NewDriver(ctx, testDSN())
		Expect(err).NotTo(HaveOccurred())

		for _, table := range []string{"quizzes", "attempts", "checkins", "activities", "turns", "plans"} {
			_, err := driver.DB().ExecContext(ctx, "DELETE FROM "+table)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	It("stores and retrieves a quiz", func() {
		quiz := &learn.Quiz{
			Slug:       "fractions-1",
			Title:      "Fractions Basics",
			Topic:      "math",
			Difficulty: learn.DifficultyIntro,
			Questions: []learn.Question{
				{Prompt: "1/2 + 1/2?", Choices: []string{"1", "2"}, Answer: 0},
			},
		}

		inserted, err := driver.PutQuiz(ctx, quiz)
		Expect(err).NotTo(HaveOccurred())
		Expect(inserted).To(BeTrue())

		got, err := driver.GetQuiz(ctx, "fractions-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Fractions Basics"))
	})

	It("deduplicates turns by content hash", func() {
		turn := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "hello")

		isNew, err := driver.PutTurn(ctx, turn)
		Expect(err).NotTo(HaveOccurred())
		Expect(isNew).To(BeTrue())

		isNew, err = driver.PutTurn(ctx, turn)
		Expect(err).NotTo(HaveOccurred())
		Expect(isNew).To(BeFalse())
	})
})
