package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/importer"
	"github.com/studyhallco/studyhall/pkg/storage/inmemory"
)

var _ = Describe("Importer", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
		im     *importer.Importer
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		im = importer.NewImporter(driver, nil)
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("Read", func() {
		It("imports attempts and check-ins and counts the rest as skipped", func() {
			jsonl := `{"type":"attempt","learner":"ada@example.com","quiz_slug":"fractions-1","answers":[0,1],"score":2,"max_score":3,"submitted_at":"2026-03-01T10:00:00Z"}
{"type":"attempt","learner":"grace@example.com","quiz_slug":"algebra-1","score":4,"max_score":4,"submitted_at":"2026-03-02T09:30:00Z"}
{"type":"checkin","learner":"ada@example.com","mood":4,"energy":3,"note":"solid day","recorded_at":"2026-03-01T18:00:00Z"}
{"type":"attempt","learner":"","quiz_slug":"fractions-1","score":1,"max_score":3,"submitted_at":"2026-03-01T10:00:00Z"}
not even json
{"type":"enrollment","learner":"alan@example.com"}
`

			result, err := im.Read(ctx, strings.NewReader(jsonl))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Attempts).To(Equal(2))
			Expect(result.CheckIns).To(Equal(1))
			Expect(result.Skipped).To(Equal(3))
			Expect(result.Lines).To(Equal(6))

			attempts, err := driver.AttemptsByLearner(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(HaveLen(1))
			Expect(attempts[0].QuizSlug).To(Equal("fractions-1"))
			Expect(attempts[0].Score).To(Equal(2))
			Expect(attempts[0].Answers).To(Equal([]int{0, 1}))

			checkIns, err := driver.CheckInsByLearner(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(checkIns).To(HaveLen(1))
			Expect(checkIns[0].Mood).To(Equal(4))
			Expect(checkIns[0].Note).To(Equal("solid day"))
		})

		It("ignores blank lines entirely", func() {
			jsonl := "\n\n{\"type\":\"checkin\",\"learner\":\"ada@example.com\",\"mood\":3,\"energy\":3,\"recorded_at\":\"2026-03-01T18:00:00Z\"}\n\n"

			result, err := im.Read(ctx, strings.NewReader(jsonl))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Lines).To(Equal(1))
			Expect(result.CheckIns).To(Equal(1))
			Expect(result.Skipped).To(BeZero())
		})

		It("reimports records with explicit IDs without duplicating", func() {
			jsonl := `{"type":"attempt","id":"att-1","learner":"ada@example.com","quiz_slug":"fractions-1","score":2,"max_score":3,"submitted_at":"2026-03-01T10:00:00Z"}`

			_, err := im.Read(ctx, strings.NewReader(jsonl))
			Expect(err).NotTo(HaveOccurred())
			_, err = im.Read(ctx, strings.NewReader(jsonl))
			Expect(err).NotTo(HaveOccurred())

			attempts, err := driver.AttemptsByLearner(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(HaveLen(1))
			Expect(attempts[0].ID).To(Equal("att-1"))
		})

		DescribeTable("skips records that do not validate",
			func(line string) {
				result, err := im.Read(ctx, strings.NewReader(line))
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Skipped).To(Equal(1))
				Expect(result.Attempts).To(BeZero())
				Expect(result.CheckIns).To(BeZero())
			},
			Entry("score above max",
				`{"type":"attempt","learner":"a@b.c","quiz_slug":"q","score":5,"max_score":3,"submitted_at":"2026-03-01T10:00:00Z"}`),
			Entry("missing timestamp",
				`{"type":"attempt","learner":"a@b.c","quiz_slug":"q","score":1,"max_score":3}`),
			Entry("missing quiz slug",
				`{"type":"attempt","learner":"a@b.c","score":1,"max_score":3,"submitted_at":"2026-03-01T10:00:00Z"}`),
			Entry("mood out of range",
				`{"type":"checkin","learner":"a@b.c","mood":9,"energy":3,"recorded_at":"2026-03-01T18:00:00Z"}`),
			Entry("check-in without learner",
				`{"type":"checkin","mood":3,"energy":3,"recorded_at":"2026-03-01T18:00:00Z"}`),
		)
	})

	Describe("File", func() {
		It("imports a JSONL file from disk", func() {
			path := filepath.Join(GinkgoT().TempDir(), "history.jsonl")
			jsonl := `{"type":"checkin","learner":"grace@example.com","mood":2,"energy":2,"recorded_at":"2026-02-20T08:00:00Z"}
{"type":"attempt","learner":"grace@example.com","quiz_slug":"geometry-1","score":1,"max_score":3,"submitted_at":"2026-02-20T09:00:00Z"}
`
			Expect(os.WriteFile(path, []byte(jsonl), 0o644)).To(Succeed())

			result, err := im.File(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Attempts).To(Equal(1))
			Expect(result.CheckIns).To(Equal(1))
		})

		It("fails for a missing file", func() {
			_, err := im.File(ctx, filepath.Join(GinkgoT().TempDir(), "nope.jsonl"))
			Expect(err).To(MatchError(ContainSubstring("opening import file")))
		})
	})

	Describe("Result", func() {
		It("summarizes an import", func() {
			r := &importer.Result{Attempts: 2, CheckIns: 1, Skipped: 3, Lines: 6}
			Expect(r.Summary()).To(Equal("Import complete: 2 attempts, 1 check-ins (3 of 6 lines skipped)"))
		})
	})
})
