package recall_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/recall"
	"github.com/studyhallco/studyhall/pkg/storage/inmemory"
	"github.com/studyhallco/studyhall/pkg/thread"
	testutils "github.com/studyhallco/studyhall/pkg/utils/test"
	"github.com/studyhallco/studyhall/pkg/vector"
)

var _ = Describe("Searcher", func() {
	var (
		driver       *inmemory.Driver
		vectorDriver *testutils.MockVectorDriver
		embedder     *testutils.MockEmbedder
		ctx          context.Context
		searcher     *recall.Searcher
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		vectorDriver = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()
		ctx = context.Background()
		searcher = recall.NewSearcher(embedder, vectorDriver, driver, logger.Nop())
	})

	It("returns empty results when the vector store has no matches", func() {
		output, err := searcher.Search(ctx, "fractions", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Query).To(Equal("fractions"))
		Expect(output.Count).To(Equal(0))
		Expect(output.Results).To(BeEmpty())
	})

	It("returns matches with their thread history, root first", func() {
		turns := testutils.NewTestThread("ada@example.com",
			"How do I add fractions?",
			"Find a common denominator first.",
			"What about 1/2 + 1/3?",
		)
		for _, turn := range turns {
			_, err := driver.PutTurn(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
		}

		matched := turns[2]
		vectorDriver.Results = []vector.QueryResult{
			{
				Document: vector.Document{ID: matched.Hash, Hash: matched.Hash},
				Score:    0.95,
			},
		}

		output, err := searcher.Search(ctx, "adding fractions", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Count).To(Equal(1))

		result := output.Results[0]
		Expect(result.Hash).To(Equal(matched.Hash))
		Expect(result.Score).To(Equal(float32(0.95)))
		Expect(result.Learner).To(Equal("ada@example.com"))
		Expect(result.Role).To(Equal(thread.RoleLearner))
		Expect(result.Preview).To(Equal("What about 1/2 + 1/3?"))
		Expect(result.Turns).To(Equal(3))

		Expect(result.Thread[0].Hash).To(Equal(turns[0].Hash))
		Expect(result.Thread[0].Matched).To(BeFalse())
		Expect(result.Thread[2].Hash).To(Equal(matched.Hash))
		Expect(result.Thread[2].Matched).To(BeTrue())
	})

	It("defaults top_k when zero", func() {
		output, err := searcher.Search(ctx, "anything", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(output).NotTo(BeNil())
	})

	It("returns an error when embedding fails", func() {
		embedder.FailOn = "fail-query"

		_, err := searcher.Search(ctx, "fail-query", 5)
		Expect(err).To(MatchError(ContainSubstring("failed to embed query")))
	})

	It("returns an error when the vector query fails", func() {
		vectorDriver.FailQuery = true

		_, err := searcher.Search(ctx, "anything", 5)
		Expect(err).To(MatchError(ContainSubstring("failed to query vector store")))
	})

	It("skips hits whose history cannot be loaded", func() {
		turn := testutils.NewTestTurn("ada@example.com", thread.RoleLearner, "hello")
		_, err := driver.PutTurn(ctx, turn)
		Expect(err).NotTo(HaveOccurred())

		vectorDriver.Results = []vector.QueryResult{
			{Document: vector.Document{ID: "missing", Hash: "missing"}, Score: 0.9},
			{Document: vector.Document{ID: turn.Hash, Hash: turn.Hash}, Score: 0.8},
		}

		output, err := searcher.Search(ctx, "hello", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Count).To(Equal(1))
		Expect(output.Results[0].Hash).To(Equal(turn.Hash))
	})
})
