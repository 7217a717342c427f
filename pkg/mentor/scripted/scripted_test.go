package scripted

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/mentor"
)

// collect drains a chunk channel to completion.
func collect(ch <-chan mentor.Chunk) []mentor.Chunk {
	var chunks []mentor.Chunk
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	return chunks
}

var _ = Describe("Scripted Mentor Engine", func() {
	var (
		ctx    context.Context
		engine *Engine
	)

	BeforeEach(func() {
		ctx = context.Background()
		engine = NewEngine(Config{})
	})

	Describe("splitChunks", func() {
		DescribeTable("joining the pieces reproduces the text",
			func(text string) {
				pieces := splitChunks(text)
				Expect(strings.Join(pieces, "")).To(Equal(text))
			},
			Entry("plain words", "keep both sides balanced"),
			Entry("markdown with newlines", "# Plan\n\n- one\n- two\n"),
			Entry("leading whitespace", "  indented start"),
			Entry("trailing whitespace", "trailing space "),
			Entry("single word", "reciprocal"),
		)

		It("returns no pieces for empty text", func() {
			Expect(splitChunks("")).To(BeEmpty())
		})

		It("keeps each word with its following whitespace", func() {
			Expect(splitChunks("flip the fraction")).To(Equal([]string{
				"flip ", "the ", "fraction",
			}))
		})
	})

	Describe("Chat", func() {
		It("streams word-sized deltas and finishes with the assembled text", func() {
			ch, err := engine.Chat(ctx, mentor.Request{Prompt: "how do fractions work"})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			Expect(len(chunks)).To(BeNumerically(">", 2))

			var assembled strings.Builder
			for _, chunk := range chunks[:len(chunks)-1] {
				Expect(chunk.Type).To(Equal(mentor.ChunkDelta))
				assembled.WriteString(chunk.Text)
			}

			last := chunks[len(chunks)-1]
			Expect(last.Type).To(Equal(mentor.ChunkDone))
			Expect(last.Text).To(Equal(assembled.String()))
		})

		DescribeTable("picks the reply by prompt keyword",
			func(prompt, wantFragment string) {
				ch, err := engine.Chat(ctx, mentor.Request{Prompt: prompt})
				Expect(err).NotTo(HaveOccurred())

				chunks := collect(ch)
				done := chunks[len(chunks)-1]
				Expect(done.Text).To(ContainSubstring(wantFragment))
			},
			Entry("fractions", "I keep messing up FRACTION division", "reciprocal"),
			Entry("decimals", "adding decimals confuses me", "decimal points"),
			Entry("equations", "how do I solve for x", "both sides"),
			Entry("geometry", "what do triangle angles add to", "180 degrees"),
			Entry("frustration", "this is too hard", "Shrink the problem"),
			Entry("planning", "can you make me a schedule", "curriculum generate"),
		)

		It("falls back to a generic reply and echoes the prompt", func() {
			ch, err := engine.Chat(ctx, mentor.Request{Prompt: "tell me about prime numbers"})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			done := chunks[len(chunks)-1]
			Expect(done.Text).To(ContainSubstring(`"tell me about prime numbers"`))
			Expect(done.Text).To(ContainSubstring("studyhall quiz list"))
		})

		It("acknowledges an ongoing conversation", func() {
			ch, err := engine.Chat(ctx, mentor.Request{
				Prompt: "still stuck on fractions",
				History: []mentor.Message{
					{Role: "learner", Text: "how do fractions work"},
					{Role: "mentor", Text: "one number, not two"},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			done := chunks[len(chunks)-1]
			Expect(strings.HasPrefix(done.Text, "Picking up where we left off.")).To(BeTrue())
		})

		It("replies deterministically for the same request", func() {
			req := mentor.Request{Prompt: "decimal places"}

			first, err := engine.Chat(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			second, err := engine.Chat(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			firstChunks := collect(first)
			secondChunks := collect(second)
			Expect(firstChunks[len(firstChunks)-1].Text).To(Equal(secondChunks[len(secondChunks)-1].Text))
		})

		It("rejects an empty prompt", func() {
			_, err := engine.Chat(ctx, mentor.Request{Prompt: "   "})
			Expect(err).To(MatchError(ContainSubstring("prompt is required")))
		})

		It("stops streaming when the context is cancelled", func() {
			paced := NewEngine(Config{Delay: 20 * time.Millisecond})
			cancelCtx, cancel := context.WithCancel(ctx)

			ch, err := paced.Chat(cancelCtx, mentor.Request{Prompt: "how do fractions work"})
			Expect(err).NotTo(HaveOccurred())

			var received []mentor.Chunk
			received = append(received, <-ch)
			cancel()

			for chunk := range ch {
				received = append(received, chunk)
			}
			for _, chunk := range received {
				Expect(chunk.Type).To(Equal(mentor.ChunkDelta))
			}
		})
	})

	Describe("Plan", func() {
		It("scaffolds the requested number of weeks", func() {
			ch, err := engine.Plan(ctx, mentor.PlanRequest{Goal: "pass algebra", Weeks: 3})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			done := chunks[len(chunks)-1]
			Expect(done.Type).To(Equal(mentor.ChunkDone))
			Expect(done.Text).To(HavePrefix("# Study Plan: pass algebra"))
			Expect(done.Text).To(ContainSubstring("## Week 3"))
			Expect(done.Text).NotTo(ContainSubstring("## Week 4"))
		})

		It("labels the final week as review", func() {
			ch, err := engine.Plan(ctx, mentor.PlanRequest{Goal: "fractions", Weeks: 2})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			Expect(chunks[len(chunks)-1].Text).To(ContainSubstring("## Week 2: Review and stretch"))
		})

		It("defaults to four weeks", func() {
			ch, err := engine.Plan(ctx, mentor.PlanRequest{Goal: "geometry"})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			done := chunks[len(chunks)-1]
			Expect(done.Text).To(ContainSubstring("## Week 4"))
			Expect(done.Text).NotTo(ContainSubstring("## Week 5"))
		})

		It("caps oversized plans", func() {
			ch, err := engine.Plan(ctx, mentor.PlanRequest{Goal: "everything", Weeks: 50})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			done := chunks[len(chunks)-1]
			Expect(done.Text).To(ContainSubstring("## Week 12"))
			Expect(done.Text).NotTo(ContainSubstring("## Week 13"))
		})

		It("falls back to a generic goal", func() {
			ch, err := engine.Plan(ctx, mentor.PlanRequest{})
			Expect(err).NotTo(HaveOccurred())

			chunks := collect(ch)
			Expect(chunks[len(chunks)-1].Text).To(HavePrefix("# Study Plan: steady improvement"))
		})
	})

	Describe("interface compliance", func() {
		It("implements the mentor.Engine interface", func() {
			var _ mentor.Engine = engine
		})
	})
})
