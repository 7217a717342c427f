package thread_test

import (
	"encoding/hex"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/thread"
)

var _ = Describe("NewTurn", func() {
	Context("when creating a thread root (no parent)", func() {
		It("sets ParentHash to nil", func() {
			turn := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "what is recursion?")
			Expect(turn.ParentHash).To(BeNil())
		})

		It("computes a hex-encoded SHA-256 hash", func() {
			turn := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "what is recursion?")
			Expect(turn.Hash).To(HaveLen(64))
			_, err := hex.DecodeString(turn.Hash)
			Expect(err).NotTo(HaveOccurred())
		})

		It("produces the same hash for the same content", func() {
			a := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "same question")
			b := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "same question")
			Expect(a.Hash).To(Equal(b.Hash))
		})

		It("produces different hashes for different text", func() {
			a := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "question A")
			b := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "question B")
			Expect(a.Hash).NotTo(Equal(b.Hash))
		})

		It("produces different hashes for different roles", func() {
			a := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "hello")
			b := thread.NewTurn(nil, "ada@example.com", thread.RoleMentor, "hello")
			Expect(a.Hash).NotTo(Equal(b.Hash))
		})

		It("produces different hashes for different learners", func() {
			a := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "hello")
			b := thread.NewTurn(nil, "gus@example.com", thread.RoleLearner, "hello")
			Expect(a.Hash).NotTo(Equal(b.Hash))
		})

		It("stamps CreatedAt without affecting the hash", func() {
			a := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "stable")
			time.Sleep(2 * time.Millisecond)
			b := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "stable")

			Expect(a.CreatedAt).NotTo(BeZero())
			Expect(a.CreatedAt).NotTo(Equal(b.CreatedAt))
			Expect(a.Hash).To(Equal(b.Hash))
		})
	})

	Context("when creating a child turn", func() {
		It("links to the parent hash", func() {
			parent := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "what is recursion?")
			child := thread.NewTurn(parent, "ada@example.com", thread.RoleMentor, "a function calling itself")

			Expect(child.ParentHash).NotTo(BeNil())
			Expect(*child.ParentHash).To(Equal(parent.Hash))
		})

		It("includes the parent in the hash", func() {
			parentA := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "question A")
			parentB := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "question B")

			childA := thread.NewTurn(parentA, "ada@example.com", thread.RoleMentor, "answer")
			childB := thread.NewTurn(parentB, "ada@example.com", thread.RoleMentor, "answer")

			Expect(childA.Hash).NotTo(Equal(childB.Hash))
		})

		It("forms a branch when two children share a parent", func() {
			parent := thread.NewTurn(nil, "ada@example.com", thread.RoleLearner, "explain closures")
			first := thread.NewTurn(parent, "ada@example.com", thread.RoleMentor, "short answer")
			second := thread.NewTurn(parent, "ada@example.com", thread.RoleMentor, "long answer")

			Expect(*first.ParentHash).To(Equal(parent.Hash))
			Expect(*second.ParentHash).To(Equal(parent.Hash))
			Expect(first.Hash).NotTo(Equal(second.Hash))
		})
	})
})
