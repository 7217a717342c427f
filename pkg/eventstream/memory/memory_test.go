package memory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/eventstream"
	"github.com/studyhallco/studyhall/pkg/eventstream/memory"
	"github.com/studyhallco/studyhall/pkg/learn"
)

var _ = Describe("Publisher", func() {
	var (
		pub *memory.Publisher
		ctx context.Context
	)

	BeforeEach(func() {
		pub = memory.NewPublisher()
		ctx = context.Background()
	})

	newCheckInEvent := func(learner string, mood int) eventstream.CheckInRecordedEvent {
		checkIn, err := learn.NewCheckIn(learner, mood, 3, "")
		Expect(err).NotTo(HaveOccurred())
		return eventstream.NewCheckInRecorded(checkIn)
	}

	It("should start with an empty event log", func() {
		Expect(pub.Events()).To(BeEmpty())
	})

	It("should record events in publish order", func() {
		first := newCheckInEvent("ada", 2)
		second := newCheckInEvent("ada", 5)

		Expect(pub.Publish(ctx, first)).To(Succeed())
		Expect(pub.Publish(ctx, second)).To(Succeed())

		events := pub.Events()
		Expect(events).To(HaveLen(2))
		Expect(events[0]).To(Equal(first))
		Expect(events[1]).To(Equal(second))
	})

	It("should snapshot the log so later publishes do not leak in", func() {
		Expect(pub.Publish(ctx, newCheckInEvent("ada", 3))).To(Succeed())

		snapshot := pub.Events()
		Expect(pub.Publish(ctx, newCheckInEvent("ada", 4))).To(Succeed())

		Expect(snapshot).To(HaveLen(1))
		Expect(pub.Events()).To(HaveLen(2))
	})

	It("should reject publishes after close", func() {
		Expect(pub.Close()).To(Succeed())

		err := pub.Publish(ctx, newCheckInEvent("ada", 3))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("closed"))
	})

	It("should keep already recorded events readable after close", func() {
		event := newCheckInEvent("ada", 3)
		Expect(pub.Publish(ctx, event)).To(Succeed())
		Expect(pub.Close()).To(Succeed())

		Expect(pub.Events()).To(ConsistOf(eventstream.Event(event)))
	})
})
