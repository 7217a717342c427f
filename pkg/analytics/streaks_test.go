package analytics

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/learn"
)

var _ = Describe("computeStreak", func() {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

	countsFor := func(daysAgo ...int) map[string]int {
		counts := map[string]int{}
		for _, d := range daysAgo {
			counts[dayKey(now.AddDate(0, 0, -d))]++
		}
		return counts
	}

	DescribeTable("consecutive day runs",
		func(daysAgo []int, expected int) {
			counts := countsFor(daysAgo...)
			Expect(computeStreak(counts, now)).To(Equal(expected))
		},
		Entry("no activity", []int{}, 0),
		Entry("active today only", []int{0}, 1),
		Entry("three days ending today", []int{2, 1, 0}, 3),
		Entry("streak alive from yesterday", []int{3, 2, 1}, 3),
		Entry("broken two days ago", []int{4, 3, 2}, 0),
		Entry("gap in the middle", []int{4, 1, 0}, 2),
		Entry("only old activity", []int{10}, 0),
	)

	It("counts a day once regardless of record volume", func() {
		counts := countsFor(0, 0, 0, 1)
		Expect(computeStreak(counts, now)).To(Equal(2))
	})

	It("buckets by UTC day, not local time", func() {
		lateNight := time.Date(2026, 3, 15, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
		counts := map[string]int{dayKey(lateNight): 1}
		Expect(counts).To(HaveKey("2026-03-15"))
	})
})

var _ = Describe("computeMoodTrend", func() {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// newestFirst builds check-ins the way the storage listings return
	// them: the first mood is the most recent.
	newestFirst := func(moods ...int) []*learn.CheckIn {
		checkIns := make([]*learn.CheckIn, 0, len(moods))
		for i, mood := range moods {
			checkIns = append(checkIns, &learn.CheckIn{
				Learner:    "ada@example.com",
				Mood:       mood,
				Energy:     3,
				RecordedAt: at.Add(-time.Duration(i) * time.Hour),
			})
		}
		return checkIns
	}

	It("returns zero for fewer than two check-ins", func() {
		Expect(computeMoodTrend(nil)).To(BeZero())
		Expect(computeMoodTrend(newestFirst(4))).To(BeZero())
	})

	It("is positive when recent moods beat older ones", func() {
		trend := computeMoodTrend(newestFirst(5, 5, 4, 4, 3, 3, 2, 2, 2, 2))
		Expect(trend).To(BeNumerically(">", 0))
		Expect(trend).To(BeNumerically("~", 4.2-2.2, 0.001))
	})

	It("is negative when mood is declining", func() {
		trend := computeMoodTrend(newestFirst(2, 2, 3, 4, 5, 5))
		Expect(trend).To(BeNumerically("<", 0))
	})

	It("splits a short run in half", func() {
		// Three check-ins: recent window [5], previous [3, 3].
		trend := computeMoodTrend(newestFirst(5, 3, 3))
		Expect(trend).To(BeNumerically("~", 2.0, 0.001))
	})

	It("is flat for a steady mood", func() {
		Expect(computeMoodTrend(newestFirst(3, 3, 3, 3))).To(BeZero())
	})
})

var _ = Describe("buildStreakCalendar", func() {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

	It("always renders the full trailing window, oldest first", func() {
		calendar := buildStreakCalendar(map[string]int{}, now)

		Expect(calendar).To(HaveLen(streakCalendarDays))
		Expect(calendar[0].Date).To(Equal("2026-02-16"))
		Expect(calendar[len(calendar)-1].Date).To(Equal("2026-03-15"))
		for _, day := range calendar {
			Expect(day.Active).To(BeFalse())
		}
	})

	It("marks active days with their record counts", func() {
		counts := map[string]int{
			dayKey(now):                   3,
			dayKey(now.AddDate(0, 0, -2)): 1,
		}

		calendar := buildStreakCalendar(counts, now)

		last := calendar[len(calendar)-1]
		Expect(last.Active).To(BeTrue())
		Expect(last.Count).To(Equal(3))

		twoBack := calendar[len(calendar)-3]
		Expect(twoBack.Active).To(BeTrue())
		Expect(twoBack.Count).To(Equal(1))

		yesterday := calendar[len(calendar)-2]
		Expect(yesterday.Active).To(BeFalse())
	})
})
