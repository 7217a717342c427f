package analytics

import (
	"time"

	"github.com/studyhallco/studyhall/pkg/learn"
)

const dayLayout = "2006-01-02"

// dayKey buckets a timestamp into a UTC calendar day.
func dayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// activityByDay counts a learner's records per UTC day across attempts,
// check-ins, and activity.
func activityByDay(record learnerRecords) map[string]int {
	counts := map[string]int{}
	for _, attempt := range record.attempts {
		counts[dayKey(attempt.SubmittedAt)]++
	}
	for _, checkIn := range record.checkIns {
		counts[dayKey(checkIn.RecordedAt)]++
	}
	for _, activity := range record.activities {
		counts[dayKey(activity.RecordedAt)]++
	}
	return counts
}

// computeStreak counts consecutive active days walking back from now. A
// streak that was alive yesterday still counts; it breaks only once a
// full day passes with no activity.
func computeStreak(counts map[string]int, now time.Time) int {
	if len(counts) == 0 {
		return 0
	}

	day := now.UTC()
	if counts[dayKey(day)] == 0 {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for counts[dayKey(day)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// computeMoodTrend compares the average mood of the newest check-ins
// against the window before them. Positive means mood is improving.
// CheckIns arrive newest first.
func computeMoodTrend(checkIns []*learn.CheckIn) float64 {
	if len(checkIns) < 2 {
		return 0
	}

	recent := checkIns
	if len(recent) > moodTrendWindow {
		recent = recent[:moodTrendWindow]
	}
	previous := checkIns[len(recent):]
	if len(previous) > moodTrendWindow {
		previous = previous[:moodTrendWindow]
	}
	if len(previous) == 0 {
		// Too few check-ins for two full windows; split what we have.
		half := len(recent) / 2
		previous = recent[half:]
		recent = recent[:half]
	}

	return avgMood(recent) - avgMood(previous)
}

func avgMood(checkIns []*learn.CheckIn) float64 {
	if len(checkIns) == 0 {
		return 0
	}
	sum := 0
	for _, checkIn := range checkIns {
		sum += checkIn.Mood
	}
	return float64(sum) / float64(len(checkIns))
}

// buildStreakCalendar renders the trailing weeks as a fixed-length
// calendar, oldest day first, so heatmaps always show a full grid.
func buildStreakCalendar(counts map[string]int, now time.Time) []StreakDay {
	days := make([]StreakDay, 0, streakCalendarDays)
	for i := streakCalendarDays - 1; i >= 0; i-- {
		key := dayKey(now.AddDate(0, 0, -i))
		days = append(days, StreakDay{
			Date:   key,
			Active: counts[key] > 0,
			Count:  counts[key],
		})
	}
	return days
}
