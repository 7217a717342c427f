package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/storage"
)

const (
	learnerAda   = "ada@example.com"
	learnerGrace = "grace@example.com"
	learnerAlan  = "alan@example.com"
)

type seedScenario struct {
	Attempts   []*learn.Attempt
	CheckIns   []*learn.CheckIn
	Activities []*learn.Activity
}

// SeedDemo fills an empty store with demo quizzes and three learners at
// different stages of progress. Returns the learner and record counts.
func SeedDemo(ctx context.Context, driver storage.Driver) (int, int, error) {
	existing, err := driver.Learners(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("check storage: %w", err)
	}
	if len(existing) > 0 {
		return 0, 0, errors.New("storage already has learner data (use --overwrite)")
	}

	for _, quiz := range demoQuizzes() {
		if _, err := driver.PutQuiz(ctx, quiz); err != nil {
			return 0, 0, fmt.Errorf("seed quiz: %w", err)
		}
	}

	scenarios := demoScenarios(time.Now().UTC())
	recordCount := 0
	for _, scenario := range scenarios {
		inserted, err := insertScenario(ctx, driver, scenario)
		if err != nil {
			return 0, 0, err
		}
		recordCount += inserted
	}

	return len(scenarios), recordCount, nil
}

func insertScenario(ctx context.Context, driver storage.Driver, scenario seedScenario) (int, error) {
	count := 0
	for _, attempt := range scenario.Attempts {
		if err := driver.PutAttempt(ctx, attempt); err != nil {
			return count, fmt.Errorf("seed attempt: %w", err)
		}
		count++
	}
	for _, checkIn := range scenario.CheckIns {
		if err := driver.PutCheckIn(ctx, checkIn); err != nil {
			return count, fmt.Errorf("seed check-in: %w", err)
		}
		count++
	}
	for _, activity := range scenario.Activities {
		if err := driver.PutActivity(ctx, activity); err != nil {
			return count, fmt.Errorf("seed activity: %w", err)
		}
		count++
	}
	return count, nil
}

func demoQuizzes() []*learn.Quiz {
	return []*learn.Quiz{
		{
			Slug:       "fractions-1",
			Title:      "Fractions Foundations",
			Topic:      "arithmetic",
			Difficulty: learn.DifficultyIntro,
			Questions: []learn.Question{
				{Prompt: "What is 1/2 + 1/4?", Choices: []string{"2/6", "3/4", "1/8"}, Answer: 1},
				{Prompt: "Which fraction is largest?", Choices: []string{"2/3", "3/5", "5/9"}, Answer: 0},
				{Prompt: "Reduce 6/8 to lowest terms.", Choices: []string{"3/4", "2/3", "6/8"}, Answer: 0},
			},
		},
		{
			Slug:       "decimals-1",
			Title:      "Working With Decimals",
			Topic:      "arithmetic",
			Difficulty: learn.DifficultyIntro,
			Questions: []learn.Question{
				{Prompt: "What is 0.25 as a fraction?", Choices: []string{"1/4", "2/5", "1/25"}, Answer: 0},
				{Prompt: "What is 0.3 * 10?", Choices: []string{"0.03", "3", "30"}, Answer: 1},
			},
		},
		{
			Slug:       "algebra-1",
			Title:      "Solving Linear Equations",
			Topic:      "algebra",
			Difficulty: learn.DifficultyCore,
			Questions: []learn.Question{
				{Prompt: "Solve 2x + 3 = 11.", Choices: []string{"x = 3", "x = 4", "x = 7"}, Answer: 1},
				{Prompt: "Solve x/3 = 5.", Choices: []string{"x = 15", "x = 5/3", "x = 8"}, Answer: 0},
				{Prompt: "Solve 3(x - 2) = 9.", Choices: []string{"x = 3", "x = 5", "x = 9"}, Answer: 1, Points: 2},
			},
		},
		{
			Slug:       "geometry-1",
			Title:      "Angles and Triangles",
			Topic:      "geometry",
			Difficulty: learn.DifficultyStretch,
			Questions: []learn.Question{
				{Prompt: "The angles of a triangle sum to?", Choices: []string{"90", "180", "360"}, Answer: 1},
				{Prompt: "An angle over 90 degrees is called?", Choices: []string{"acute", "right", "obtuse"}, Answer: 2, Points: 2},
			},
		},
	}
}

func demoScenarios(now time.Time) []seedScenario {
	return []seedScenario{
		adaScenario(now),
		graceScenario(now),
		alanScenario(now),
	}
}

// adaScenario is the strong learner: a week-long streak, mastered
// arithmetic, and an improving mood.
func adaScenario(now time.Time) seedScenario {
	return seedScenario{
		Attempts: []*learn.Attempt{
			seedAttempt(learnerAda, "fractions-1", []int{1, 2, 1}, 1, 3, now.AddDate(0, 0, -6)),
			seedAttempt(learnerAda, "fractions-1", []int{1, 0, 0}, 3, 3, now.AddDate(0, 0, -5)),
			seedAttempt(learnerAda, "decimals-1", []int{0, 1}, 2, 2, now.AddDate(0, 0, -4)),
			seedAttempt(learnerAda, "algebra-1", []int{1, 0, 0}, 2, 4, now.AddDate(0, 0, -2)),
			seedAttempt(learnerAda, "algebra-1", []int{1, 0, 1}, 4, 4, now.AddDate(0, 0, -1)),
		},
		CheckIns: []*learn.CheckIn{
			seedCheckIn(learnerAda, 3, 3, "fractions are confusing", now.AddDate(0, 0, -6)),
			seedCheckIn(learnerAda, 3, 4, "", now.AddDate(0, 0, -4)),
			seedCheckIn(learnerAda, 4, 4, "decimals clicked today", now.AddDate(0, 0, -3)),
			seedCheckIn(learnerAda, 5, 4, "solved every equation", now.AddDate(0, 0, -1)),
			seedCheckIn(learnerAda, 5, 5, "", now),
		},
		Activities: []*learn.Activity{
			seedActivity(learnerAda, learn.VerbQuizStarted, "fractions-1", now.AddDate(0, 0, -6)),
			seedActivity(learnerAda, learn.VerbQuizSubmitted, "fractions-1", now.AddDate(0, 0, -5)),
			seedActivity(learnerAda, learn.VerbChat, "", now.AddDate(0, 0, -3)),
			seedActivity(learnerAda, learn.VerbQuizSubmitted, "algebra-1", now.AddDate(0, 0, -1)),
			seedActivity(learnerAda, learn.VerbLogin, "", now),
		},
	}
}

// graceScenario is the sporadic learner: older activity with mixed
// scores and a flat mood.
func graceScenario(now time.Time) seedScenario {
	return seedScenario{
		Attempts: []*learn.Attempt{
			seedAttempt(learnerGrace, "fractions-1", []int{1, 1, 0}, 2, 3, now.AddDate(0, 0, -12)),
			seedAttempt(learnerGrace, "geometry-1", []int{1, 0}, 1, 3, now.AddDate(0, 0, -9)),
			seedAttempt(learnerGrace, "geometry-1", []int{1, 2}, 3, 3, now.AddDate(0, 0, -5)),
		},
		CheckIns: []*learn.CheckIn{
			seedCheckIn(learnerGrace, 3, 2, "hard to find time this week", now.AddDate(0, 0, -9)),
			seedCheckIn(learnerGrace, 3, 3, "", now.AddDate(0, 0, -5)),
		},
		Activities: []*learn.Activity{
			seedActivity(learnerGrace, learn.VerbQuizSubmitted, "geometry-1", now.AddDate(0, 0, -5)),
			seedActivity(learnerGrace, learn.VerbPlanGenerated, "", now.AddDate(0, 0, -5)),
		},
	}
}

// alanScenario is the brand-new learner: first session today.
func alanScenario(now time.Time) seedScenario {
	return seedScenario{
		Attempts: []*learn.Attempt{
			seedAttempt(learnerAlan, "fractions-1", []int{0, 0, 1}, 1, 3, now),
		},
		CheckIns: []*learn.CheckIn{
			seedCheckIn(learnerAlan, 4, 5, "excited to start", now),
		},
		Activities: []*learn.Activity{
			seedActivity(learnerAlan, learn.VerbLogin, "", now),
			seedActivity(learnerAlan, learn.VerbQuizStarted, "fractions-1", now),
		},
	}
}

func seedAttempt(learner, slug string, answers []int, score, maxScore int, at time.Time) *learn.Attempt {
	return &learn.Attempt{
		ID:          uuid.NewString(),
		Learner:     learner,
		QuizSlug:    slug,
		Answers:     answers,
		Score:       score,
		MaxScore:    maxScore,
		SubmittedAt: at,
	}
}

func seedCheckIn(learner string, mood, energy int, note string, at time.Time) *learn.CheckIn {
	return &learn.CheckIn{
		ID:         uuid.NewString(),
		Learner:    learner,
		Mood:       mood,
		Energy:     energy,
		Note:       note,
		RecordedAt: at,
	}
}

func seedActivity(learner, verb, object string, at time.Time) *learn.Activity {
	return &learn.Activity{
		ID:         uuid.NewString(),
		Learner:    learner,
		Verb:       verb,
		Object:     object,
		RecordedAt: at,
	}
}
