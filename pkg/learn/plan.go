package learn

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Plan is a generated curriculum: an ordered sequence of weekly themes with
// concrete study items.
type Plan struct {
	ID        string     `json:"id"`
	Learner   string     `json:"learner"`
	Goal      string     `json:"goal"`
	Weeks     []PlanWeek `json:"weeks"`
	CreatedAt time.Time  `json:"created_at"`
}

// PlanWeek is one week of a curriculum plan.
type PlanWeek struct {
	Number int      `json:"number"`
	Theme  string   `json:"theme"`
	Items  []string `json:"items"`
}

// NewPlan stamps an empty plan for a goal; weeks are appended as they are
// generated.
func NewPlan(learner, goal string) *Plan {
	return &Plan{
		ID:        uuid.NewString(),
		Learner:   learner,
		Goal:      goal,
		CreatedAt: time.Now().UTC(),
	}
}

// ParsePlanMarkdown extracts the weekly structure from generated plan
// markdown. A "## Week N: Theme" heading starts a week and the "- " lines
// under it become that week's items. Prose outside any week is skipped, so
// the parser tolerates preamble and closing remarks around the schedule.
func ParsePlanMarkdown(md string) []PlanWeek {
	var weeks []PlanWeek

	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "## Week "):
			number, theme, ok := splitWeekHeading(strings.TrimPrefix(line, "## Week "))
			if !ok {
				continue
			}
			weeks = append(weeks, PlanWeek{Number: number, Theme: theme})
		case strings.HasPrefix(line, "- ") && len(weeks) > 0:
			week := &weeks[len(weeks)-1]
			week.Items = append(week.Items, strings.TrimPrefix(line, "- "))
		}
	}

	return weeks
}

// splitWeekHeading splits the remainder of a week heading ("3: Mixed
// problems") into its number and theme.
func splitWeekHeading(rest string) (int, string, bool) {
	numberPart, theme, found := strings.Cut(rest, ":")
	if !found {
		numberPart = rest
	}

	number, err := strconv.Atoi(strings.TrimSpace(numberPart))
	if err != nil {
		return 0, "", false
	}

	return number, strings.TrimSpace(theme), true
}
