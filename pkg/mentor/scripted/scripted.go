// Package scripted implements a deterministic mentor engine. Replies come
// from a small rule table keyed on prompt keywords and stream out word by
// word, so every surface that renders mentor output can be exercised
// without a model behind it.
package scripted

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studyhallco/studyhall/pkg/mentor"
)

const (
	defaultPlanWeeks = 4
	maxPlanWeeks     = 12
)

// Config holds the configuration for the scripted engine.
type Config struct {
	// Delay paces the stream, one chunk per tick, so output visibly
	// streams in demos. Zero disables pacing.
	Delay time.Duration
}

// Engine is the deterministic rule-based mentor.
type Engine struct {
	delay time.Duration
}

// Ensure Engine implements mentor.Engine
var _ mentor.Engine = (*Engine)(nil)

// NewEngine creates a scripted mentor engine.
func NewEngine(c Config) *Engine {
	return &Engine{delay: c.Delay}
}

// Chat streams a canned reply picked by prompt keywords.
func (e *Engine) Chat(ctx context.Context, req mentor.Request) (<-chan mentor.Chunk, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	return e.stream(ctx, replyFor(req)), nil
}

// Plan streams a week-by-week study plan scaffold for the requested goal.
func (e *Engine) Plan(ctx context.Context, req mentor.PlanRequest) (<-chan mentor.Chunk, error) {
	return e.stream(ctx, planFor(req)), nil
}

// Close is a no-op for the scripted engine.
func (e *Engine) Close() error {
	return nil
}

// stream emits text as word-sized delta chunks followed by a done chunk
// carrying the full text. The channel closes early if ctx is cancelled.
func (e *Engine) stream(ctx context.Context, text string) <-chan mentor.Chunk {
	out := make(chan mentor.Chunk)
	go func() {
		defer close(out)

		for _, piece := range splitChunks(text) {
			if e.delay > 0 {
				select {
				case <-time.After(e.delay):
				case <-ctx.Done():
					return
				}
			}
			select {
			case out <- mentor.Chunk{Type: mentor.ChunkDelta, Text: piece}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case out <- mentor.Chunk{Type: mentor.ChunkDone, Text: text}:
		case <-ctx.Done():
		}
	}()
	return out
}

// splitChunks cuts text into word-sized pieces, each carrying the
// whitespace that follows it, so joining the pieces reproduces the text
// byte for byte.
func splitChunks(text string) []string {
	var pieces []string
	start := 0
	i := 0
	for i < len(text) {
		for i < len(text) && !isSpace(text[i]) {
			i++
		}
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		pieces = append(pieces, text[start:i])
		start = i
	}
	return pieces
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}

// replyRule maps prompt keywords to one piece of canned guidance. The
// first rule with a matching keyword wins.
type replyRule struct {
	keywords []string
	reply    string
}

var replyRules = []replyRule{
	{
		keywords: []string{"fraction"},
		reply: "A fraction is one number, not two: 3/4 is a single point on the " +
			"number line. When dividing, multiply by the reciprocal instead: flip " +
			"the second fraction and the problem becomes one you already know.\n\n" +
			"Try `studyhall quiz take fractions-1` and watch for that flip.",
	},
	{
		keywords: []string{"decimal"},
		reply: "Decimals are place value all the way down: each step right is ten " +
			"times smaller. When adding or subtracting, line up the decimal points " +
			"first and the digits take care of themselves.\n\n" +
			"`studyhall quiz take decimals-1` is a quick check.",
	},
	{
		keywords: []string{"equation", "algebra", "solve"},
		reply: "An equation stays true as long as you do the same thing to both " +
			"sides. Undo what is around the variable one layer at a time until it " +
			"stands alone, then substitute your answer back in to check it.\n\n" +
			"Work `studyhall quiz take algebra-1` slowly and write every step.",
	},
	{
		keywords: []string{"angle", "triangle", "geometry"},
		reply: "The angles inside any triangle add to 180 degrees, so knowing two " +
			"always gives you the third. Sketch the figure before computing " +
			"anything; most geometry mistakes happen before the arithmetic starts.\n\n" +
			"`studyhall quiz take geometry-1` has good practice figures.",
	},
	{
		keywords: []string{"stuck", "hard", "confused", "help"},
		reply: "Being stuck is where the learning happens, so this is a good sign. " +
			"Shrink the problem: solve a smaller version with easier numbers, then " +
			"carry the same steps back to the original.\n\n" +
			"Record how it felt with `studyhall checkin` so your trend stays honest.",
	},
	{
		keywords: []string{"plan", "schedule", "curriculum"},
		reply: "A plan beats motivation on the days motivation does not show up. " +
			"Generate one with `studyhall curriculum generate` and treat each week " +
			"as a promise to your future self, not a deadline.",
	},
}

func replyFor(req mentor.Request) string {
	var b strings.Builder
	if len(req.History) > 0 {
		b.WriteString("Picking up where we left off.\n\n")
	}

	prompt := strings.ToLower(req.Prompt)
	for _, rule := range replyRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(prompt, keyword) {
				b.WriteString(rule.reply)
				return b.String()
			}
		}
	}

	fmt.Fprintf(&b, "Let's work through %q together. Start by writing down what "+
		"the question gives you and what it wants, in your own words; the gap "+
		"between the two is the problem. Then pick the quiz closest to the topic "+
		"with `studyhall quiz list` and try one problem before reading anything else.",
		strings.TrimSpace(req.Prompt))
	return b.String()
}

var weekFocuses = []string{
	"Foundations",
	"Core practice",
	"Mixed problems",
	"Speed and fluency",
}

func planFor(req mentor.PlanRequest) string {
	weeks := req.Weeks
	if weeks <= 0 {
		weeks = defaultPlanWeeks
	}
	if weeks > maxPlanWeeks {
		weeks = maxPlanWeeks
	}

	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		goal = "steady improvement"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Study Plan: %s\n\n", goal)
	fmt.Fprintf(&b, "A %d-week plan working toward: %s.\n\n", weeks, goal)

	for week := 1; week <= weeks; week++ {
		focus := weekFocuses[(week-1)%len(weekFocuses)]
		if week == weeks {
			focus = "Review and stretch"
		}
		fmt.Fprintf(&b, "## Week %d: %s\n\n", week, focus)
		b.WriteString("- Work one quiz on the current topic and review every miss.\n")
		b.WriteString("- Redo the hardest problem from earlier in the week without notes.\n")
		b.WriteString("- Record a check-in so the streak and mood trend stay honest.\n\n")
	}

	b.WriteString("Adjust the pace freely. The plan serves the learner, never the reverse.\n")
	return b.String()
}
