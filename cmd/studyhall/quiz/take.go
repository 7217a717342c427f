package quizcmder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/state/quizflow"
)

type takeCommander struct {
	cmder *quizCommander

	answers string
}

const takeLongDesc string = `Take a quiz and submit it for grading.

Without flags this opens a terminal UI: pick a choice with j/k or the
number keys, move between questions with h/l, and press s to submit
once every question has an answer. Quitting early abandons the run and
nothing is submitted.

With --answers the UI is skipped: pass one choice number per question,
comma separated, as numbered by "studyhall quiz show". A 0 leaves that
question unanswered.

Examples:
  studyhall quiz take fractions-intro
  studyhall quiz take fractions-intro --answers 2,1,3
  studyhall quiz take fractions-intro --answers 2,0,3`

func newTakeCmd(cmder *quizCommander) *cobra.Command {
	take := &takeCommander{cmder: cmder}

	cmd := &cobra.Command{
		Use:     "take <slug>",
		Short:   "Take a quiz and submit it for grading",
		Long:    takeLongDesc,
		Args:    cobra.ExactArgs(1),
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return take.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&take.answers, "answers", "a", "", "Comma-separated choice numbers, one per question (0 skips)")

	return cmd
}

func (t *takeCommander) run(cmd *cobra.Command, slug string) error {
	out := cmd.OutOrStdout()

	cl, err := t.cmder.newClient(cmd)
	if err != nil {
		return err
	}

	view, err := cl.Quiz(cmd.Context(), slug)
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		if client.IsNotFound(err) {
			return fmt.Errorf("no quiz found with slug %q", slug)
		}
		return fmt.Errorf("fetching quiz: %w", err)
	}

	quiz := quizFromView(view)

	var answers []int
	if t.answers != "" {
		answers, err = parseAnswers(t.answers, quiz)
		if err != nil {
			return err
		}
	} else {
		store := quizflow.New()
		store.Dispatch(quizflow.Started{Quiz: quiz})

		finished, err := runQuizTUI(cmd.Context(), store)
		if err != nil {
			return fmt.Errorf("running quiz: %w", err)
		}
		if !finished {
			fmt.Fprintln(out, "Quiz abandoned, nothing submitted.")
			return nil
		}
		answers = store.State().Answers
	}

	attempt, err := cl.SubmitAttempt(cmd.Context(), slug, answers)
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		return fmt.Errorf("submitting attempt: %w", err)
	}

	percent := 0
	if attempt.MaxScore > 0 {
		percent = attempt.Score * 100 / attempt.MaxScore
	}

	fmt.Fprintf(out, "\n  %s Submitted %s\n", cliui.SuccessMark, cliui.NameStyle.Render(view.Title))
	fmt.Fprintf(out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Score:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d/%d (%d%%)", attempt.Score, attempt.MaxScore, percent)),
	)

	return nil
}

// parseAnswers turns "2,1,3" into positional answer indexes against the
// quiz. Numbers are 1-based as shown by quiz show; 0 marks a question
// skipped.
func parseAnswers(raw string, quiz *learn.Quiz) ([]int, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != len(quiz.Questions) {
		return nil, fmt.Errorf("expected %d answers, got %d", len(quiz.Questions), len(parts))
	}

	answers := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("answer %d: %q is not a number", i+1, strings.TrimSpace(part))
		}
		if n == 0 {
			answers[i] = quizflow.Unanswered
			continue
		}
		choices := len(quiz.Questions[i].Choices)
		if n < 1 || n > choices {
			return nil, fmt.Errorf("answer %d: choice %d out of range (1-%d)", i+1, n, choices)
		}
		answers[i] = n - 1
	}

	return answers, nil
}
