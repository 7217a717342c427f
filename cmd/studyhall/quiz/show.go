package quizcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
)

func newShowCmd(cmder *quizCommander) *cobra.Command {
	return &cobra.Command{
		Use:     "show <slug>",
		Short:   "Show a quiz's questions and choices",
		Args:    cobra.ExactArgs(1),
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runShow(cmd, args[0])
		},
	}
}

func (c *quizCommander) runShow(cmd *cobra.Command, slug string) error {
	out := cmd.OutOrStdout()

	cl, err := c.newClient(cmd)
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

	points := 0
	for _, q := range view.Questions {
		points += q.Points
	}

	fmt.Fprintf(out, "\n  %s\n", cliui.NameStyle.Render(view.Title))
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%s · %s · %d questions · %d points",
		view.Topic, view.Difficulty, len(view.Questions), points)))

	for i, question := range view.Questions {
		prompt := question.Prompt
		if question.Points > 1 {
			prompt = fmt.Sprintf("%s %s", prompt, cliui.DimStyle.Render(fmt.Sprintf("(%d pts)", question.Points)))
		}
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%d.", i+1)), prompt)

		for j, choice := range question.Choices {
			fmt.Fprintf(out, "     %s %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d)", j+1)), choice)
		}
		fmt.Fprintln(out)
	}

	return nil
}
