package quizcmder

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
)

func newListCmd(cmder *quizCommander) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List published quizzes",
		Args:    cobra.NoArgs,
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runList(cmd)
		},
	}
}

func (c *quizCommander) runList(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cl, err := c.newClient(cmd)
	if err != nil {
		return err
	}

	quizzes, err := cl.Quizzes(cmd.Context())
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		return fmt.Errorf("listing quizzes: %w", err)
	}

	if len(quizzes) == 0 {
		fmt.Fprintln(out, "No quizzes published yet. Seed demo data with: studyhall seed")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTITLE\tTOPIC\tDIFFICULTY\tQUESTIONS\tPOINTS")

	for _, quiz := range quizzes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			quiz.Slug,
			quiz.Title,
			quiz.Topic,
			quiz.Difficulty,
			quiz.QuestionCount,
			quiz.MaxScore,
		)
	}

	return w.Flush()
}
