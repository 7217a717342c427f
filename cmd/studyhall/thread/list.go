package threadcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/utils"
)

func newListCmd(cmder *threadCommander) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List conversation threads, newest first",
		Args:    cobra.NoArgs,
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runList(cmd)
		},
	}
}

func (c *threadCommander) runList(cmd *cobra.Command) error {
	cl, err := c.newClient(cmd)
	if err != nil {
		return err
	}

	threads, err := cl.Threads(cmd.Context())
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		return err
	}

	if len(threads) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No threads yet. Start one with: studyhall chat")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, turn := range threads {
		preview := utils.Truncate(turn.Text, 60)
		fmt.Fprintf(out, "  %s  %s %s\n",
			cliui.HashStyle.Render(utils.Truncate(turn.Hash, 16)),
			cliui.RoleStyle.Render("["+turn.Role+"]"),
			cliui.PreviewStyle.Render(preview),
		)
		fmt.Fprintf(out, "  %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%s · %s",
				turn.Learner,
				turn.CreatedAt.Local().Format("2006-01-02 15:04"),
			)),
		)
		fmt.Fprintln(out)
	}

	return nil
}
