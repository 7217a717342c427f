package threadcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/utils"
)

func newHistoryCmd(cmder *threadCommander) *cobra.Command {
	return &cobra.Command{
		Use:     "history <hash>",
		Short:   "Show the turns leading up to a hash, oldest first",
		Args:    cobra.ExactArgs(1),
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runHistory(cmd, args[0])
		},
	}
}

func (c *threadCommander) runHistory(cmd *cobra.Command, hash string) error {
	cl, err := c.newClient(cmd)
	if err != nil {
		return err
	}

	turns, err := cl.ThreadHistory(cmd.Context(), hash)
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		if client.IsNotFound(err) {
			return fmt.Errorf("no thread found at %s", hash)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  %s  %s %s\n\n",
		cliui.KeyStyle.Render("Thread:"),
		cliui.HashStyle.Render(utils.Truncate(hash, 16)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", len(turns))),
	)
	printTurns(cmd, turns)
	fmt.Fprintln(out)

	return nil
}
