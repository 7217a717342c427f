package threadcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/utils"
)

const checkoutLongDesc string = `Check out a point in the conversation graph.

Fetches the conversation history up to the given hash from the server
and saves it as the starting point for the next "studyhall chat"
session.

If no hash is provided, clears the thread state so the next chat starts
a new root conversation.

Examples:
  studyhall thread checkout abc123def456   Resume from a specific turn
  studyhall thread checkout                Clear state, start fresh`

func newCheckoutCmd(cmder *threadCommander) *cobra.Command {
	return &cobra.Command{
		Use:     "checkout [hash]",
		Short:   "Check out a conversation point for the next chat",
		Long:    checkoutLongDesc,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := ""
			if len(args) > 0 {
				hash = args[0]
			}
			return cmder.runCheckout(cmd, hash)
		},
	}
}

func (c *threadCommander) runCheckout(cmd *cobra.Command, hash string) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	manager := dotdir.NewManager()

	if hash == "" {
		if err := manager.ClearThreadState(configDir); err != nil {
			return fmt.Errorf("clearing thread state: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Checkout cleared. Next chat will start a new conversation.")
		return nil
	}

	c.logger.Debug("checking out thread", "hash", hash, "server", c.serverURL)

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
		return fmt.Errorf("fetching history: %w", err)
	}

	state := threadState(turns)
	if state.Head == "" {
		state.Head = hash
	}

	if err := manager.SaveThreadState(state, configDir); err != nil {
		return fmt.Errorf("saving thread state: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Checked out %s (%d messages)\n",
		utils.Truncate(state.Head, 16), len(state.Messages))
	printTurns(cmd, turns)

	return nil
}
