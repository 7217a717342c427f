// Package threadcmder implements the thread commands for listing,
// inspecting, and checking out points in the mentor conversation graph.
package threadcmder

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/thread"
	"github.com/studyhallco/studyhall/pkg/utils"
)

const threadLongDesc string = `Work with mentor conversation threads.

Every chat exchange appends content-addressed turns to a conversation
graph on the server. These commands list the threads, show the history
behind a turn, and check a turn out as the point the next chat resumes
from.

Examples:
  studyhall thread list
  studyhall thread history abc123def456
  studyhall thread checkout abc123def456
  studyhall thread checkout`

type threadCommander struct {
	serverURL string
	debug     bool

	logger *slog.Logger
}

// NewThreadCmd creates the parent thread command.
func NewThreadCmd() *cobra.Command {
	defaults := config.NewDefaultConfig()
	cmder := &threadCommander{}

	cmd := &cobra.Command{
		Use:   "thread",
		Short: "List, inspect, and check out conversation threads",
		Long:  threadLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")

	cmd.AddCommand(newListCmd(cmder))
	cmd.AddCommand(newHistoryCmd(cmder))
	cmd.AddCommand(newCheckoutCmd(cmder))

	return cmd
}

// preRun is shared by every thread subcommand. The server URL falls back
// to the stored config when the flag is not set explicitly.
func (c *threadCommander) preRun(cmd *cobra.Command, _ []string) error {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}
	c.debug = debug
	c.logger = logger.New(logger.WithDebug(debug), logger.WithPretty(true))

	configDir, _ := cmd.Flags().GetString("config-dir")
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cmd.Flags().Changed("server") {
		c.serverURL = cfg.Client.ServerURL
	}
	return nil
}

func (c *threadCommander) newClient(cmd *cobra.Command) (*client.Client, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	token, err := client.ResolveToken(creds, c.serverURL)
	if err != nil {
		return nil, err
	}

	return client.New(client.Config{ServerURL: c.serverURL, Token: token}, c.logger)
}

// threadState converts server history turns into the persisted thread
// state the next chat resumes from.
func threadState(turns []*thread.Turn) *dotdir.ThreadState {
	messages := make([]dotdir.ThreadMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, dotdir.ThreadMessage{
			Role:    turn.Role,
			Content: turn.Text,
		})
	}

	state := &dotdir.ThreadState{Messages: messages}
	if len(turns) > 0 {
		state.Head = turns[len(turns)-1].Hash
	}
	return state
}

// printTurns renders numbered history rows, oldest first.
func printTurns(cmd *cobra.Command, turns []*thread.Turn) {
	for i, turn := range turns {
		preview := utils.Truncate(turn.Text, 60)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.RoleStyle.Render("["+turn.Role+"]"),
			cliui.PreviewStyle.Render(preview),
		)
	}
}
