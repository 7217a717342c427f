// Package statuscmder provides the status command for displaying the server
// connection, the stored session, and the local thread state.
package statuscmder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/utils"
)

const statusLongDesc string = `Show the current studyhall status.

Checks that the configured server is reachable, whether a stored session is
still valid, and which mentor thread the next chat will resume from.

Examples:
  studyhall status`

const statusShortDesc string = "Show server, session, and thread status"

type statusCommander struct {
	serverURL string
	debug     bool

	logger *slog.Logger
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
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
				cmder.serverURL = cfg.Client.ServerURL
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")

	return cmd
}

func (c *statusCommander) run(ctx context.Context, configDir string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	fmt.Println()
	c.printServer(ctx, configDir)
	c.printThread(configDir)

	return nil
}

// printServer reports reachability and whether the stored session is still
// accepted. Both are advisory so a dead server never fails the command.
func (c *statusCommander) printServer(ctx context.Context, configDir string) {
	fmt.Printf("  %s  %s", cliui.KeyStyle.Render("Server: "), cliui.ValueStyle.Render(c.serverURL))

	cl, err := c.newClient(configDir)
	if err != nil {
		fmt.Printf("  %s %s\n", cliui.FailMark, cliui.DimStyle.Render(err.Error()))
		return
	}

	if err := cl.Ping(ctx); err != nil {
		fmt.Printf("  %s %s\n", cliui.FailMark, cliui.DimStyle.Render("unreachable"))
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Session:"), cliui.DimStyle.Render("unknown (server unreachable)"))
		return
	}
	fmt.Printf("  %s %s\n", cliui.SuccessMark, cliui.DimStyle.Render("reachable"))

	if cl.SessionToken() == "" {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Session:"), cliui.DimStyle.Render("not signed in"))
		return
	}

	profile, err := cl.Me(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Session:"), cliui.WarnStyle.Render("expired, run 'studyhall auth login'"))
		} else {
			fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Session:"), cliui.DimStyle.Render(err.Error()))
		}
		return
	}

	fmt.Printf("  %s  %s %s\n",
		cliui.KeyStyle.Render("Session:"),
		cliui.NameStyle.Render(profile.Name),
		cliui.DimStyle.Render("("+profile.Email+")"),
	)
}

// printThread shows the thread the next chat resumes from.
func (c *statusCommander) printThread(configDir string) {
	manager := dotdir.NewManager()

	state, err := manager.LoadThreadState(configDir)
	if err != nil {
		fmt.Printf("\n  %s %s\n\n", cliui.FailMark, cliui.DimStyle.Render("loading thread state: "+err.Error()))
		return
	}

	if state == nil {
		fmt.Printf("\n  %s No thread checked out. Next chat will start a new conversation.\n\n", cliui.DimStyle.Render("●"))
		return
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Thread:  "), cliui.HashStyle.Render(state.Head))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Messages:"), cliui.NameStyle.Render(strconv.Itoa(len(state.Messages))))

	for i, msg := range state.Messages {
		preview := utils.Truncate(msg.Content, 72)
		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.RoleStyle.Render("["+msg.Role+"]"),
			cliui.PreviewStyle.Render(preview),
		)
	}

	fmt.Println()
}

func (c *statusCommander) newClient(configDir string) (*client.Client, error) {
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
