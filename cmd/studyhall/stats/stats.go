// Package statscmder implements the stats command.
package statscmder

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/logger"
)

const statsLongDesc string = `Show storage totals for the configured server.

Turns are stored conversation messages; roots and leaves describe the
thread graph those turns form. Learners counts everyone with at least
one stored record.

Examples:
  studyhall stats
  studyhall stats --server http://localhost:8080`

const statsShortDesc string = "Show server storage totals"

type statsCommander struct {
	serverURL string
	debug     bool

	logger *slog.Logger
}

func NewStatsCmd() *cobra.Command {
	defaults := config.NewDefaultConfig()
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.debug = debug
			cmder.logger = logger.New(logger.WithDebug(debug), logger.WithPretty(true))

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
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")

	return cmd
}

func (c *statsCommander) run(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	token, err := client.ResolveToken(creds, c.serverURL)
	if err != nil {
		return err
	}

	cl, err := client.New(client.Config{ServerURL: c.serverURL, Token: token}, c.logger)
	if err != nil {
		return err
	}

	stats, err := cl.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Turns:   "), cliui.NameStyle.Render(strconv.Itoa(stats.Turns)))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Roots:   "), cliui.NameStyle.Render(strconv.Itoa(stats.Roots)))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Leaves:  "), cliui.NameStyle.Render(strconv.Itoa(stats.Leaves)))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Learners:"), cliui.NameStyle.Render(strconv.Itoa(stats.Learners)))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Quizzes: "), cliui.NameStyle.Render(strconv.Itoa(stats.Quizzes)))
	fmt.Fprintln(out)

	return nil
}
