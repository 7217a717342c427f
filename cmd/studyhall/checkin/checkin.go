// Package checkincmder implements the checkin commands.
package checkincmder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/logger"
)

const checkinLongDesc string = `Record how today's study session felt.

A check-in is two 1..5 scales, mood and energy, plus an optional note.
Check-ins feed progress reports: a learner whose scores hold steady
while mood slides is grinding, not learning, and the reports surface
that.

Examples:
  studyhall checkin --mood 4 --energy 3
  studyhall checkin --mood 2 --energy 2 --note "fractions felt shaky"
  studyhall checkin list`

const checkinShortDesc string = "Record how today's study felt"

type checkinCommander struct {
	serverURL string
	mood      int
	energy    int
	note      string
	debug     bool

	logger *slog.Logger
}

func NewCheckinCmd() *cobra.Command {
	defaults := config.NewDefaultConfig()
	cmder := &checkinCommander{}

	cmd := &cobra.Command{
		Use:     "checkin",
		Short:   checkinShortDesc,
		Long:    checkinLongDesc,
		Args:    cobra.NoArgs,
		PreRunE: cmder.preRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runRecord(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")
	cmd.Flags().IntVarP(&cmder.mood, "mood", "m", 0, "Mood on a 1..5 scale")
	cmd.Flags().IntVarP(&cmder.energy, "energy", "e", 0, "Energy on a 1..5 scale")
	cmd.Flags().StringVarP(&cmder.note, "note", "n", "", "Optional note about the session")
	_ = cmd.MarkFlagRequired("mood")
	_ = cmd.MarkFlagRequired("energy")

	cmd.AddCommand(newListCmd(cmder))

	return cmd
}

// preRun is shared by the record and list paths. The server URL falls
// back to the stored config when the flag is not set explicitly.
func (c *checkinCommander) preRun(cmd *cobra.Command, _ []string) error {
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

func (c *checkinCommander) runRecord(cmd *cobra.Command) error {
	cl, err := c.newClient(cmd)
	if err != nil {
		return err
	}

	checkIn, err := cl.CheckIn(cmd.Context(), c.mood, c.energy, strings.TrimSpace(c.note))
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Checked in: mood %s energy %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(scaleBar(checkIn.Mood)),
		cliui.NameStyle.Render(scaleBar(checkIn.Energy)),
	)
	if checkIn.Note != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", cliui.DimStyle.Render("\""+checkIn.Note+"\""))
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func (c *checkinCommander) newClient(cmd *cobra.Command) (*client.Client, error) {
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

// scaleBar renders a 1..5 value as filled and empty dots, e.g. ●●●○○.
func scaleBar(value int) string {
	if value < 0 {
		value = 0
	}
	if value > 5 {
		value = 5
	}
	return strings.Repeat("●", value) + strings.Repeat("○", 5-value)
}
