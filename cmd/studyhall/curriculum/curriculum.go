// Package curriculumcmder implements the curriculum commands for
// generating study plans through the mentor and browsing the plans
// saved locally.
package curriculumcmder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/logger"
)

const curriculumLongDesc string = `Generate and browse study plans.

The generate subcommand asks the mentor for a week-by-week study plan
toward a goal. The plan streams back as it is written, renders as
markdown, and is saved under the studyhall dot directory so it stays
readable offline.

Examples:
  studyhall curriculum generate "pass the networking final"
  studyhall curriculum generate "learn linear algebra" --weeks 6
  studyhall curriculum list`

type curriculumCommander struct {
	serverURL   string
	idleTimeout time.Duration
	debug       bool

	logger *slog.Logger
}

// NewCurriculumCmd creates the parent curriculum command.
func NewCurriculumCmd() *cobra.Command {
	defaults := config.NewDefaultConfig()
	cmder := &curriculumCommander{}

	cmd := &cobra.Command{
		Use:   "curriculum",
		Short: "Generate and browse study plans",
		Long:  curriculumLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")

	cmd.AddCommand(newGenerateCmd(cmder))
	cmd.AddCommand(newListCmd(cmder))

	return cmd
}

// preRun is shared by every curriculum subcommand. The server URL and
// stream idle timeout fall back to the stored config when not set
// explicitly.
func (c *curriculumCommander) preRun(cmd *cobra.Command, _ []string) error {
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

	// A malformed idle timeout is not worth failing the command over;
	// the client falls back to its default when left at zero.
	if d, err := time.ParseDuration(cfg.Client.IdleTimeout); err == nil {
		c.idleTimeout = d
	}

	return nil
}

func (c *curriculumCommander) newClient(cmd *cobra.Command) (*client.Client, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	token, err := client.ResolveToken(creds, c.serverURL)
	if err != nil {
		return nil, err
	}

	return client.New(client.Config{
		ServerURL:   c.serverURL,
		Token:       token,
		IdleTimeout: c.idleTimeout,
	}, c.logger)
}

// sessionLearner returns the learner stored with the session for the
// active server, or an empty string when signed in through the
// environment token only.
func (c *curriculumCommander) sessionLearner(cmd *cobra.Command) string {
	configDir, _ := cmd.Flags().GetString("config-dir")

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return ""
	}

	session, err := creds.GetSession(c.serverURL)
	if err != nil || session == nil {
		return ""
	}
	return session.Learner
}
