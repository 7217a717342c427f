// Package authcmder provides the auth command for signing in to a studyhall
// server and managing the stored session.
package authcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/logger"
)

const authLongDesc string = `Sign in to a studyhall server and manage the stored session.

Sessions are stored in credentials.toml in the .studyhall/ directory, keyed
by server URL, and picked up automatically by every command that talks to
the server.

Examples:
  studyhall auth login                       Prompt for email and password
  studyhall auth login --email ada@example.com
  echo $PASSWORD | studyhall auth login --email ada@example.com
  studyhall auth whoami                      Show the signed-in learner
  studyhall auth logout                      Drop the stored session`

const authShortDesc string = "Sign in and manage the stored session"

type authCommander struct {
	serverURL string
	email     string
	debug     bool

	logger *slog.Logger
}

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
	}

	defaults := config.NewDefaultConfig()
	cmd.PersistentFlags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")

	cmd.AddCommand(newLoginCmd(cmder))
	cmd.AddCommand(newLogoutCmd(cmder))
	cmd.AddCommand(newWhoamiCmd(cmder))

	return cmd
}

// preRun loads the config file and fills in any values the learner did not
// override on the command line.
func (c *authCommander) preRun(cmd *cobra.Command) error {
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

	c.debug, err = cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	return nil
}

func newLoginCmd(cmder *authCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the server",
		Long: `Sign in with a learner email and password.

Prompts interactively with hidden password input; piped stdin is read as
the password (or as "email then password" on separate lines when --email
is not given).`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.preRun(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.runLogin(cmd.Context(), configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.email, "email", "e", "", "Learner email address")

	return cmd
}

func newLogoutCmd(cmder *authCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.preRun(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.runLogout(cmd.Context(), configDir)
		},
	}
}

func newWhoamiCmd(cmder *authCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in learner",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.preRun(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.runWhoami(cmd.Context(), configDir)
		},
	}
}

func (c *authCommander) runLogin(ctx context.Context, configDir string) error {
	email, password, err := readLogin(c.email)
	if err != nil {
		return err
	}

	cl, err := client.New(client.Config{ServerURL: c.serverURL}, c.logger)
	if err != nil {
		return err
	}

	profile, err := cl.Login(ctx, email, password)
	if err != nil {
		if client.IsUnauthorized(err) {
			return errors.New("invalid email or password")
		}
		return fmt.Errorf("signing in to %s: %w", c.serverURL, err)
	}

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	if err := creds.SetSession(c.serverURL, cl.SessionToken(), profile.Email); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	fmt.Printf("\n  %s Signed in as %s %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(profile.Name),
		cliui.DimStyle.Render("("+profile.Email+")"),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Session stored for "+c.serverURL))

	return nil
}

func (c *authCommander) runLogout(ctx context.Context, configDir string) error {
	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	token, err := creds.GetToken(c.serverURL)
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Printf("\n  %s No stored session for %s.\n\n",
			cliui.DimStyle.Render("●"), c.serverURL)
		return nil
	}

	// Revoke server-side first; a dead server still gets the local
	// session dropped.
	cl, err := client.New(client.Config{ServerURL: c.serverURL, Token: token}, c.logger)
	if err == nil {
		if err := cl.Logout(ctx); err != nil {
			c.logger.Debug("server-side logout failed", "error", err)
		}
	}

	if err := creds.RemoveSession(c.serverURL); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}

	fmt.Printf("\n  %s Signed out of %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(c.serverURL))
	return nil
}

func (c *authCommander) runWhoami(ctx context.Context, configDir string) error {
	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	token, err := client.ResolveToken(creds, c.serverURL)
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Printf("\n  %s Not signed in. Run 'studyhall auth login' first.\n\n",
			cliui.DimStyle.Render("●"))
		return nil
	}

	cl, err := client.New(client.Config{ServerURL: c.serverURL, Token: token}, c.logger)
	if err != nil {
		return err
	}

	profile, err := cl.Me(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			return errors.New("session expired, run 'studyhall auth login' again")
		}
		return fmt.Errorf("checking session with %s: %w", c.serverURL, err)
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Learner:"), cliui.NameStyle.Render(profile.Name))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Email:  "), cliui.ValueStyle.Render(profile.Email))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Server: "), cliui.DimStyle.Render(c.serverURL))

	return nil
}

// readLogin collects the email and password. If stdin is a pipe, lines are
// consumed from it; otherwise both are prompted for interactively, with the
// password hidden.
func readLogin(emailFlag string) (email, password string, err error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)

		email = strings.TrimSpace(emailFlag)
		if email == "" {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", "", fmt.Errorf("reading stdin: %w", err)
				}
				return "", "", errors.New("no input received on stdin")
			}
			email = strings.TrimSpace(scanner.Text())
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", "", fmt.Errorf("reading stdin: %w", err)
			}
			return "", "", errors.New("no password received on stdin")
		}
		password = strings.TrimSpace(scanner.Text())

		if email == "" {
			return "", "", errors.New("email cannot be empty")
		}
		if password == "" {
			return "", "", errors.New("password cannot be empty")
		}
		return email, password, nil
	}

	// Interactive terminal
	email = strings.TrimSpace(emailFlag)
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
		if email == "" {
			return "", "", errors.New("email cannot be empty")
		}
	}

	fmt.Printf("Password for %s: ", email)
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", "", fmt.Errorf("reading password: %w", err)
	}

	password = strings.TrimSpace(string(pwBytes))
	if password == "" {
		return "", "", errors.New("password cannot be empty")
	}

	return email, password, nil
}
