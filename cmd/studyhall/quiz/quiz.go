// Package quizcmder implements the quiz commands: browsing published
// quizzes, inspecting one, and taking it through a terminal UI.
package quizcmder

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/logger"
)

const quizLongDesc string = `Browse and take published quizzes.

Listing and showing work from the server's published set. Taking a quiz
opens a terminal UI where answers are picked per question; the finished
run is submitted to the server for grading. Use --answers to submit
without the UI.

Examples:
  studyhall quiz list
  studyhall quiz show fractions-intro
  studyhall quiz take fractions-intro
  studyhall quiz take fractions-intro --answers 2,1,3`

type quizCommander struct {
	serverURL string
	debug     bool

	logger *slog.Logger
}

// NewQuizCmd creates the parent quiz command.
func NewQuizCmd() *cobra.Command {
	defaults := config.NewDefaultConfig()
	cmder := &quizCommander{}

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Browse and take quizzes",
		Long:  quizLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")

	cmd.AddCommand(newListCmd(cmder))
	cmd.AddCommand(newShowCmd(cmder))
	cmd.AddCommand(newTakeCmd(cmder))

	return cmd
}

// preRun is shared by every quiz subcommand. The server URL falls back
// to the stored config when the flag is not set explicitly.
func (c *quizCommander) preRun(cmd *cobra.Command, _ []string) error {
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

func (c *quizCommander) newClient(cmd *cobra.Command) (*client.Client, error) {
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

// quizFromView rebuilds a quiz from its learner-facing projection. The
// answer keys stay on the server; nothing built from a view ever grades
// locally.
func quizFromView(view *learn.QuizView) *learn.Quiz {
	questions := make([]learn.Question, len(view.Questions))
	for i, q := range view.Questions {
		questions[i] = learn.Question{
			Prompt:  q.Prompt,
			Choices: q.Choices,
			Points:  q.Points,
		}
	}

	return &learn.Quiz{
		Slug:       view.Slug,
		Title:      view.Title,
		Topic:      view.Topic,
		Difficulty: view.Difficulty,
		Questions:  questions,
	}
}
