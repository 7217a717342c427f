// Package recallcmder provides the recall command for semantic search over
// mentor conversations.
package recallcmder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/recall"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	roleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type recallCommander struct {
	query     string
	topK      int
	quiet     bool
	serverURL string

	debug  bool
	logger *slog.Logger
}

const recallLongDesc string = `Recall past mentor conversations by meaning.

Searches stored conversation turns semantically, returning the most
relevant threads for the query text. Requires a running studyhall server
with recall configured (vector store and embedder).

For each result the full thread is displayed, from its root through the
matched turn to the leaf.

Use --quiet to output only leaf hashes, one per line. This is useful for
piping into other commands like thread checkout.

Example:
  studyhall recall "dividing fractions"
  studyhall recall "negative exponents" --top 10
  studyhall recall "word problems" --quiet
  studyhall thread checkout $(studyhall recall "fractions" --quiet --top 1)`

const recallShortDesc string = "Recall past conversations by meaning"

func NewRecallCmd() *cobra.Command {
	cmder := &recallCommander{}

	cmd := &cobra.Command{
		Use:   "recall <query>",
		Short: recallShortDesc,
		Long:  recallLongDesc,
		Args:  cobra.ExactArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

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
	cmd.Flags().IntVarP(&cmder.topK, "top", "k", 5, "Number of results to return")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only leaf hashes, one per line (for piping)")
	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", defaults.Client.ServerURL, "Studyhall server URL")

	return cmd
}

func (c *recallCommander) run(ctx context.Context, configDir string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

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

	output, err := cl.Recall(ctx, c.query, c.topK)
	if err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'studyhall auth login' first")
		}
		return err
	}

	if output.Count == 0 {
		if !c.quiet {
			fmt.Println("No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, result := range output.Results {
			fmt.Println(LeafHash(result))
		}
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Recall results for:"),
		hashStyle.Render(fmt.Sprintf("%q", output.Query)),
	)

	for i, result := range output.Results {
		c.printResult(i+1, result)
	}

	return nil
}

func (c *recallCommander) printResult(rank int, result recall.Result) {
	fmt.Printf("  %s  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		scoreStyle.Render(fmt.Sprintf("score: %.4f", result.Score)),
		hashStyle.Render(result.Hash),
		dimStyle.Render(result.Learner),
	)

	if result.Turns == 0 {
		fmt.Printf("  %s\n\n", dimStyle.Render("(no thread found)"))
		return
	}

	preview := result.Preview
	if len(preview) > 80 {
		preview = preview[:77] + "..."
	}
	preview = strings.ReplaceAll(preview, "\n", " ")

	fmt.Printf("  %s %s\n", roleStyle.Render(result.Role+":"), previewStyle.Render(preview))
	fmt.Printf("  %s\n", dimStyle.Render(fmt.Sprintf("%d turns", result.Turns)))

	for _, turn := range result.Thread {
		text := turn.Text
		if text == "" {
			text = "(no text content)"
		}
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		text = strings.ReplaceAll(text, "\n", " ")

		hash := turn.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}

		if turn.Matched {
			fmt.Printf("  %s %s %s %s\n",
				matchedStyle.Render(">>>"),
				roleStyle.Render("["+turn.Role+"]"),
				previewStyle.Render(text),
				dimStyle.Render(hash),
			)
		} else {
			fmt.Printf("  %s %s %s %s\n",
				branchStyle.Render(" ├─"),
				roleStyle.Render("["+turn.Role+"]"),
				branchStyle.Render(text),
				dimStyle.Render(hash),
			)
		}
	}

	fmt.Println()
}

// LeafHash returns the leaf (last) hash from a recall result's thread.
// Falls back to the matched turn hash if the thread is empty.
func LeafHash(result recall.Result) string {
	if len(result.Thread) > 0 {
		return result.Thread[len(result.Thread)-1].Hash
	}
	return result.Hash
}
