// Package chatcmder implements the interactive mentor chat command.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/cliui"
	"github.com/studyhallco/studyhall/pkg/config"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/dotdir"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/thread"
	"github.com/studyhallco/studyhall/pkg/utils"
)

var (
	userPrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	mentorPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("mentor> ")
)

type chatCommander struct {
	serverURL   string
	newThread   bool
	transcript  string
	idleTimeout time.Duration
	debug       bool

	logger *slog.Logger
}

const chatLongDesc string = `Start a chat session with the studyhall mentor.

Each exchange streams back as the mentor writes it. The server records
every exchange as content-addressed turns, so a conversation can be
resumed, branched, or recalled later.

If a thread is checked out (from "studyhall thread checkout"), the
conversation resumes from that point and the checkout advances to the
newest head after every exchange. Use --new to clear the checkout and
start fresh.

Piped input is sent as a single prompt and the reply printed once:
  echo "explain subnet masks" | studyhall chat

Examples:
  studyhall chat
  studyhall chat --new
  studyhall chat --transcript session.md`

const chatShortDesc string = "Chat with the mentor, resuming the checked-out thread"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
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

			if d, err := time.ParseDuration(cfg.Client.IdleTimeout); err == nil {
				cmder.idleTimeout = d
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
	cmd.Flags().BoolVar(&cmder.newThread, "new", false, "Clear the checked-out thread and start a new conversation")
	cmd.Flags().StringVar(&cmder.transcript, "transcript", "", "Write the conversation to this markdown file after each exchange")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, configDir string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	dotdirManager := dotdir.NewManager()

	if c.newThread {
		if err := dotdirManager.ClearThreadState(configDir); err != nil {
			return fmt.Errorf("clearing thread state: %w", err)
		}
	}

	state, err := dotdirManager.LoadThreadState(configDir)
	if err != nil {
		return fmt.Errorf("loading thread state: %w", err)
	}

	var messages []dotdir.ThreadMessage
	var head string
	if state != nil {
		messages = state.Messages
		head = state.Head
	}

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	token, err := client.ResolveToken(creds, c.serverURL)
	if err != nil {
		return err
	}

	cl, err := client.New(client.Config{
		ServerURL:   c.serverURL,
		Token:       token,
		IdleTimeout: c.idleTimeout,
	}, c.logger)
	if err != nil {
		return err
	}

	fi, err := os.Stdin.Stat()
	if err != nil {
		return fmt.Errorf("checking stdin: %w", err)
	}

	if (fi.Mode() & os.ModeCharDevice) == 0 {
		return c.runPiped(ctx, cl, dotdirManager, configDir, messages, head)
	}
	return c.runInteractive(ctx, cl, dotdirManager, configDir, messages, head)
}

// runPiped sends everything on stdin as a single prompt and prints the
// reply once it is complete.
func (c *chatCommander) runPiped(ctx context.Context, cl *client.Client, dotdirManager *dotdir.Manager, configDir string, messages []dotdir.ThreadMessage, head string) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return errors.New("no prompt received on stdin")
	}

	result, err := cl.Chat(ctx, client.ChatRequest{Prompt: prompt, Parent: head}, nil)
	if err != nil {
		if client.IsUnauthorized(err) {
			return errors.New("not signed in, run 'studyhall auth login' first")
		}
		return fmt.Errorf("sending prompt: %w", err)
	}

	reply := renderReply(result.Text)
	fmt.Print(reply)
	if !strings.HasSuffix(reply, "\n") {
		fmt.Println()
	}

	messages = appendExchange(messages, prompt, result.Text)
	return c.persist(dotdirManager, configDir, messages, headAfter(head, result))
}

// runInteractive loops over stdin lines, streaming each reply as the
// mentor writes it.
func (c *chatCommander) runInteractive(ctx context.Context, cl *client.Client, dotdirManager *dotdir.Manager, configDir string, messages []dotdir.ThreadMessage, head string) error {
	fmt.Println()
	if head != "" {
		fmt.Printf("  %s Resuming from %s %s\n",
			cliui.SuccessMark,
			cliui.HashStyle.Render(utils.Truncate(head, 16)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(messages))),
		)
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Server:"),
		cliui.NameStyle.Render(c.serverURL),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		fmt.Print(mentorPrompt)
		result, err := cl.Chat(ctx, client.ChatRequest{Prompt: input, Parent: head}, func(chunk client.Chunk) error {
			if chunk.Type == mentor.ChunkDelta {
				fmt.Print(chunk.Text)
			}
			return nil
		})
		if err != nil {
			if client.IsUnauthorized(err) {
				fmt.Println()
				return errors.New("not signed in, run 'studyhall auth login' first")
			}
			fmt.Fprintf(os.Stderr, "\n  %s %v\n", cliui.FailMark, err)
			continue
		}

		messages = appendExchange(messages, input, result.Text)
		head = headAfter(head, result)

		if err := c.persist(dotdirManager, configDir, messages, head); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// persist advances the thread state and rewrites the transcript file
// when one was requested.
func (c *chatCommander) persist(dotdirManager *dotdir.Manager, configDir string, messages []dotdir.ThreadMessage, head string) error {
	state := &dotdir.ThreadState{Head: head, Messages: messages}
	if err := dotdirManager.SaveThreadState(state, configDir); err != nil {
		return fmt.Errorf("saving thread state: %w", err)
	}

	if c.transcript == "" {
		return nil
	}
	if err := writeTranscript(c.transcript, messages); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

func appendExchange(messages []dotdir.ThreadMessage, prompt, reply string) []dotdir.ThreadMessage {
	return append(messages,
		dotdir.ThreadMessage{Role: thread.RoleLearner, Content: prompt},
		dotdir.ThreadMessage{Role: thread.RoleMentor, Content: reply},
	)
}

// headAfter keeps the old head when a reply somehow arrives without one.
func headAfter(head string, result *client.ChatResult) string {
	if result.Head != "" {
		return result.Head
	}
	return head
}

// renderReply renders markdown through glamour when stdout is a
// terminal; piped output stays plain so it composes.
func renderReply(text string) string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if rendered, err := cliui.RenderMarkdown(text); err == nil {
			return rendered
		}
	}
	return text
}

// writeTranscript rewrites the whole conversation so the file always
// matches the saved thread state.
func writeTranscript(path string, messages []dotdir.ThreadMessage) error {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "**%s:** %s\n", msg.Role, msg.Content)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
