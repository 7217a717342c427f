package quizcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/studyhallco/studyhall/pkg/state"
	"github.com/studyhallco/studyhall/pkg/state/quizflow"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

var (
	quizTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	quizMutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	quizAccentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	quizDividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	quizSectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	quizHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("214")).Bold(true)
	quizReadyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)
)

type quizKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Prev   key.Binding
	Next   key.Binding
	Pick   key.Binding
	Number key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func (k quizKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Pick, k.Prev, k.Next, k.Number, k.Submit, k.Quit}
}

func (k quizKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Pick, k.Number}, {k.Prev, k.Next, k.Submit, k.Quit}}
}

func defaultQuizKeyMap() quizKeyMap {
	return quizKeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Prev:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "prev")),
		Next:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "next")),
		Pick:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick")),
		Number: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "pick choice")),
		Submit: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "abandon")),
	}
}

// quizModel renders straight from quizflow snapshots; every state change
// goes through a store dispatch. Submission itself happens outside the
// TUI, after the program exits with finished set.
type quizModel struct {
	store    *state.Store[quizflow.State]
	choice   int
	finished bool
	width    int
	height   int
	keys     quizKeyMap
	help     help.Model
}

func newQuizModel(store *state.Store[quizflow.State]) quizModel {
	model := quizModel{
		store: store,
		keys:  defaultQuizKeyMap(),
		help:  help.New(),
	}
	return model.syncChoice()
}

func runQuizTUI(ctx context.Context, store *state.Store[quizflow.State]) (bool, error) {
	program := bubbletea.NewProgram(newQuizModel(store),
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)

	final, err := program.Run()
	if err != nil {
		return false, err
	}

	model, ok := final.(quizModel)
	if !ok {
		return false, nil
	}
	return model.finished, nil
}

func (m quizModel) Init() bubbletea.Cmd {
	return nil
}

func (m quizModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m quizModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	s := m.store.State()

	switch msg.String() {
	case "ctrl+c", "q":
		return m, bubbletea.Quit
	case "j", "down":
		return m.moveChoice(1), nil
	case "k", "up":
		return m.moveChoice(-1), nil
	case "enter", " ":
		m.store.Dispatch(quizflow.Answered{Choice: m.choice})
		m.store.Dispatch(quizflow.Advanced{})
		return m.syncChoice(), nil
	case "h", "left":
		m.store.Dispatch(quizflow.Retreated{})
		return m.syncChoice(), nil
	case "l", "right":
		m.store.Dispatch(quizflow.Advanced{})
		return m.syncChoice(), nil
	case "s":
		if s.Quiz != nil && quizflow.AnsweredCount(s) == len(s.Quiz.Questions) {
			m.finished = true
			return m, bubbletea.Quit
		}
		return m, nil
	}

	if idx, ok := numberKey(msg.String()); ok {
		if question, found := quizflow.Current(s); found && idx < len(question.Choices) {
			m.choice = idx
			m.store.Dispatch(quizflow.Answered{Choice: idx})
			m.store.Dispatch(quizflow.Advanced{})
			return m.syncChoice(), nil
		}
	}

	return m, nil
}

func (m quizModel) moveChoice(delta int) quizModel {
	question, ok := quizflow.Current(m.store.State())
	if !ok || len(question.Choices) == 0 {
		return m
	}
	m.choice = clamp(m.choice+delta, len(question.Choices)-1)
	return m
}

// syncChoice parks the cursor on the picked answer of the current
// question, or the first choice when nothing is picked yet.
func (m quizModel) syncChoice() quizModel {
	s := m.store.State()
	if s.Index >= 0 && s.Index < len(s.Answers) && s.Answers[s.Index] != quizflow.Unanswered {
		m.choice = s.Answers[s.Index]
		return m
	}
	m.choice = 0
	return m
}

func (m quizModel) View() string {
	s := m.store.State()
	if s.Quiz == nil {
		return quizMutedStyle.Render("no quiz loaded")
	}

	question, ok := quizflow.Current(s)
	if !ok {
		return quizMutedStyle.Render("no question under cursor")
	}

	headerLeft := quizTitleStyle.Render("studyhall quiz › " + s.Quiz.Title)
	headerRight := quizMutedStyle.Render(fmt.Sprintf("%s · %s", s.Quiz.Topic, s.Quiz.Difficulty))
	lines := make([]string, 0, 16)
	lines = append(lines, renderHeaderLine(m.width, headerLeft, headerRight), renderRule(m.width), "")

	progress := quizSectionStyle.Render(fmt.Sprintf("Question %d of %d", s.Index+1, len(s.Quiz.Questions)))
	answered := quizMutedStyle.Render(fmt.Sprintf("%d of %d answered", quizflow.AnsweredCount(s), len(s.Quiz.Questions)))
	lines = append(lines, renderHeaderLine(m.width, progress, answered), "")

	prompt := question.Prompt
	if question.Points > 1 {
		prompt = fmt.Sprintf("%s %s", prompt, quizMutedStyle.Render(fmt.Sprintf("(%d pts)", question.Points)))
	}
	lines = append(lines, prompt, "")

	picked := quizflow.Unanswered
	if s.Index >= 0 && s.Index < len(s.Answers) {
		picked = s.Answers[s.Index]
	}

	for i, choice := range question.Choices {
		cursor := " "
		if i == m.choice {
			cursor = ">"
		}
		marker := " "
		if i == picked {
			marker = "●"
		}

		line := fmt.Sprintf("%s %s %d. %s", cursor, marker, i+1, choice)
		switch {
		case i == m.choice:
			line = quizHighlightStyle.Render(line)
		case i == picked:
			line = fmt.Sprintf("%s %s %d. %s", cursor, quizAccentStyle.Render(marker), i+1, choice)
		}
		lines = append(lines, line)
	}

	if quizflow.AnsweredCount(s) == len(s.Quiz.Questions) {
		lines = append(lines, "", quizReadyStyle.Render("All answered. Press s to submit."))
	}

	lines = append(lines, "", m.viewFooter())

	return strings.Join(lines, "\n")
}

func (m quizModel) viewFooter() string {
	return quizMutedStyle.Render(m.help.View(m.keys))
}

func numberKey(key string) (int, bool) {
	switch key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return int(key[0] - '1'), true
	default:
		return 0, false
	}
}

func clamp(value, upper int) int {
	if value < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}

func renderHeaderLine(width int, left, right string) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth+1 >= lineWidth {
		return strings.TrimSpace(left + " " + right)
	}
	spacing := lineWidth - leftWidth - rightWidth
	return left + strings.Repeat(" ", spacing) + right
}

func renderRule(width int) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	return quizDividerStyle.Render(strings.Repeat("─", lineWidth))
}
