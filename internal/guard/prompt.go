package guard

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TeaPrompter asks a yes/no question with a small bubbletea program.
type TeaPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Confirm runs the prompt until the user answers or cancels. Cancelling
// (ctrl+c, esc) answers no.
func (p TeaPrompter) Confirm(ctx context.Context, message string, initial bool) (bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(newConfirmModel(message, initial), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("run prompt: %w", err)
	}
	m := final.(confirmModel)
	return m.answered && m.value, nil
}

type confirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.Toggle, k.Submit}
}

func (k confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Cancel}}
}

var defaultConfirmKeys = confirmKeys{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
	Toggle: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab"), key.WithHelp("←/→", "toggle")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel")),
}

type confirmStyles struct {
	Question lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Answer   lipgloss.Style
}

func defaultConfirmStyles() confirmStyles {
	return confirmStyles{
		Question: lipgloss.NewStyle().Foreground(lipgloss.Color("#0077B6")).Bold(true),
		Active:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true).Underline(true),
		Inactive: lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
	}
}

type confirmModel struct {
	message  string
	value    bool
	answered bool
	done     bool
	width    int
	keys     confirmKeys
	help     help.Model
	styles   confirmStyles
}

func newConfirmModel(message string, initial bool) confirmModel {
	return confirmModel{
		message: message,
		value:   initial,
		keys:    defaultConfirmKeys,
		help:    help.New(),
		styles:  defaultConfirmStyles(),
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Yes):
			m.value, m.answered, m.done = true, true, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.No):
			m.value, m.answered, m.done = false, true, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.value = !m.value
		case key.Matches(msg, m.keys.Submit):
			m.answered, m.done = true, true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	question := m.message
	if m.width > 4 {
		question = runewidth.Truncate(question, m.width-2, "…")
	}
	question = m.styles.Question.Render("? ") + question

	if m.done {
		answer := "No"
		if m.answered && m.value {
			answer = "Yes"
		}
		return question + " " + m.styles.Answer.Render(answer) + "\n"
	}

	yes, no := m.styles.Inactive.Render("Yes"), m.styles.Inactive.Render("No")
	if m.value {
		yes = m.styles.Active.Render("Yes")
	} else {
		no = m.styles.Active.Render("No")
	}
	return fmt.Sprintf("%s\n  %s / %s\n\n%s\n", question, yes, no, m.help.View(m.keys))
}
