package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/igloo-cli/igloo/internal/render"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(render.LIGHT_BLUE)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(render.WHITE).Background(render.BLUE).Padding(0, 1)
	normalStyle   = lipgloss.NewStyle().Foreground(render.SILVER).Padding(0, 1)
	answerStyle   = lipgloss.NewStyle().Foreground(render.WHITE)
	helpStyle     = lipgloss.NewStyle().Foreground(render.GREY)
)

// TUI runs one small bubbletea program per question.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

func NewTUI() *TUI {
	return &TUI{In: os.Stdin, Out: os.Stdout}
}

func (t *TUI) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(t.In),
		tea.WithOutput(t.Out),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return final, nil
}

func (t *TUI) Choice(ctx context.Context, message string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("nothing to choose from for %q", message)
	}
	final, err := t.run(ctx, newChoiceModel(message, choices))
	if err != nil {
		return "", err
	}
	m := final.(choiceModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.choices[m.cursor], nil
}

func (t *TUI) Text(ctx context.Context, message string) (string, error) {
	return t.text(ctx, message, false)
}

func (t *TUI) Secret(ctx context.Context, message string) (string, error) {
	return t.text(ctx, message, true)
}

func (t *TUI) text(ctx context.Context, message string, secret bool) (string, error) {
	final, err := t.run(ctx, newTextModel(message, secret))
	if err != nil {
		return "", err
	}
	m := final.(textModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.input.Value(), nil
}

type choiceModel struct {
	message   string
	choices   []string
	cursor    int
	chosen    bool
	cancelled bool
}

func newChoiceModel(message string, choices []string) choiceModel {
	return choiceModel{message: message, choices: choices}
}

func (m choiceModel) Init() tea.Cmd {
	return nil
}

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = true
		return m, tea.Quit
	}
	return m, nil
}

func (m choiceModel) View() string {
	if m.chosen {
		return fmt.Sprintf("%s %s\n", questionStyle.Render("? "+m.message), answerStyle.Render(m.choices[m.cursor]))
	}
	if m.cancelled {
		return ""
	}

	var lines []string
	lines = append(lines, questionStyle.Render("? "+m.message))
	for i, choice := range m.choices {
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("→ "+choice))
		} else {
			lines = append(lines, normalStyle.Render("  "+choice))
		}
	}
	lines = append(lines, helpStyle.Render("• ↑/↓: Navigate • Enter: Select • Ctrl+C: Quit"))
	return strings.Join(lines, "\n") + "\n"
}

type textModel struct {
	message   string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newTextModel(message string, secret bool) textModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Focus()
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	return textModel{message: message, input: ti}
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textModel) View() string {
	if m.done {
		answer := m.input.Value()
		if m.input.EchoMode == textinput.EchoPassword {
			answer = strings.Repeat("*", len([]rune(answer)))
		}
		return fmt.Sprintf("%s %s\n", questionStyle.Render("? "+m.message), answerStyle.Render(answer))
	}
	if m.cancelled {
		return ""
	}
	return questionStyle.Render("? "+m.message) + "\n" + m.input.View() + "\n"
}
