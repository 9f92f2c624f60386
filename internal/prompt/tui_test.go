package prompt

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/igloo-cli/igloo/internal/render"
	"github.com/stretchr/testify/require"
)

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestChoiceModel(t *testing.T) {
	m := press(newChoiceModel("Choose a module", []string{"CS4001", "CS4002", "CS4003"}),
		tea.KeyMsg{Type: tea.KeyDown},
		runes("j"),
		runes("j"),
		tea.KeyMsg{Type: tea.KeyUp},
	)
	cm := m.(choiceModel)
	require.Equal(t, 1, cm.cursor)
	require.Contains(t, cm.View(), "→ CS4002")

	m = press(cm, tea.KeyMsg{Type: tea.KeyEnter})
	cm = m.(choiceModel)
	require.True(t, cm.chosen)
	require.False(t, cm.cancelled)
	require.Contains(t, cm.View(), "CS4002")
}

func TestChoiceModelCancel(t *testing.T) {
	m := press(newChoiceModel("Choose a view", []string{"To-do", "Exit"}), tea.KeyMsg{Type: tea.KeyCtrlC})
	cm := m.(choiceModel)
	require.True(t, cm.cancelled)
	require.Empty(t, cm.View())
}

func TestSecretModelMasks(t *testing.T) {
	m := press(newTextModel("Enter your Moodle password", true), runes("s"), runes("3"), runes("c"))
	tm := m.(textModel)
	require.Equal(t, "s3c", tm.input.Value())
	require.NotContains(t, tm.View(), "s3c")

	m = press(tm, tea.KeyMsg{Type: tea.KeyEnter})
	tm = m.(textModel)
	require.True(t, tm.done)
	require.True(t, strings.Contains(tm.View(), "***"))
	require.NotContains(t, tm.View(), "s3c")
}

func TestTextModel(t *testing.T) {
	m := press(newTextModel("Enter your Moodle username or email", false), runes("abc"), tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEnter})
	tm := m.(textModel)
	require.Equal(t, "ab", tm.input.Value())
	require.Contains(t, tm.View(), "ab")
}

func TestStylesUseSharedPalette(t *testing.T) {
	require.Equal(t, lipgloss.TerminalColor(render.LIGHT_BLUE), questionStyle.GetForeground())
	require.Equal(t, lipgloss.TerminalColor(render.BLUE), selectedStyle.GetBackground())
	require.Equal(t, lipgloss.TerminalColor(render.SILVER), normalStyle.GetForeground())
}
