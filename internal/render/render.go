// Package render prints sessions to the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/igloo-cli/igloo/internal/assignment"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Palette shared by everything igloo draws.
const (
	WHITE      = lipgloss.Color("#FFFFFF")
	BLUE       = lipgloss.Color("#0043a8")
	GREY       = lipgloss.Color("#626262")
	LAVENDER   = lipgloss.Color("#B8B8FF")
	GREEN      = lipgloss.Color("#50FA7B")
	RED        = lipgloss.Color("#FF5555")
	YELLOW     = lipgloss.Color("#F1FA8C")
	LIGHT_BLUE = lipgloss.Color("#8BE9FD")
	SILVER     = lipgloss.Color("#A9B2D8")
)

type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Banner() {
	title := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).
		Render("🧊 Welcome to the Igloo!")
	sub := lipgloss.NewStyle().Foreground(WHITE).
		Render("Access live assignment stats from your CLI.")
	fmt.Fprintf(c.out, "\n%s\n%s\n\n", title, sub)
}

func (c *Console) LoginFailed(attempt, max int) {
	style := lipgloss.NewStyle().Foreground(RED).Bold(true)
	fmt.Fprintln(c.out, style.Render(fmt.Sprintf("🚨 Login failed. (attempt %d of %d)", attempt, max)))
}

func (c *Console) LoggedIn(username string) {
	fmt.Fprintf(c.out, "👍 Logged in as %s\n",
		lipgloss.NewStyle().Underline(true).Foreground(GREEN).Render(username))
}

// Progress reports detail fetching, one line per assignment.
func (c *Console) Progress(done, total int, name string) {
	fmt.Fprintln(c.out, lipgloss.NewStyle().Foreground(GREY).
		Render(fmt.Sprintf("  [%d/%d] %s", done, total, name)))
}

func (c *Console) View(v assignment.View, records []assignment.Assignment, summary assignment.Summary) {
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf(
		"📝 %d todo, %d done, %d graded", summary.Todo, summary.Completed, summary.Graded))
	fmt.Fprintf(c.out, "\n📋 Your assignments:\n%s\n", header)

	if len(records) == 0 {
		fmt.Fprintln(c.out, lipgloss.NewStyle().Foreground(YELLOW).
			Render(fmt.Sprintf("No %s assignments.", v)))
		return
	}
	fmt.Fprintln(c.out, Table(v, records))
}

// Table renders a view as a rounded go-pretty table.
func Table(v assignment.View, records []assignment.Assignment) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(v.String())
	t.AppendHeader(table.Row{"#", "Assignment", "Deadline", "Status", "Grading", "Submission"})
	for i, r := range records {
		deadline, ok := r.Deadline()
		if !ok {
			deadline = "-"
		}
		t.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			r.Name,
			deadline,
			orDash(r.SubmissionStatus()),
			orDash(r.GradingStatus()),
			orDash(r.Submission()),
		})
	}
	return t.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (c *Console) Goodbye() {
	fmt.Fprintln(c.out, lipgloss.NewStyle().Foreground(LAVENDER).Render("👋 Bye!"))
}

// Fatal prints an error the way the session reports failures.
func Fatal(w io.Writer, err error) {
	style := lipgloss.NewStyle().Foreground(RED)
	fmt.Fprintln(w, style.Render(fmt.Sprintf("❌ Error: %s", err.Error())))
}
