package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/samber/lo"

	"github.com/petasbytes/sidekick/memory"
)

const separatorWidth = 50

// printer writes user-facing text. Colors are dropped automatically when
// the writer is not a terminal.
type printer struct {
	w     io.Writer
	out   *termenv.Output
	panel lipgloss.Style
	title lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:     w,
		out:   termenv.NewOutput(w),
		panel: r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		title: r.NewStyle().Bold(true),
	}
}

func (p *printer) color(s, c string) string {
	return p.out.String(s).Foreground(p.out.Color(c)).String()
}

func (p *printer) Println(a ...any) { fmt.Fprintln(p.w, a...) }

func (p *printer) Printf(format string, a ...any) { fmt.Fprintf(p.w, format, a...) }

func (p *printer) Prompt(s string) { fmt.Fprint(p.w, p.color(s, "12")) }

func (p *printer) Info(s string) { p.Println(p.color(s, "8")) }

func (p *printer) Success(s string) { p.Println(p.color(s, "10")) }

func (p *printer) Error(s string) { p.Println(p.color(s, "9")) }

func (p *printer) Separator() { p.Println("\n" + strings.Repeat("-", separatorWidth)) }

func (p *printer) Answer(s string) {
	p.Println()
	p.Println(p.color("Result:", "11"))
	p.Println(s)
}

func (p *printer) Clear() { p.out.ClearScreen() }

const helpBody = `Commands:
  help    - show this help
  reset   - reset Sidekick
  history - show the conversation history
  clear   - clear the screen
  quit    - exit the program (or: exit)

Usage:
  1. Enter your request
  2. Optionally enter a success criterion (press Enter to skip)
  3. Sidekick works on the request and prints the result`

func (p *printer) Help() {
	p.Println()
	p.Println(p.panel.Render(p.title.Render("Sidekick terminal") + "\n\n" + helpBody))
	p.Println()
}

// History lists turns numbered from 1.
func (p *printer) History(turns []memory.Turn) {
	if len(turns) == 0 {
		p.Info("No conversation history yet.")
		return
	}
	lines := lo.Map(turns, func(t memory.Turn, i int) string {
		return fmt.Sprintf("%d. %s: %s", i+1, roleName(t.Role), t.Content)
	})
	p.Println()
	p.Println(p.panel.Render(p.title.Render("Conversation history") + "\n\n" + strings.Join(lines, "\n")))
	p.Println()
}

func roleName(role string) string {
	if role == memory.RoleUser {
		return "User"
	}
	return "Assistant"
}
