package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes the operator-facing run transcript. Colours are dropped when
// out is not a terminal.
type Printer struct {
	out io.Writer

	successStyle lipgloss.Style
	failureStyle lipgloss.Style
	neutralStyle lipgloss.Style
	headingStyle lipgloss.Style
}

func New(out io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(out)

	return &Printer{
		out: out,
		successStyle: renderer.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true),
		failureStyle: renderer.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true),
		neutralStyle: renderer.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true),
		headingStyle: renderer.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")).
			Bold(true),
	}
}

func (p *Printer) Success(format string, args ...interface{}) {
	p.println(p.successStyle, format, args...)
}

func (p *Printer) Failure(format string, args ...interface{}) {
	p.println(p.failureStyle, format, args...)
}

func (p *Printer) Neutral(format string, args ...interface{}) {
	p.println(p.neutralStyle, format, args...)
}

func (p *Printer) Heading(format string, args ...interface{}) {
	p.println(p.headingStyle, format, args...)
}

// Plain writes text untouched, e.g. model output that carries its own layout.
func (p *Printer) Plain(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *Printer) Blank() {
	fmt.Fprintln(p.out)
}

func (p *Printer) println(style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(p.out, style.Render(fmt.Sprintf(format, args...)))
}
