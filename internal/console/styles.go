package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#2CD7C7")
	colorWin    = lipgloss.Color("#F4D03F")
	colorMuted  = lipgloss.Color("#7F8C8D")
	colorError  = lipgloss.Color("#E74C3C")
)

// Styles used by the printer
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	WinStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorWin)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	WarningStyle = lipgloss.NewStyle().Foreground(colorError)
)

// Printer writes banners and tables, styled unless plain
type Printer struct {
	out   io.Writer
	plain bool
}

// NewPrinter creates a Printer
func NewPrinter(out io.Writer, plain bool) *Printer {
	return &Printer{out: out, plain: plain}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if p.plain {
		return s
	}
	return style.Render(s)
}

// Title prints a heading line
func (p *Printer) Title(s string) {
	fmt.Fprintln(p.out, p.render(TitleStyle, s))
}

// Line prints an unstyled line
func (p *Printer) Line(s string) {
	fmt.Fprintln(p.out, s)
}

// Muted prints a dimmed line
func (p *Printer) Muted(s string) {
	fmt.Fprintln(p.out, p.render(MutedStyle, s))
}

// Warn prints a warning line
func (p *Printer) Warn(s string) {
	fmt.Fprintln(p.out, p.render(WarningStyle, s))
}

// Columns prints names in rows of perRow, each padded to the widest name.
func (p *Printer) Columns(names []string, perRow int) {
	if perRow < 1 {
		perRow = 1
	}
	width := 0
	for _, n := range names {
		if w := lipgloss.Width(n); w > width {
			width = w
		}
	}
	cell := lipgloss.NewStyle().Width(width + 2)

	for start := 0; start < len(names); start += perRow {
		end := start + perRow
		if end > len(names) {
			end = len(names)
		}
		cells := make([]string, 0, end-start)
		for _, n := range names[start:end] {
			cells = append(cells, cell.Render(n))
		}
		fmt.Fprintln(p.out, strings.TrimRight(strings.Join(cells, ""), " "))
	}
}

// Writer returns a writer that styles each game message by kind
func (p *Printer) Writer() io.Writer {
	return &messageWriter{p: p}
}

// messageWriter highlights the win line and passes the rest through
type messageWriter struct {
	p *Printer
}

func (w *messageWriter) Write(b []byte) (int, error) {
	for _, line := range strings.SplitAfter(string(b), "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		style := MutedStyle
		if strings.HasPrefix(text, "The computer wins") {
			style = WinStyle
		}
		if _, err := io.WriteString(w.p.out, w.p.render(style, text)); err != nil {
			return 0, err
		}
		if strings.HasSuffix(line, "\n") {
			if _, err := io.WriteString(w.p.out, "\n"); err != nil {
				return 0, err
			}
		}
	}
	return len(b), nil
}
