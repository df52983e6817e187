package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Asker asks the player things
type Asker interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	Ask(ctx context.Context, prompt string) (string, error)
}

// NewAsker picks a huh form when in is a terminal and plain is false,
// otherwise a line reader over in.
func NewAsker(in *os.File, out io.Writer, plain bool) Asker {
	if !plain && (isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())) {
		return NewFormAsker(in, out)
	}
	return NewLineAsker(in, out)
}

// LineAsker reads answers one line at a time. It works with pipes and
// scripted input. A single goroutine owns the reader, so a line that
// arrives after a cancelled prompt is handed to the next one.
type LineAsker struct {
	in    *bufio.Reader
	out   io.Writer
	start sync.Once
	lines chan lineResult
}

// NewLineAsker creates a LineAsker over the given streams
func NewLineAsker(in io.Reader, out io.Writer) *LineAsker {
	return &LineAsker{in: bufio.NewReader(in), out: out, lines: make(chan lineResult)}
}

type lineResult struct {
	line string
	err  error
}

// readLoop feeds lines to readers until the input fails; the final error
// is then repeated to every later caller.
func (a *LineAsker) readLoop() {
	var r lineResult
	for r.err == nil {
		line, err := a.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		r = lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
		a.lines <- r
	}
	for {
		a.lines <- r
	}
}

// readLine returns the next line without its newline. A final line with
// no newline is returned before io.EOF.
func (a *LineAsker) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.start.Do(func() { go a.readLoop() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-a.lines:
		return r.line, r.err
	}
}

// Confirm asks a yes/no question until it gets y, yes, n or no.
func (a *LineAsker) Confirm(ctx context.Context, prompt string) (bool, error) {
	for {
		fmt.Fprintf(a.out, "%s [y/n] ", prompt)
		line, err := a.readLine(ctx)
		if err != nil {
			return false, fmt.Errorf("confirm %q: %w", prompt, err)
		}
		if yes, ok := ParseYesNo(line); ok {
			return yes, nil
		}
		fmt.Fprintln(a.out, "Please answer yes or no.")
	}
}

// Ask reads one line of free text, trimmed
func (a *LineAsker) Ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprintf(a.out, "%s ", prompt)
	line, err := a.readLine(ctx)
	if err != nil {
		return "", fmt.Errorf("ask %q: %w", prompt, err)
	}
	return strings.TrimSpace(line), nil
}

// ParseYesNo understands y, yes, n and no in any case
func ParseYesNo(s string) (yes bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// FormAsker prompts with huh forms on a terminal
type FormAsker struct {
	in  io.Reader
	out io.Writer
}

// NewFormAsker creates a FormAsker bound to the given terminal streams
func NewFormAsker(in io.Reader, out io.Writer) *FormAsker {
	return &FormAsker{in: in, out: out}
}

// Confirm shows a Yes/No toggle
func (a *FormAsker) Confirm(ctx context.Context, prompt string) (bool, error) {
	var yes bool
	field := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&yes)
	if err := a.run(ctx, field); err != nil {
		return false, fmt.Errorf("confirm %q: %w", prompt, err)
	}
	return yes, nil
}

// Ask shows a single-line input
func (a *FormAsker) Ask(ctx context.Context, prompt string) (string, error) {
	var text string
	field := huh.NewInput().
		Title(prompt).
		Value(&text)
	if err := a.run(ctx, field); err != nil {
		return "", fmt.Errorf("ask %q: %w", prompt, err)
	}
	return strings.TrimSpace(text), nil
}

func (a *FormAsker) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(a.in).
		WithOutput(a.out).
		WithShowHelp(false)
	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return context.Canceled
	}
	return err
}
