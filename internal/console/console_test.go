package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineAskerConfirm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase YES", "YES\n", true},
		{"with spaces", "  n  \n", false},
		{"no", "no\n", false},
		{"crlf", "yes\r\n", true},
		{"no trailing newline", "y", true},
		{"retry after junk", "maybe\n\ny\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := NewLineAsker(strings.NewReader(tt.input), &bytes.Buffer{})

			got, err := asker.Confirm(context.Background(), "Does it fit in the category MAMMAL?")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLineAskerConfirmPrompt(t *testing.T) {
	writer := &bytes.Buffer{}
	asker := NewLineAsker(strings.NewReader("what\ny\n"), writer)

	_, err := asker.Confirm(context.Background(), "Would you like to play again?")
	require.NoError(t, err)

	output := writer.String()
	assert.Equal(t, 2, strings.Count(output, "Would you like to play again? [y/n]"), "prompt should repeat after junk")
	assert.Contains(t, output, "Please answer yes or no.")
}

func TestLineAskerConfirmEOF(t *testing.T) {
	asker := NewLineAsker(strings.NewReader(""), &bytes.Buffer{})

	_, err := asker.Confirm(context.Background(), "Continue?")
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineAskerContextCancelled(t *testing.T) {
	asker := NewLineAsker(strings.NewReader("y\n"), &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := asker.Confirm(ctx, "Continue?")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = asker.Ask(ctx, "Word?")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineAskerBlockedReadCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	asker := NewLineAsker(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := asker.Ask(ctx, "Word?")
		done <- err
	}()
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestLineAskerReusedAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	asker := NewLineAsker(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := asker.Ask(ctx, "Word?")
		done <- err
	}()
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// The line typed after the cancelled prompt goes to the next one
	go io.WriteString(pw, "Dog\n")

	got, err := asker.Ask(context.Background(), "Word?")
	require.NoError(t, err)
	assert.Equal(t, "Dog", got)
}

func TestLineAskerRepeatsEOF(t *testing.T) {
	asker := NewLineAsker(strings.NewReader("y"), &bytes.Buffer{})

	yes, err := asker.Confirm(context.Background(), "First?")
	require.NoError(t, err)
	assert.True(t, yes)

	for i := 0; i < 2; i++ {
		_, err := asker.Ask(context.Background(), "More?")
		assert.ErrorIs(t, err, io.EOF, "Ask #%d", i)
	}
}

func TestLineAskerAsk(t *testing.T) {
	writer := &bytes.Buffer{}
	asker := NewLineAsker(strings.NewReader("  Golden Retriever \nnext\n"), writer)

	got, err := asker.Ask(context.Background(), "Hmm I am stumped. What was your word?")
	require.NoError(t, err)
	assert.Equal(t, "Golden Retriever", got)
	assert.Contains(t, writer.String(), "What was your word?")

	// The reader keeps its position between questions
	got, err = asker.Ask(context.Background(), "Again?")
	require.NoError(t, err)
	assert.Equal(t, "next", got)
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		in      string
		yes, ok bool
	}{
		{"Y", true, true},
		{"yes", true, true},
		{"N", false, true},
		{" No ", false, true},
		{"", false, false},
		{"yep", false, false},
	}
	for _, tt := range tests {
		yes, ok := ParseYesNo(tt.in)
		assert.Equal(t, tt.yes, yes, "ParseYesNo(%q) yes", tt.in)
		assert.Equal(t, tt.ok, ok, "ParseYesNo(%q) ok", tt.in)
	}
}

func TestPrinterColumnsPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Columns([]string{"Bat", "Cat", "Chicken", "Cow", "Dog", "Eagle", "Frog"}, 5)

	assert.Equal(t, "Bat      Cat      Chicken  Cow      Dog\n"+
		"Eagle    Frog\n", buf.String())
}

func TestPrinterPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	io.WriteString(p.Writer(), "The computer wins again!!!\nYou incorrectly answered PET\n")
	p.Title("Twenty Questions")

	assert.Equal(t, "The computer wins again!!!\nYou incorrectly answered PET\nTwenty Questions\n", buf.String())
}

func TestNewAskerPlainUsesLines(t *testing.T) {
	// os.Stdin under go test is not a terminal either way, plain forces lines
	asker := NewAsker(nil, &bytes.Buffer{}, true)
	assert.IsType(t, &LineAsker{}, asker)
}
