package ingest

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Tokenizer reads angle-bracket corpora:
//
//	<Albert_Einstein>	<wordnet_physicist_110428004>
//	<Albert_Einstein>	<wikicat_German_Nobel_laureates>
//
// The first token on a line is the answer; every later token on the same
// line is one of its categories. An answer alone on its line takes the next
// token in the stream as its category, so a corpus may also alternate
// answer and category one token per line. Underscores inside a token become
// spaces and HTML character references are decoded. Text outside brackets
// is ignored, so extra TSV columns such as rdf:type pass through harmlessly.
type Tokenizer struct{}

// NewTokenizer creates a corpus tokenizer
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Pairs reads every complete pair from r.
func (t *Tokenizer) Pairs(r io.Reader) ([]Pair, error) {
	var pairs []Pair
	err := t.Each(r, func(p Pair) error {
		pairs = append(pairs, p)
		return nil
	})
	return pairs, err
}

// Each streams pairs from r to fn. An answer still waiting for a category
// at end of stream is dropped, as is a token still open at end of stream or
// cut by a newline. Errors from fn stop the scan and are returned as-is.
func (t *Tokenizer) Each(r io.Reader, fn func(Pair) error) error {
	br := bufio.NewReader(r)

	var (
		line    []string
		pending string
		current strings.Builder
		inToken bool
	)

	emit := func(answer, category string) error {
		p := Pair{Answer: answer, Category: category}
		if p.Validate() != nil {
			return nil
		}
		return fn(p)
	}

	flush := func() error {
		tokens := line
		defer func() { line = line[:0] }()

		if pending != "" && len(tokens) > 0 {
			answer := pending
			pending = ""
			if err := emit(answer, tokens[0]); err != nil {
				return err
			}
			tokens = tokens[1:]
		}

		switch len(tokens) {
		case 0:
			return nil
		case 1:
			pending = tokens[0]
			return nil
		}
		for _, cat := range tokens[1:] {
			if err := emit(tokens[0], cat); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return flush()
			}
			return err
		}

		switch {
		case ch == '\n':
			inToken = false
			current.Reset()
			if err := flush(); err != nil {
				return err
			}
		case !inToken:
			if ch == '<' {
				inToken = true
				current.Reset()
			}
		case ch == '>':
			inToken = false
			line = append(line, decodeToken(current.String()))
		case ch == '_':
			current.WriteRune(' ')
		default:
			current.WriteRune(ch)
		}
	}
}

// decodeToken unescapes character references and trims the token.
func decodeToken(raw string) string {
	return strings.TrimSpace(html.UnescapeString(raw))
}
