package ingest

import (
	"errors"
	"strings"
)

// Pair is one (answer, category) fact read from a corpus.
type Pair struct {
	Answer   string
	Category string
}

// Validate checks that both sides of the pair carry text
func (p Pair) Validate() error {
	if strings.TrimSpace(p.Answer) == "" {
		return errors.New("pair answer is required")
	}

	if strings.TrimSpace(p.Category) == "" {
		return errors.New("pair category is required")
	}

	return nil
}
