package ingest

import (
	"strings"
	"unicode"
)

// Prefix is a corpus-specific header carried by category tags,
// e.g. "wikicat_" or "wordnet_" in YAGO type dumps.
type Prefix struct {
	Name string
	// StripDigits also removes the trailing synset id
	// ("WORDNET PHYSICIST 110428004" -> "PHYSICIST").
	StripDigits bool
}

// DefaultPrefixes matches the YAGO type corpus.
var DefaultPrefixes = []Prefix{
	{Name: "WIKICAT"},
	{Name: "WORDNET", StripDigits: true},
}

// Normalizer turns raw category tags into question names
type Normalizer struct {
	prefixes []Prefix
	ignore   map[string]struct{}
}

// NewNormalizer creates a normalizer. Ignored categories are compared
// after normalization, case-insensitively.
func NewNormalizer(prefixes []Prefix, ignore []string) *Normalizer {
	n := &Normalizer{
		prefixes: make([]Prefix, 0, len(prefixes)),
		ignore:   make(map[string]struct{}, len(ignore)),
	}
	for _, p := range prefixes {
		name := strings.ToUpper(strings.TrimSpace(p.Name))
		if name == "" {
			continue
		}
		n.prefixes = append(n.prefixes, Prefix{Name: name, StripDigits: p.StripDigits})
	}
	for _, w := range ignore {
		n.ignore[strings.ToUpper(strings.TrimSpace(w))] = struct{}{}
	}
	return n
}

// Normalize uppercases tag and strips known headers. Prefixes apply in
// order, each at most once. Returns "" when nothing usable is left or the
// result is on the ignore list.
func (n *Normalizer) Normalize(tag string) string {
	q := strings.ToUpper(strings.TrimSpace(tag))

	for _, p := range n.prefixes {
		rest, ok := cutHeader(q, p.Name)
		if !ok {
			continue
		}
		q = rest
		if p.StripDigits {
			q = strings.TrimRightFunc(q, unicode.IsDigit)
			q = strings.TrimSpace(q)
		}
	}

	if _, skip := n.ignore[q]; skip {
		return ""
	}
	return q
}

// cutHeader removes header from the front of s when it stands as its own
// word, so "WIKICATALOG" is left alone.
func cutHeader(s, header string) (string, bool) {
	rest, ok := strings.CutPrefix(s, header)
	if !ok {
		return s, false
	}
	if rest != "" && rest[0] != ' ' {
		return s, false
	}
	return strings.TrimSpace(rest), true
}
