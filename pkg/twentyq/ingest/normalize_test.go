package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(DefaultPrefixes, nil)

	tests := []struct {
		in   string
		want string
	}{
		{"mammal", "MAMMAL"},
		{"wikicat American physicists", "AMERICAN PHYSICISTS"},
		{"wordnet physicist 110428004", "PHYSICIST"},
		{"WORDNET scientist 110560637 ", "SCIENTIST"},
		{"wikicatalog entries", "WIKICATALOG ENTRIES"},
		{"wordnet 110428004", ""},
		{"  water  ", "WATER"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeKeepsDigitsWithoutStrip(t *testing.T) {
	n := NewNormalizer(DefaultPrefixes, nil)

	assert.Equal(t, "FILMS OF 1999", n.Normalize("wikicat Films of 1999"))
}

func TestNormalizeIgnoreList(t *testing.T) {
	n := NewNormalizer(DefaultPrefixes, []string{"entity", "Physical Entity"})

	assert.Empty(t, n.Normalize("wordnet entity 100001740"))
	assert.Empty(t, n.Normalize("physical entity"), "ignore list is case-insensitive")
	assert.Equal(t, "MAMMAL", n.Normalize("mammal"))
}

func TestNormalizeCustomPrefixes(t *testing.T) {
	n := NewNormalizer([]Prefix{{Name: "cat", StripDigits: true}, {Name: " "}}, nil)

	assert.Equal(t, "BIRDS", n.Normalize("cat Birds 42"))
}
