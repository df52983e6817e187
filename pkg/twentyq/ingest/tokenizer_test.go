package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPairs(t *testing.T, input string) []Pair {
	t.Helper()
	pairs, err := NewTokenizer().Pairs(strings.NewReader(input))
	require.NoError(t, err)
	return pairs
}

func TestTokenizerBasic(t *testing.T) {
	pairs := readPairs(t, "<Albert_Einstein>\t<wordnet_physicist_110428004>\n"+
		"<Marie_Curie>\t<wikicat_Nobel_laureates>\n")

	assert.Equal(t, []Pair{
		{Answer: "Albert Einstein", Category: "wordnet physicist 110428004"},
		{Answer: "Marie Curie", Category: "wikicat Nobel laureates"},
	}, pairs)
}

func TestTokenizerMultipleCategoriesPerLine(t *testing.T) {
	pairs := readPairs(t, "<Cat> <mammal> <pet> <four_legs>\n")

	require.Len(t, pairs, 3)
	for _, p := range pairs {
		assert.Equal(t, "Cat", p.Answer)
	}
	assert.Equal(t, "four legs", pairs[2].Category, "underscores become spaces")
}

func TestTokenizerIgnoresTextOutsideBrackets(t *testing.T) {
	pairs := readPairs(t, "<Cat>\trdf:type\t<mammal>\t.\n")

	assert.Equal(t, []Pair{{Answer: "Cat", Category: "mammal"}}, pairs)
}

func TestTokenizerDropsPartialPairs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"answer never followed", "<Dog> <mammal>\n<Cat>\n", 1},
		{"unterminated at eof", "<Dog> <mammal>\n<Cat> <mamm", 1},
		{"token cut by newline", "<Cat> <mam\nmal>\n", 0},
		{"empty input", "", 0},
		{"no trailing newline", "<Dog> <mammal>", 1},
		{"empty category", "<Dog> <>\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, readPairs(t, tt.input), tt.want)
		})
	}
}

func TestTokenizerAnswerAndCategoryOnSeparateLines(t *testing.T) {
	pairs := readPairs(t, "<Cat>\n<mammal>\n<Dog>\n\n<mammal>\n")

	assert.Equal(t, []Pair{
		{Answer: "Cat", Category: "mammal"},
		{Answer: "Dog", Category: "mammal"},
	}, pairs)
}

func TestTokenizerLoneAnswerTakesNextToken(t *testing.T) {
	// The waiting answer takes the first token of the next line and the
	// rest of that line is read as usual
	pairs := readPairs(t, "<Cat>\n<mammal> <Dog> <mammal>\n")

	assert.Equal(t, []Pair{
		{Answer: "Cat", Category: "mammal"},
		{Answer: "Dog", Category: "mammal"},
	}, pairs)
}

func TestTokenizerDecodesEntities(t *testing.T) {
	pairs := readPairs(t, "<Simon_&amp;_Garfunkel> <wikicat_Folk_duos>\n")

	require.Len(t, pairs, 1)
	assert.Equal(t, "Simon & Garfunkel", pairs[0].Answer)
}

func TestTokenizerEachStopsOnError(t *testing.T) {
	input := "<Cat> <mammal> <pet>\n<Dog> <mammal>\n"
	stop := errors.New("stop")

	seen := 0
	err := NewTokenizer().Each(strings.NewReader(input), func(p Pair) error {
		seen++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen, "scan should stop after the first pair")
}

func TestPairValidate(t *testing.T) {
	assert.NoError(t, Pair{Answer: "Cat", Category: "mammal"}.Validate())
	assert.Error(t, Pair{Answer: " ", Category: "mammal"}.Validate())
	assert.Error(t, Pair{Answer: "Cat"}.Validate())
}
