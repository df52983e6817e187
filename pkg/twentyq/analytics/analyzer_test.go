package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
)

func pairs(answer string, cats ...string) []ingest.Pair {
	out := make([]ingest.Pair, len(cats))
	for i, c := range cats {
		out[i] = ingest.Pair{Answer: answer, Category: c}
	}
	return out
}

func names(stats []CategoryStat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Name
	}
	return out
}

func TestReportCounts(t *testing.T) {
	a := NewAnalyzer(nil)
	a.Process(pairs("Cat", "wordnet mammal 101861778", "wikicat Pets", "animal"))
	a.Process(pairs("Dog", "wordnet mammal 101861778", "wikicat Pets", "animal", "animal"))
	a.Process(pairs("Fish", "water", "animal"))

	r := a.Report(DefaultThresholds())

	assert.Equal(t, 9, r.Pairs)
	assert.Equal(t, 3, r.Answers)
	// MAMMAL, PETS, ANIMAL, WATER
	assert.Equal(t, 4, r.Categories)
	assert.Equal(t, 1, r.Singletons, "only WATER is held by one answer")
}

func TestReportIgnoreCandidates(t *testing.T) {
	a := NewAnalyzer(nil)
	a.Process(pairs("Cat", "mammal", "animal"))
	a.Process(pairs("Dog", "mammal", "animal"))
	a.Process(pairs("Fish", "water", "animal"))

	r := a.Report(DefaultThresholds())

	require.Equal(t, []string{"ANIMAL"}, names(r.IgnoreCandidates))
	assert.Equal(t, 100.0, r.IgnoreCandidates[0].DFPercent)

	// A lower threshold also catches MAMMAL (2 of 3)
	r = a.Report(Thresholds{MaxDF: 0.6})
	assert.Equal(t, []string{"ANIMAL", "MAMMAL"}, names(r.IgnoreCandidates))
}

func TestReportBestSplits(t *testing.T) {
	a := NewAnalyzer(nil)
	a.Process(pairs("Cat", "mammal", "pet", "animal"))
	a.Process(pairs("Dog", "mammal", "animal"))
	a.Process(pairs("Cow", "farm", "animal"))
	a.Process(pairs("Fish", "water", "animal"))

	r := a.Report(Thresholds{Top: 2})

	require.Len(t, r.BestSplits, 2)
	// MAMMAL splits 2/4; ties on bits break by name
	assert.Equal(t, []string{"MAMMAL", "FARM"}, names(r.BestSplits))
	assert.InDelta(t, 1.0, r.BestSplits[0].SplitBits, 1e-9)
	assert.NotContains(t, names(r.BestSplits), "ANIMAL", "a category everyone shares never splits")
}

func TestReportIndistinctAndBare(t *testing.T) {
	n := ingest.NewNormalizer(ingest.DefaultPrefixes, []string{"entity"})
	a := NewAnalyzer(n)
	a.Process(pairs("Crow", "bird", "black"))
	a.Process(pairs("Raven", "black", "bird"))
	a.Process(pairs("Swan", "bird", "white"))
	a.Process(pairs("Rock", "wordnet entity 100001740"))

	r := a.Report(DefaultThresholds())

	assert.Equal(t, [][]string{{"Crow", "Raven"}}, r.Indistinct)
	assert.Equal(t, []string{"Rock"}, r.Bare)
}

func TestReportEmpty(t *testing.T) {
	r := NewAnalyzer(nil).Report(DefaultThresholds())

	assert.Zero(t, r.Answers)
	assert.Nil(t, r.IgnoreCandidates)
	assert.Nil(t, r.BestSplits)
}

func TestBinaryEntropy(t *testing.T) {
	assert.Zero(t, binaryEntropy(0), "certain outcomes carry no information")
	assert.Zero(t, binaryEntropy(1))
	assert.InDelta(t, 1.0, binaryEntropy(0.5), 1e-9)
	assert.InDelta(t, binaryEntropy(0.25), binaryEntropy(0.75), 1e-12)
}
