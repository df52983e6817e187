package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
)

// Default report thresholds
const (
	// DefaultMaxDF is the share of answers above which a category is too
	// broad to be worth asking about.
	DefaultMaxDF = 0.9

	// DefaultTop is how many best-splitting categories a report lists.
	DefaultTop = 10
)

// Analyzer aggregates which answers carry which categories, after the
// same normalization the engine applies.
type Analyzer struct {
	normalizer *ingest.Normalizer
	pairs      int
	answers    map[string]map[string]struct{}
	answerSeq  []string
	categoryDF map[string]int
}

// NewAnalyzer creates an empty analyzer. A nil normalizer uses the
// default prefixes and no ignore list.
func NewAnalyzer(n *ingest.Normalizer) *Analyzer {
	if n == nil {
		n = ingest.NewNormalizer(ingest.DefaultPrefixes, nil)
	}
	return &Analyzer{
		normalizer: n,
		answers:    make(map[string]map[string]struct{}),
		categoryDF: make(map[string]int),
	}
}

// Process consumes corpus pairs. Repeated pairs count once.
func (a *Analyzer) Process(pairs []ingest.Pair) {
	for _, p := range pairs {
		answer := strings.TrimSpace(p.Answer)
		if answer == "" {
			continue
		}
		a.pairs++

		cats, ok := a.answers[answer]
		if !ok {
			cats = make(map[string]struct{})
			a.answers[answer] = cats
			a.answerSeq = append(a.answerSeq, answer)
		}

		q := a.normalizer.Normalize(p.Category)
		if q == "" {
			continue
		}
		if _, seen := cats[q]; seen {
			continue
		}
		cats[q] = struct{}{}
		a.categoryDF[q]++
	}
}

// CategoryStat describes how a category divides the answers
type CategoryStat struct {
	Name      string  `json:"name"`
	Answers   int     `json:"answers"`
	DFPercent float64 `json:"df_percent"`
	// SplitBits is the binary entropy of the yes/no split over all
	// answers: 1 for an even split, 0 when everyone agrees.
	SplitBits float64 `json:"split_bits"`
}

// Thresholds tune a report
type Thresholds struct {
	MaxDF float64 // share of answers, 0..1
	Top   int
}

// DefaultThresholds returns the thresholds used by the CLI
func DefaultThresholds() Thresholds {
	return Thresholds{MaxDF: DefaultMaxDF, Top: DefaultTop}
}

// Report summarizes how playable a corpus is
type Report struct {
	Pairs      int `json:"pairs"`
	Answers    int `json:"answers"`
	Categories int `json:"categories"`
	// Singletons are categories held by exactly one answer
	Singletons int `json:"singleton_categories"`
	// IgnoreCandidates are too broad to split anything
	IgnoreCandidates []CategoryStat `json:"ignore_candidates"`
	BestSplits       []CategoryStat `json:"best_splits"`
	// Indistinct groups answers with identical category sets; no
	// sequence of questions can tell them apart.
	Indistinct [][]string `json:"indistinct"`
	// Bare answers have no usable category at all
	Bare []string `json:"bare"`
}

// Report builds a snapshot of the accumulated statistics
func (a *Analyzer) Report(th Thresholds) Report {
	if th.MaxDF <= 0 || th.MaxDF > 1 {
		th.MaxDF = DefaultMaxDF
	}
	if th.Top <= 0 {
		th.Top = DefaultTop
	}

	r := Report{
		Pairs:      a.pairs,
		Answers:    len(a.answers),
		Categories: len(a.categoryDF),
	}
	if r.Answers == 0 {
		return r
	}

	stats := make([]CategoryStat, 0, len(a.categoryDF))
	for name, df := range a.categoryDF {
		p := float64(df) / float64(r.Answers)
		stats = append(stats, CategoryStat{
			Name:      name,
			Answers:   df,
			DFPercent: 100 * p,
			SplitBits: binaryEntropy(p),
		})
		if df == 1 {
			r.Singletons++
		}
	}

	for _, s := range stats {
		if r.Answers > 1 && float64(s.Answers)/float64(r.Answers) >= th.MaxDF {
			r.IgnoreCandidates = append(r.IgnoreCandidates, s)
		}
	}
	sort.Slice(r.IgnoreCandidates, func(i, j int) bool {
		ci, cj := r.IgnoreCandidates[i], r.IgnoreCandidates[j]
		if ci.Answers != cj.Answers {
			return ci.Answers > cj.Answers
		}
		return ci.Name < cj.Name
	})

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].SplitBits != stats[j].SplitBits {
			return stats[i].SplitBits > stats[j].SplitBits
		}
		return stats[i].Name < stats[j].Name
	})
	for _, s := range stats {
		if len(r.BestSplits) == th.Top {
			break
		}
		if s.SplitBits == 0 {
			break
		}
		r.BestSplits = append(r.BestSplits, s)
	}

	r.Indistinct, r.Bare = a.groups()
	return r
}

// groups finds answers sharing a category set, and answers with none
func (a *Analyzer) groups() ([][]string, []string) {
	byKey := make(map[string][]string)
	var keys []string
	var bare []string
	for _, answer := range a.answerSeq {
		cats := a.answers[answer]
		if len(cats) == 0 {
			bare = append(bare, answer)
			continue
		}
		names := make([]string, 0, len(cats))
		for c := range cats {
			names = append(names, c)
		}
		sort.Strings(names)
		key := strings.Join(names, "\x00")
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], answer)
	}

	var out [][]string
	for _, k := range keys {
		if g := byKey[k]; len(g) > 1 {
			sort.Strings(g)
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	sort.Strings(bare)
	return out, bare
}

func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}
