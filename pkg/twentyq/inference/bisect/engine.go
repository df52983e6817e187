package bisect

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/twentyq/pkg/twentyq/inference"
	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
	"github.com/cognicore/twentyq/pkg/twentyq/internalerr"
	"github.com/cognicore/twentyq/pkg/twentyq/matrix"
	"github.com/cognicore/twentyq/pkg/twentyq/subset"
)

// Config holds the tuning constants of one engine.
type Config struct {
	// Threshold is the minimum matches/turn ratio a candidate needs to
	// stay active after an answer.
	Threshold float64
	// MinCandidates: with fewer active candidates than this the engine
	// stops asking and guesses.
	MinCandidates int
	// MaxTurns is the turn on which the engine always guesses.
	MaxTurns int

	InitialRows int
	InitialCols int
	RowGrowth   int
	ColGrowth   int
}

// DefaultConfig returns the classic 20 questions tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.75,
		MinCandidates: 3,
		MaxTurns:      20,
		InitialRows:   500,
		InitialCols:   500,
		RowGrowth:     2,
		ColGrowth:     5,
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithNormalizer replaces the category normalizer
// (default: ingest.DefaultPrefixes, no ignore list).
func WithNormalizer(n *ingest.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

type candidate struct {
	Row     int
	Matches int
}

type question struct {
	Name  string
	Col   int
	Asked bool
}

// Engine is a single-game inference engine. It is not safe for
// concurrent use.
type Engine struct {
	cfg        Config
	grid       *matrix.Grid
	candidates *subset.Map[candidate]
	questions  map[string]*question
	order      []*question // registration order; selection tie-break
	pooled     int
	asked      []inference.Exchange
	normalizer *ingest.Normalizer
	log        *zap.Logger
}

var _ inference.Engine = (*Engine)(nil)

// New creates an empty engine
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		grid:       matrix.New(cfg.InitialRows, cfg.InitialCols, cfg.RowGrowth, cfg.ColGrowth),
		candidates: subset.New[candidate](),
		questions:  make(map[string]*question),
		normalizer: ingest.NewNormalizer(ingest.DefaultPrefixes, nil),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest registers every pair. New answers get the next free row, new
// normalized categories the next free column. Categories that normalize
// to nothing are skipped, but their answer is still registered.
func (e *Engine) Ingest(pairs []ingest.Pair) {
	skipped := 0
	for _, p := range pairs {
		answer := strings.TrimSpace(p.Answer)
		if answer == "" {
			skipped++
			continue
		}

		if !e.candidates.ContainsKey(answer) {
			row := e.candidates.FullSize()
			e.ensureCapacity(row+1, len(e.order))
			e.candidates.Put(answer, candidate{Row: row})
		}

		name := e.normalizer.Normalize(p.Category)
		if name == "" {
			skipped++
			continue
		}

		q, ok := e.questions[name]
		if !ok {
			q = &question{Name: name, Col: len(e.order)}
			e.ensureCapacity(e.candidates.FullSize(), q.Col+1)
			e.questions[name] = q
			e.order = append(e.order, q)
			e.pooled++
		}

		c, _ := e.candidates.Get(answer)
		e.grid.Set(c.Row, q.Col, true)
	}

	e.log.Info("corpus ingested",
		zap.Int("pairs", len(pairs)),
		zap.Int("skipped", skipped),
		zap.Int("candidates", e.candidates.FullSize()),
		zap.Int("questions", len(e.order)))
}

func (e *Engine) ensureCapacity(rows, cols int) {
	if e.grid.GrowTo(rows, cols) {
		e.log.Debug("feature grid grown",
			zap.Int("rows", e.grid.Rows()),
			zap.Int("cols", e.grid.Cols()))
	}
}

// NextQuestion picks the move for the given turn: the exhausted sentinel
// when nobody is left, a guess when few candidates remain or the turn
// budget is spent, otherwise the best splitting question.
func (e *Engine) NextQuestion(turn int) inference.Move {
	active := e.candidates.ActiveKeys()
	if len(active) == 0 {
		return inference.Move{Kind: inference.MoveExhausted, Text: inference.Sentinel}
	}

	if len(active) < e.cfg.MinCandidates || turn >= e.cfg.MaxTurns {
		return inference.Move{Kind: inference.MoveGuess, Text: e.BestGuess()}
	}

	q, yes := e.selectQuestion(active)
	if q == nil {
		// nothing left that splits the active set
		e.log.Debug("no splitting question", zap.Int("active", len(active)), zap.Int("pooled", e.pooled))
		return inference.Move{Kind: inference.MoveGuess, Text: e.BestGuess()}
	}

	e.log.Debug("question selected",
		zap.String("question", q.Name),
		zap.Int("turn", turn),
		zap.Int("active", len(active)),
		zap.Int("yes", yes))
	return inference.Move{Kind: inference.MoveQuestion, Text: q.Name}
}

// selectQuestion returns the pooled question whose yes-fraction over the
// active candidates is closest to one half. Distances are compared as
// |2*yes - n|, which orders exactly like |0.5 - yes/n| without rounding.
// The running best starts at a distance of one half, so a question every
// candidate agrees on is never chosen; ties keep the earlier question.
func (e *Engine) selectQuestion(active []string) (*question, int) {
	n := len(active)
	rows := make([]int, 0, n)
	for _, name := range active {
		c, _ := e.candidates.Get(name)
		rows = append(rows, c.Row)
	}

	var best *question
	bestYes := 0
	bestDist := n
	for _, q := range e.order {
		if q.Asked {
			continue
		}
		yes := 0
		for _, row := range rows {
			if e.grid.Get(row, q.Col) {
				yes++
			}
		}
		dist := 2*yes - n
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestYes, bestDist = q, yes, dist
		}
	}
	return best, bestYes
}

// Answer records the response to question on the given turn, retires the
// question, credits every active candidate whose feature agrees, and then
// refines out each candidate whose matches/turn ratio is below Threshold.
func (e *Engine) Answer(name string, response bool, turn int) error {
	if turn < 1 {
		return fmt.Errorf("answer %q on turn %d: %w", name, turn, internalerr.ErrInvalidInput)
	}
	q, ok := e.questions[name]
	if !ok || q.Asked {
		return fmt.Errorf("answer %q: question not in pool: %w", name, internalerr.ErrNotFound)
	}

	e.asked = append(e.asked, inference.Exchange{Question: q.Name, Column: q.Col, Response: response})
	q.Asked = true
	e.pooled--

	var pruned []string
	for _, cand := range e.candidates.ActiveKeys() {
		c, err := e.candidates.Ref(cand)
		if err != nil {
			return err
		}
		if e.grid.Get(c.Row, q.Col) == response {
			c.Matches++
		}
		if float64(c.Matches)/float64(turn) < e.cfg.Threshold {
			pruned = append(pruned, cand)
		}
	}
	for _, cand := range pruned {
		e.candidates.Refine(cand)
	}

	e.log.Debug("answer applied",
		zap.String("question", q.Name),
		zap.Bool("response", response),
		zap.Int("turn", turn),
		zap.Int("pruned", len(pruned)),
		zap.Int("active", e.candidates.ActiveSize()))
	return nil
}

// RejectGuess drops name from the active subset; its record stays.
func (e *Engine) RejectGuess(name string) {
	e.candidates.Refine(name)
}

// Contains reports whether name was ever ingested
func (e *Engine) Contains(name string) bool {
	return e.candidates.ContainsKey(name)
}

// BestGuess returns the active candidate with the most matches. The first
// candidate seen wins ties. Returns "" only when nothing is active.
func (e *Engine) BestGuess() string {
	best := ""
	bestMatches := -1
	for _, name := range e.candidates.ActiveKeys() {
		c, _ := e.candidates.Get(name)
		if c.Matches > bestMatches {
			best, bestMatches = name, c.Matches
		}
	}
	return best
}

// FindDifference drains the asked-question log, comparing each response
// with the revealed candidate's feature bit. An empty result means every
// answer was consistent and the corpus was simply too coarse.
func (e *Engine) FindDifference(revealed string) ([]inference.Mismatch, error) {
	c, err := e.candidates.Get(revealed)
	if err != nil {
		return nil, fmt.Errorf("find difference: %w", err)
	}

	log := e.asked
	e.asked = nil

	var out []inference.Mismatch
	for _, ex := range log {
		actual := e.grid.Get(c.Row, ex.Column)
		if actual != ex.Response {
			out = append(out, inference.Mismatch{
				Question: ex.Question,
				Response: ex.Response,
				Expected: actual,
			})
		}
	}
	return out, nil
}

// AnswerKey returns every known candidate, sorted for display
func (e *Engine) AnswerKey() []string {
	keys := e.candidates.FullKeys()
	slices.Sort(keys)
	return keys
}

// Stats summarizes the engine
func (e *Engine) Stats() inference.Stats {
	return inference.Stats{
		Candidates: e.candidates.FullSize(),
		Active:     e.candidates.ActiveSize(),
		Questions:  len(e.order),
		Pooled:     e.pooled,
		Asked:      len(e.order) - e.pooled,
		Rows:       e.grid.Rows(),
		Cols:       e.grid.Cols(),
	}
}

// MaxTurns is the turn on which NextQuestion always guesses
func (e *Engine) MaxTurns() int {
	return e.cfg.MaxTurns
}

// exchanges returns the not-yet-drained asked-question log
func (e *Engine) exchanges() []inference.Exchange {
	out := make([]inference.Exchange, len(e.asked))
	copy(out, e.asked)
	return out
}
