package twentyq

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/twentyq/pkg/twentyq/inference"
	"github.com/cognicore/twentyq/pkg/twentyq/store"
)

// Player-facing messages
const (
	msgGuess      = "Is the word that you were thinking of: %s"
	msgQuestion   = "Does it fit in the category %s?"
	msgWin        = "The computer wins again!!!"
	msgWrongGuess = "That is unfortunate.  Let me think."
	msgStumped    = "Hmm I am stumped. What was your word?"
	msgAlmost     = "I was about to get to that one.."
	msgUnknown    = "It seems as though that word was not in the database."
)

// DefaultMaxTurns is the classic game length, used when the engine
// reports no limit of its own
const DefaultMaxTurns = 20

// Asker is how the game talks to the player
type Asker interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	Ask(ctx context.Context, prompt string) (string, error)
}

// Recorder persists finished games
type Recorder interface {
	RecordGame(ctx context.Context, g store.GameRecord) error
}

// Game runs one round of twenty questions against an engine
type Game struct {
	engine   inference.Engine
	asker    Asker
	out      io.Writer
	recorder Recorder
	log      *zap.Logger
	maxTurns int
	corpus   string
	entropy  *ulid.MonotonicEntropy
	now      func() time.Time
}

// Options configures a Game
type Options struct {
	Engine   inference.Engine
	Asker    Asker
	Out      io.Writer // messages that are not prompts; defaults to io.Discard
	Recorder Recorder  // optional
	Logger   *zap.Logger
	Corpus   string // name stored with the game record
}

// New creates a Game with the given dependencies
func New(opts Options) *Game {
	g := &Game{
		engine:   opts.Engine,
		asker:    opts.Asker,
		out:      opts.Out,
		recorder: opts.Recorder,
		log:      opts.Logger,
		maxTurns: opts.Engine.MaxTurns(),
		corpus:   opts.Corpus,
		entropy:  ulid.Monotonic(rand.Reader, 0),
		now:      time.Now,
	}
	if g.out == nil {
		g.out = io.Discard
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	if g.maxTurns <= 0 {
		g.maxTurns = DefaultMaxTurns
	}
	return g
}

// Outcome describes how a game ended
type Outcome struct {
	ID         string
	Won        bool
	Guess      string // the winning guess
	Turns      int
	Revealed   string // the player's word after a loss
	Known      bool   // whether Revealed is in the corpus
	Mismatches []inference.Mismatch
	Transcript []store.Turn
}

// Play runs turns until the engine guesses right, runs out of
// candidates or reaches the turn limit. Asker errors abort the game.
func (g *Game) Play(ctx context.Context) (Outcome, error) {
	started := g.now()
	out := Outcome{ID: ulid.MustNew(ulid.Timestamp(started), g.entropy).String()}
	log := g.log.With(zap.String("game", out.ID))

	finished := false
	for turn := 1; turn <= g.maxTurns && !finished; turn++ {
		out.Turns = turn
		move := g.engine.NextQuestion(turn)

		switch move.Kind {
		case inference.MoveGuess:
			prompt := fmt.Sprintf(msgGuess, move.Text)
			yes, err := g.asker.Confirm(ctx, prompt)
			if err != nil {
				return out, fmt.Errorf("turn %d: %w", turn, err)
			}
			out.Transcript = append(out.Transcript, store.Turn{Number: turn, Guess: true, Prompt: prompt, Response: yes})
			if yes {
				out.Won = true
				out.Guess = move.Text
				fmt.Fprintln(g.out, msgWin)
				finished = true
				break
			}
			fmt.Fprintln(g.out, msgWrongGuess)
			g.engine.RejectGuess(move.Text)

		case inference.MoveExhausted:
			log.Debug("candidates exhausted", zap.Int("turn", turn))
			finished = true

		default:
			prompt := fmt.Sprintf(msgQuestion, move.Text)
			yes, err := g.asker.Confirm(ctx, prompt)
			if err != nil {
				return out, fmt.Errorf("turn %d: %w", turn, err)
			}
			out.Transcript = append(out.Transcript, store.Turn{Number: turn, Prompt: prompt, Response: yes})
			if err := g.engine.Answer(move.Text, yes, turn); err != nil {
				return out, fmt.Errorf("turn %d: %w", turn, err)
			}
		}
	}

	if !out.Won {
		if err := g.giveUp(ctx, &out); err != nil {
			return out, err
		}
	}

	log.Info("game finished",
		zap.Bool("won", out.Won),
		zap.Int("turns", out.Turns),
		zap.Int("mismatches", len(out.Mismatches)))

	g.record(ctx, started, out)
	return out, nil
}

func (g *Game) giveUp(ctx context.Context, out *Outcome) error {
	word, err := g.asker.Ask(ctx, msgStumped)
	if err != nil {
		return fmt.Errorf("give up: %w", err)
	}
	out.Revealed = word

	if !g.engine.Contains(word) {
		fmt.Fprintln(g.out, msgUnknown)
		return nil
	}
	out.Known = true

	mismatches, err := g.engine.FindDifference(word)
	if err != nil {
		return fmt.Errorf("give up: %w", err)
	}
	out.Mismatches = mismatches
	if len(mismatches) == 0 {
		fmt.Fprintln(g.out, msgAlmost)
		return nil
	}
	for _, m := range mismatches {
		fmt.Fprintln(g.out, m.String())
	}
	return nil
}

// record stores the game; a failing recorder is logged, not fatal.
func (g *Game) record(ctx context.Context, started time.Time, out Outcome) {
	if g.recorder == nil {
		return
	}

	rec := store.GameRecord{
		ID:         out.ID,
		Corpus:     g.corpus,
		StartedAt:  started,
		EndedAt:    g.now(),
		Outcome:    store.OutcomeStumped,
		Turns:      out.Turns,
		Guess:      out.Guess,
		Revealed:   out.Revealed,
		Transcript: out.Transcript,
	}
	if out.Won {
		rec.Outcome = store.OutcomeWon
	}
	for _, m := range out.Mismatches {
		rec.Mismatches = append(rec.Mismatches, m.Question)
	}

	if err := g.recorder.RecordGame(ctx, rec); err != nil {
		g.log.Warn("failed to record game", zap.String("game", out.ID), zap.Error(err))
	}
}
