package inference

import (
	"fmt"

	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
)

// Sentinel is the move text used when no candidates remain.
const Sentinel = "EMPTY_SET"

// Engine narrows a corpus of candidates down to the one the player has in
// mind. One Engine serves exactly one game; build a new one to play again.
type Engine interface {
	// Ingest registers candidates, questions and their feature bits
	Ingest(pairs []ingest.Pair)

	// NextQuestion decides what to do on the given 1-based turn
	NextQuestion(turn int) Move

	// Answer feeds the player's response to question back into scoring
	// and prunes candidates that fall below the match threshold
	Answer(question string, response bool, turn int) error

	// RejectGuess removes a wrong guess from further consideration
	RejectGuess(name string)

	// Contains reports whether name is a known candidate
	Contains(name string) bool

	// BestGuess returns the active candidate with the highest match count
	BestGuess() string

	// FindDifference drains the asked-question log and reports every
	// answer that disagrees with the revealed candidate
	FindDifference(revealed string) ([]Mismatch, error)

	// AnswerKey lists every known candidate
	AnswerKey() []string

	// MaxTurns is the last turn of a game; NextQuestion always guesses on it
	MaxTurns() int

	// Stats summarizes the engine state
	Stats() Stats
}

// MoveKind tells the caller how to present a Move.
type MoveKind int

const (
	MoveQuestion  MoveKind = iota // ask whether the answer is in a category
	MoveGuess                     // ask the player to confirm a candidate
	MoveExhausted                 // nothing left; give up and explain
)

func (k MoveKind) String() string {
	switch k {
	case MoveQuestion:
		return "question"
	case MoveGuess:
		return "guess"
	case MoveExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("MoveKind(%d)", int(k))
	}
}

// Move is the engine's decision for one turn.
// For MoveExhausted, Text is Sentinel.
type Move struct {
	Kind MoveKind
	Text string
}

// IsGuess reports whether the move names a candidate
func (m Move) IsGuess() bool { return m.Kind == MoveGuess }

// Exchange is one logged question and the player's response
type Exchange struct {
	Question string
	Column   int
	Response bool
}

// Mismatch is a logged response that contradicts the revealed candidate
type Mismatch struct {
	Question string
	Response bool // what the player said
	Expected bool // what the corpus says
}

func (m Mismatch) String() string {
	return fmt.Sprintf("You incorrectly answered %s", m.Question)
}

// Stats is a point-in-time summary of an engine
type Stats struct {
	Candidates int
	Active     int
	Questions  int
	Pooled     int
	Asked      int
	Rows       int // matrix row capacity
	Cols       int // matrix column capacity
}
