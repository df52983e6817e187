package store

import (
	"context"
	"time"
)

// Store is the main interface for persisting corpora and game history
type Store interface {
	Close() error

	// Corpora
	ImportCorpus(ctx context.Context, corpus string, pairs []Pair) (int, error)
	LoadCorpus(ctx context.Context, corpus string) ([]Pair, error)
	Corpora(ctx context.Context) ([]CorpusInfo, error)

	// History
	RecordGame(ctx context.Context, g GameRecord) error
	RecentGames(ctx context.Context, limit int) ([]GameRecord, error)
}

// Pair is one stored answer/category association
type Pair struct {
	Answer   string
	Category string
}

// CorpusInfo summarizes an imported corpus
type CorpusInfo struct {
	Name       string
	Pairs      int
	Answers    int
	ImportedAt time.Time
}

// Outcome values recorded for finished games
const (
	OutcomeWon     = "won"
	OutcomeStumped = "stumped"
)

// Turn is one prompt shown to the player and the answer given
type Turn struct {
	Number   int    `json:"turn"`
	Guess    bool   `json:"guess,omitempty"`
	Prompt   string `json:"prompt"`
	Response bool   `json:"response"`
}

// GameRecord is a finished game
type GameRecord struct {
	ID         string
	Corpus     string
	StartedAt  time.Time
	EndedAt    time.Time
	Outcome    string
	Turns      int
	Guess      string // final guess when won
	Revealed   string // word the player typed after a loss
	Transcript []Turn
	Mismatches []string
}

// DefaultHistoryLimit is used when RecentGames gets a non-positive limit
const DefaultHistoryLimit = 10
