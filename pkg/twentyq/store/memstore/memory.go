package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/twentyq/pkg/twentyq/internalerr"
	"github.com/cognicore/twentyq/pkg/twentyq/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-off sessions that do not need a database file.
type Store struct {
	mu      sync.RWMutex
	corpora map[string]corpus
	games   []store.GameRecord
	now     func() time.Time
}

type corpus struct {
	pairs      []store.Pair
	importedAt time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		corpora: make(map[string]corpus),
		now:     time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ImportCorpus replaces the named corpus. Pairs with an empty answer or
// category are skipped; the number kept is returned.
func (s *Store) ImportCorpus(ctx context.Context, name string, pairs []store.Pair) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("memstore: corpus name: %w", internalerr.ErrInvalidInput)
	}

	kept := make([]store.Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.Answer == "" || p.Category == "" {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return 0, fmt.Errorf("memstore: corpus %q: %w", name, internalerr.ErrEmptyCorpus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpora[name] = corpus{pairs: kept, importedAt: s.now().UTC()}
	return len(kept), nil
}

// LoadCorpus returns the pairs of a corpus in import order.
func (s *Store) LoadCorpus(ctx context.Context, name string) ([]store.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.corpora[name]
	if !ok {
		return nil, fmt.Errorf("memstore: corpus %q: %w", name, internalerr.ErrNotFound)
	}
	return append([]store.Pair(nil), c.pairs...), nil
}

// Corpora lists imported corpora sorted by name.
func (s *Store) Corpora(ctx context.Context) ([]store.CorpusInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.CorpusInfo, 0, len(s.corpora))
	for name, c := range s.corpora {
		answers := make(map[string]struct{})
		for _, p := range c.pairs {
			answers[p.Answer] = struct{}{}
		}
		out = append(out, store.CorpusInfo{
			Name:       name,
			Pairs:      len(c.pairs),
			Answers:    len(answers),
			ImportedAt: c.importedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RecordGame appends a finished game to the history.
func (s *Store) RecordGame(ctx context.Context, g store.GameRecord) error {
	if g.ID == "" {
		return fmt.Errorf("memstore: game id: %w", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = append(s.games, copyGame(g))
	return nil
}

// RecentGames returns up to limit games, newest first.
func (s *Store) RecentGames(ctx context.Context, limit int) ([]store.GameRecord, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]store.GameRecord, len(s.games))
	copy(games, s.games)
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].StartedAt.After(games[j].StartedAt)
	})
	if len(games) > limit {
		games = games[:limit]
	}

	out := make([]store.GameRecord, len(games))
	for i, g := range games {
		out[i] = copyGame(g)
	}
	return out, nil
}

func copyGame(g store.GameRecord) store.GameRecord {
	out := g
	out.Transcript = append([]store.Turn(nil), g.Transcript...)
	out.Mismatches = append([]string(nil), g.Mismatches...)
	return out
}
