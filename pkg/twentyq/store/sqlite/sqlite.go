package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/twentyq/pkg/twentyq/internalerr"
	"github.com/cognicore/twentyq/pkg/twentyq/store"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS corpora (
	name TEXT PRIMARY KEY,
	imported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS corpus_pairs (
	corpus TEXT NOT NULL,
	seq INTEGER NOT NULL,
	answer TEXT NOT NULL,
	category TEXT NOT NULL,
	PRIMARY KEY(corpus, seq),
	FOREIGN KEY(corpus) REFERENCES corpora(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	corpus TEXT,
	started_at TEXT NOT NULL,
	ended_at TEXT,
	outcome TEXT NOT NULL,
	turns INTEGER NOT NULL DEFAULT 0,
	guess TEXT,
	revealed TEXT,
	transcript TEXT,
	mismatches TEXT
);

CREATE INDEX IF NOT EXISTS games_started_at ON games(started_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ImportCorpus replaces the named corpus inside one transaction
func (s *sqliteStore) ImportCorpus(ctx context.Context, corpus string, pairs []store.Pair) (int, error) {
	corpus = strings.TrimSpace(corpus)
	if corpus == "" {
		return 0, fmt.Errorf("sqlite: corpus name: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Pragmas are per connection, so do not rely on the cascade here
	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_pairs WHERE corpus=?`, corpus); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM corpora WHERE name=?`, corpus); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO corpora (name, imported_at) VALUES (?, ?)`,
		corpus, time.Now().UTC().Format(timeLayout),
	); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO corpus_pairs (corpus, seq, answer, category) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, p := range pairs {
		if p.Answer == "" || p.Category == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, corpus, n, p.Answer, p.Category); err != nil {
			return 0, err
		}
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("sqlite: corpus %q: %w", corpus, internalerr.ErrEmptyCorpus)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// LoadCorpus returns the pairs of a corpus in import order
func (s *sqliteStore) LoadCorpus(ctx context.Context, corpus string) ([]store.Pair, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM corpora WHERE name=?`, corpus).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: corpus %q: %w", corpus, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT answer, category
FROM corpus_pairs
WHERE corpus = ?
ORDER BY seq;
`, corpus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []store.Pair
	for rows.Next() {
		var p store.Pair
		if err := rows.Scan(&p.Answer, &p.Category); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// Corpora lists imported corpora sorted by name
func (s *sqliteStore) Corpora(ctx context.Context) ([]store.CorpusInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.name, c.imported_at, COUNT(p.seq), COUNT(DISTINCT p.answer)
FROM corpora c
LEFT JOIN corpus_pairs p ON p.corpus = c.name
GROUP BY c.name, c.imported_at
ORDER BY c.name;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []store.CorpusInfo
	for rows.Next() {
		var info store.CorpusInfo
		var importedAt string
		if err := rows.Scan(&info.Name, &importedAt, &info.Pairs, &info.Answers); err != nil {
			return nil, err
		}
		if info.ImportedAt, err = parseTime(importedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// RecordGame inserts or updates a finished game
func (s *sqliteStore) RecordGame(ctx context.Context, g store.GameRecord) error {
	if g.ID == "" {
		return fmt.Errorf("sqlite: game id: %w", internalerr.ErrInvalidInput)
	}

	transcriptJSON, err := json.Marshal(g.Transcript)
	if err != nil {
		return err
	}
	mismatchesJSON, err := json.Marshal(g.Mismatches)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO games (id, corpus, started_at, ended_at, outcome, turns, guess, revealed, transcript, mismatches)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	corpus=excluded.corpus,
	started_at=excluded.started_at,
	ended_at=excluded.ended_at,
	outcome=excluded.outcome,
	turns=excluded.turns,
	guess=excluded.guess,
	revealed=excluded.revealed,
	transcript=excluded.transcript,
	mismatches=excluded.mismatches;
`,
		g.ID,
		g.Corpus,
		g.StartedAt.UTC().Format(timeLayout),
		g.EndedAt.UTC().Format(timeLayout),
		g.Outcome,
		g.Turns,
		g.Guess,
		g.Revealed,
		string(transcriptJSON),
		string(mismatchesJSON),
	)
	return err
}

// RecentGames returns up to limit games, newest first
func (s *sqliteStore) RecentGames(ctx context.Context, limit int) ([]store.GameRecord, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, corpus, started_at, ended_at, outcome, turns, guess, revealed, transcript, mismatches
FROM games
ORDER BY started_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []store.GameRecord
	for rows.Next() {
		var g store.GameRecord
		var startedAt, endedAt, transcriptJSON, mismatchesJSON string
		if err := rows.Scan(&g.ID, &g.Corpus, &startedAt, &endedAt, &g.Outcome, &g.Turns,
			&g.Guess, &g.Revealed, &transcriptJSON, &mismatchesJSON); err != nil {
			return nil, err
		}
		if g.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if g.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(transcriptJSON), &g.Transcript); err != nil {
			return nil, fmt.Errorf("game %s transcript: %w", g.ID, err)
		}
		if err := json.Unmarshal([]byte(mismatchesJSON), &g.Mismatches); err != nil {
			return nil, fmt.Errorf("game %s mismatches: %w", g.ID, err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
