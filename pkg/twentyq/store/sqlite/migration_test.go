package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/twentyq/pkg/twentyq/store"
)

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, initSchema(ctx, db), "initSchema iteration %d", i)
	}

	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}

	assert.Equal(t, []string{"corpora", "corpus_pairs", "games"}, tables)
}

// TestReopenPreservesData tests that reopening a database keeps corpora and history
func TestReopenPreservesData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err)

	_, err = st.ImportCorpus(ctx, "pets", []store.Pair{
		{Answer: "Cat", Category: "MAMMAL"},
		{Answer: "Fish", Category: "SWIMS"},
	})
	require.NoError(t, err)
	require.NoError(t, st.RecordGame(ctx, store.GameRecord{
		ID:        "g1",
		Corpus:    "pets",
		StartedAt: time.Now(),
		Outcome:   store.OutcomeWon,
		Guess:     "Cat",
	}))

	st.Close()

	st2, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	defer st2.Close()

	pairs, err := st2.LoadCorpus(ctx, "pets")
	require.NoError(t, err)
	assert.Len(t, pairs, 2, "corpus should be preserved")

	games, err := st2.RecentGames(ctx, 5)
	require.NoError(t, err)
	require.Len(t, games, 1, "game history should be preserved")
	assert.Equal(t, "Cat", games[0].Guess)
}

// TestOpenOverExistingTables tests that a database created by an older build
// with only the corpus tables still opens and gains the history table
func TestOpenOverExistingTables(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)

	oldSchema := `
CREATE TABLE IF NOT EXISTS corpora (
	name TEXT PRIMARY KEY,
	imported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS corpus_pairs (
	corpus TEXT NOT NULL,
	seq INTEGER NOT NULL,
	answer TEXT NOT NULL,
	category TEXT NOT NULL,
	PRIMARY KEY(corpus, seq)
);
`
	_, err = db.ExecContext(ctx, oldSchema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO corpora (name, imported_at) VALUES (?, ?)",
		"old", time.Now().UTC().Format(timeLayout))
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO corpus_pairs (corpus, seq, answer, category) VALUES (?, ?, ?, ?)",
		"old", 0, "Owl", "BIRD")
	require.NoError(t, err)
	db.Close()

	st, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err, "open over the old schema")
	defer st.Close()

	pairs, err := st.LoadCorpus(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, []store.Pair{{Answer: "Owl", Category: "BIRD"}}, pairs)

	assert.NoError(t, st.RecordGame(ctx, store.GameRecord{ID: "g1", StartedAt: time.Now(), Outcome: store.OutcomeWon}),
		"history table should exist after open")
}
