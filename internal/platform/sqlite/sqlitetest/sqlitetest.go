// Package sqlitetest opens migrated throwaway SQLite databases for tests.
package sqlitetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// NewDB returns a migrated database in a per-test temporary directory. It is
// closed when the test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "kioku.db"))
	require.NoError(t, err, "Failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(ctx, db, nil), "Failed to run migrations")
	return db
}

// InsertItems adds catalog items without a deck.
func InsertItems(t testing.TB, db *sql.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := db.Exec(`INSERT INTO items (id, created_at) VALUES (?, ?)`, id, time.Now().UnixMilli())
		require.NoError(t, err, "Failed to insert item %s", id)
	}
}

// InsertDeck adds a deck and returns its ID.
func InsertDeck(t testing.TB, db *sql.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO decks (id, name, created_at) VALUES (?, ?, ?)`, id, name, time.Now().UnixMilli())
	require.NoError(t, err, "Failed to insert deck")
	return id
}

// InsertUser adds a user row and returns its ID.
func InsertUser(t testing.TB, db *sql.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO users (id, created_at) VALUES (?, ?)`, id, time.Now().UnixMilli())
	require.NoError(t, err, "Failed to insert user")
	return id
}
