//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/kioku/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

var migrateOnce sync.Once

// GetTestDatabaseURL returns DATABASE_URL, falling back to KIOKU_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("KIOKU_TEST_DB_URL")
}

// GetTestDBWithT returns a migrated database connection and registers its
// cleanup. The test is skipped when no database URL is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or KIOKU_TEST_DB_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "Failed to open database connection")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "Database ping failed")

	var migrateErr error
	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, nil)
	})
	require.NoError(t, migrateErr, "Failed to run migrations")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	return db
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// CreateTestUser inserts a user row and returns its ID.
func CreateTestUser(t *testing.T, tx *sql.Tx) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := tx.Exec(`INSERT INTO users (id) VALUES ($1)`, id)
	require.NoError(t, err, "Failed to insert test user")
	return id
}

// CreateTestItem inserts a catalog item without a deck and returns its ID.
func CreateTestItem(t *testing.T, tx *sql.Tx) string {
	t.Helper()
	id := "item-" + uuid.NewString()
	_, err := tx.Exec(`INSERT INTO items (id) VALUES ($1)`, id)
	require.NoError(t, err, "Failed to insert test item")
	return id
}

// CreateTestDeck inserts a deck and returns its ID.
func CreateTestDeck(t *testing.T, tx *sql.Tx, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := tx.Exec(`INSERT INTO decks (id, name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err, "Failed to insert test deck")
	return id
}
