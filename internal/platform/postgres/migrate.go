package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/kioku/internal/platform/migrate"
	"github.com/phrazzld/kioku/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// NewMigrator returns a migrator for the embedded PostgreSQL schema.
func NewMigrator(db *sql.DB, logger *slog.Logger) (*migrate.Migrator, error) {
	return migrate.New(db, goose.DialectPostgres, migrations.FS, logger)
}

// Migrate applies all pending PostgreSQL migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	m, err := NewMigrator(db, logger)
	if err != nil {
		return err
	}
	return m.Up(ctx)
}
