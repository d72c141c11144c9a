// Package migrate applies the embedded goose migrations of a storage backend.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

// Supported commands.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandStatus  = "status"
	CommandVersion = "version"
)

// ErrUnknownCommand is returned for commands other than the supported ones.
var ErrUnknownCommand = errors.New("unknown migration command")

// Migrator runs migrations for one database.
type Migrator struct {
	provider *goose.Provider
	logger   *slog.Logger
}

// New creates a Migrator for the migrations in fsys. fsys must contain the
// .sql files at its root.
func New(db *sql.DB, dialect goose.Dialect, fsys fs.FS, logger *slog.Logger) (*Migrator, error) {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return &Migrator{
		provider: provider,
		logger:   logger.With(slog.String("component", "migrations"), slog.String("dialect", string(dialect))),
	}, nil
}

// Run executes command. Status and version only log.
func (m *Migrator) Run(ctx context.Context, command string) error {
	log := m.logger.With(
		slog.String("correlation_id", uuid.New().String()),
		slog.String("command", command),
	)
	start := time.Now()
	log.Info("starting migration operation")

	var err error
	switch command {
	case CommandUp:
		err = m.Up(ctx)
	case CommandDown:
		err = m.down(ctx, log)
	case CommandStatus:
		err = m.status(ctx, log)
	case CommandVersion:
		var version int64
		version, err = m.provider.GetDBVersion(ctx)
		if err == nil {
			log.Info("current database version", slog.Int64("version", version))
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	log.Info("migration operation completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.Bool("success", err == nil))
	return err
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	for _, r := range results {
		m.logResult(r)
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if len(results) == 0 {
		m.logger.Debug("no pending migrations")
	}
	return nil
}

// Version returns the version of the most recently applied migration.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

func (m *Migrator) down(ctx context.Context, log *slog.Logger) error {
	result, err := m.provider.Down(ctx)
	if result != nil {
		m.logResult(result)
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	log.Info("rolled back one migration")
	return nil
}

func (m *Migrator) status(ctx context.Context, log *slog.Logger) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, s := range statuses {
		attrs := []any{
			slog.Int64("version", s.Source.Version),
			slog.String("path", s.Source.Path),
			slog.String("state", string(s.State)),
		}
		if !s.AppliedAt.IsZero() {
			attrs = append(attrs, slog.Time("applied_at", s.AppliedAt))
		}
		log.Info("migration status", attrs...)
	}
	return nil
}

func (m *Migrator) logResult(r *goose.MigrationResult) {
	if r == nil || r.Source == nil {
		return
	}
	attrs := []any{
		slog.Int64("version", r.Source.Version),
		slog.String("path", r.Source.Path),
		slog.String("direction", r.Direction),
		slog.Int64("duration_ms", r.Duration.Milliseconds()),
	}
	if r.Error != nil {
		m.logger.Error("migration failed", append(attrs, slog.String("error", r.Error.Error()))...)
		return
	}
	m.logger.Info("migration applied", attrs...)
}
