package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/phrazzld/kioku/internal/config"
	"github.com/phrazzld/kioku/internal/platform/migrate"
	"github.com/phrazzld/kioku/internal/platform/postgres"
	"github.com/phrazzld/kioku/internal/platform/sqlite"
)

// Supported values of database.driver.
const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// openDatabase opens and pings the configured database.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	switch cfg.Driver {
	case driverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		logger.Info("database connection established", "driver", cfg.Driver)
		return db, nil

	case driverPostgres:
		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("database connection established",
			"driver", cfg.Driver,
			"max_open_conns", cfg.MaxOpenConns)
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// runMigrations executes a migration command against the embedded schema of
// the configured backend.
func runMigrations(ctx context.Context, db *sql.DB, driver, command string, logger *slog.Logger) error {
	var (
		m   *migrate.Migrator
		err error
	)
	switch driver {
	case driverSQLite:
		m, err = sqlite.NewMigrator(db, logger)
	case driverPostgres:
		m, err = postgres.NewMigrator(db, logger)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Run(ctx, command); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
