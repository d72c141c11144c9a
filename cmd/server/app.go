package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kioku/internal/config"
	"github.com/phrazzld/kioku/internal/domain/srs"
	"github.com/phrazzld/kioku/internal/platform/postgres"
	"github.com/phrazzld/kioku/internal/platform/sqlite"
	"github.com/phrazzld/kioku/internal/service/auth"
	"github.com/phrazzld/kioku/internal/service/study"
)

// application holds the shared dependencies of the server and owns their
// cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	verifier     auth.TokenVerifier
	srsService   srs.Service
	studyService study.StudyService
}

// newApplication wires stores and services for the configured backend. The
// database must already be open and migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.verifier, err = auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	loc, err := cfg.Study.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load study timezone: %w", err)
	}

	stores, err := newStores(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	app.srsService = srs.NewDefaultService()
	app.studyService = study.NewStudyService(db, stores, app.srsService, study.Options{
		Concurrency:  cfg.Study.CommitConcurrency,
		Location:     loc,
		HistoryDays:  cfg.Study.HistoryDays,
		MaxBatchSize: cfg.Study.MaxBatchSize,
		Now:          time.Now,
	}, logger)

	logger.Info("application initialized",
		"commit_concurrency", cfg.Study.CommitConcurrency,
		"timezone", loc.String())
	return app, nil
}

// newStores builds the store set of the configured backend.
func newStores(driver string, db *sql.DB, logger *slog.Logger) (study.Stores, error) {
	switch driver {
	case driverPostgres:
		return study.Stores{
			Users:    postgres.NewPostgresUserStore(db, logger),
			Catalog:  postgres.NewPostgresItemCatalog(db, logger),
			Progress: postgres.NewPostgresProgressStore(db, logger),
			Reviews:  postgres.NewPostgresReviewStore(db, logger),
			Sessions: postgres.NewPostgresStudySessionStore(db, logger),
			Streaks:  postgres.NewPostgresStreakStore(db, logger),
		}, nil
	case driverSQLite:
		return study.Stores{
			Users:    sqlite.NewUserStore(db, logger),
			Catalog:  sqlite.NewItemCatalog(db, logger),
			Progress: sqlite.NewProgressStore(db, logger),
			Reviews:  sqlite.NewReviewStore(db, logger),
			Sessions: sqlite.NewStudySessionStore(db, logger),
			Streaks:  sqlite.NewStreakStore(db, logger),
		}, nil
	default:
		return study.Stores{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
