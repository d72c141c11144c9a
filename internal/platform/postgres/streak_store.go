package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/store"
)

// PostgresStreakStore implements store.StreakStore on the streak columns of
// the users table.
type PostgresStreakStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStreakStore creates a new PostgreSQL implementation of the StreakStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresStreakStore(db store.DBTX, logger *slog.Logger) *PostgresStreakStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStreakStore{
		db:     db,
		logger: logger.With(slog.String("component", "streak_store")),
	}
}

// Ensure PostgresStreakStore implements store.StreakStore interface
var _ store.StreakStore = (*PostgresStreakStore)(nil)

// WithTx implements store.StreakStore.WithTx
func (s *PostgresStreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return &PostgresStreakStore{db: tx, logger: s.logger}
}

// Get implements store.StreakStore.Get
func (s *PostgresStreakStore) Get(ctx context.Context, userID uuid.UUID) (domain.StreakState, error) {
	return s.get(ctx, `SELECT streak, last_study_date FROM users WHERE id = $1`, userID)
}

// GetForUpdate implements store.StreakStore.GetForUpdate
func (s *PostgresStreakStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (domain.StreakState, error) {
	return s.get(ctx, `SELECT streak, last_study_date FROM users WHERE id = $1 FOR UPDATE`, userID)
}

func (s *PostgresStreakStore) get(ctx context.Context, query string, userID uuid.UUID) (domain.StreakState, error) {
	var (
		state domain.StreakState
		last  sql.NullTime
	)
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&state.Streak, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StreakState{}, store.ErrUserNotFound
		}
		return domain.StreakState{}, store.NewStoreError("streak", "get", "failed to get streak", MapError(err))
	}
	if last.Valid {
		y, m, d := last.Time.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		state.LastStudyDate = &day
	}
	return state, nil
}

// Save implements store.StreakStore.Save
func (s *PostgresStreakStore) Save(ctx context.Context, userID uuid.UUID, state domain.StreakState) error {
	var last any
	if state.LastStudyDate != nil {
		last = state.LastStudyDate.Format(domain.DateLayout)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET streak = $2, last_study_date = $3::date WHERE id = $1`,
		userID, state.Streak, last)
	if err != nil {
		s.logger.Error("failed to save streak",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("streak", "save", "failed to save streak", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}
