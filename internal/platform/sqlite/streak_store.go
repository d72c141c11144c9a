package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/store"
)

// StreakStore implements store.StreakStore on the users table.
type StreakStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStreakStore creates a SQLite StreakStore.
func NewStreakStore(db store.DBTX, logger *slog.Logger) *StreakStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreakStore{db: db, logger: logger.With(slog.String("component", "streak_store"))}
}

var _ store.StreakStore = (*StreakStore)(nil)

// WithTx implements store.StreakStore.WithTx
func (s *StreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return &StreakStore{db: tx, logger: s.logger}
}

// Get implements store.StreakStore.Get
func (s *StreakStore) Get(ctx context.Context, userID uuid.UUID) (domain.StreakState, error) {
	var (
		state domain.StreakState
		last  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT streak, last_study_date FROM users WHERE id = ?`, userID,
	).Scan(&state.Streak, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StreakState{}, store.ErrUserNotFound
		}
		return domain.StreakState{}, store.NewStoreError("streak", "get", "failed to get streak", MapError(err))
	}

	if last.Valid && last.String != "" {
		day, err := time.Parse(domain.DateLayout, last.String)
		if err != nil {
			return domain.StreakState{}, store.NewStoreError("streak", "get",
				fmt.Sprintf("invalid stored study date %q", last.String), err)
		}
		state.LastStudyDate = &day
	}
	return state, nil
}

// GetForUpdate implements store.StreakStore.GetForUpdate. The IMMEDIATE
// transaction already holds the database write lock.
func (s *StreakStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (domain.StreakState, error) {
	return s.Get(ctx, userID)
}

// Save implements store.StreakStore.Save
func (s *StreakStore) Save(ctx context.Context, userID uuid.UUID, state domain.StreakState) error {
	var last sql.NullString
	if state.LastStudyDate != nil {
		last = sql.NullString{String: state.LastStudyDate.Format(domain.DateLayout), Valid: true}
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET streak = ?, last_study_date = ? WHERE id = ?`,
		state.Streak, last, userID)
	if err != nil {
		s.logger.Error("failed to save streak",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("streak", "save", "failed to save streak", MapError(err))
	}
	return checkRowsAffected(result, store.ErrUserNotFound)
}
