package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/store"
)

// UserStore implements store.UserStore on SQLite.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewUserStore creates a SQLite UserStore.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{db: db, logger: logger.With(slog.String("component", "user_store")), now: time.Now}
}

var _ store.UserStore = (*UserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, logger: s.logger, now: s.now}
}

// Ensure implements store.UserStore.Ensure
func (s *UserStore) Ensure(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		userID, toMillis(s.now()))
	if err != nil {
		s.logger.Error("failed to ensure user",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("user", "ensure", "failed to register user", MapError(err))
	}
	return nil
}
