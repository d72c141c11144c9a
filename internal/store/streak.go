package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
)

// StreakStore persists the per-user study streak.
type StreakStore interface {
	// Get returns the user's streak without locking.
	// Returns ErrUserNotFound if the user does not exist.
	Get(ctx context.Context, userID uuid.UUID) (domain.StreakState, error)

	// GetForUpdate returns the user's streak and locks it until the surrounding
	// transaction ends. Returns ErrUserNotFound if the user does not exist.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (domain.StreakState, error)

	// Save stores the user's streak.
	// Returns ErrUserNotFound if the user does not exist.
	Save(ctx context.Context, userID uuid.UUID, state domain.StreakState) error

	// WithTx returns a new StreakStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StreakStore
}
