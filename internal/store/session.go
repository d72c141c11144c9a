package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
)

// StudySessionStore defines the interface for study session summaries.
type StudySessionStore interface {
	// Create saves a new study session.
	// Returns ErrInvalidEntity if the session is invalid or references an unknown user or deck.
	Create(ctx context.Context, session *domain.StudySession) error

	// Get retrieves a study session by ID.
	// Returns ErrSessionNotFound if it does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.StudySession, error)

	// CountByUser returns the number of sessions the user has submitted.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new StudySessionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StudySessionStore
}
