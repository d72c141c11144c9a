package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
)

// ProgressStore defines the interface for per-(user, item) progress persistence.
type ProgressStore interface {
	// Get retrieves the progress record for a user and item.
	// Returns ErrProgressNotFound if the user has never reviewed the item.
	// NOTE: This method does NOT lock the row; use GetForUpdate inside a
	// transaction before writing.
	Get(ctx context.Context, userID uuid.UUID, itemID string) (*domain.ProgressRecord, error)

	// GetForUpdate retrieves the progress record and locks the (user, item) key
	// until the surrounding transaction ends, so that concurrent writers of the
	// same key serialize. It must be called on a store obtained from WithTx.
	// Returns ErrProgressNotFound if the user has never reviewed the item; the
	// key stays locked against concurrent first inserts regardless.
	GetForUpdate(ctx context.Context, userID uuid.UUID, itemID string) (*domain.ProgressRecord, error)

	// Upsert writes the record, inserting it on first review and replacing the
	// stored fields afterwards. The record is validated first.
	Upsert(ctx context.Context, rec *domain.ProgressRecord) error

	// ListByUser returns every progress record of the user ordered by item ID.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error)

	// ListDue returns up to limit records whose due date is at or before now,
	// earliest due first.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ProgressRecord, error)

	// CountByUser returns the number of distinct items the user has reviewed.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// CountMastered returns the number of items whose last review quality was
	// at least domain.MasteredQuality.
	CountMastered(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
