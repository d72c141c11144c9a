package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
)

// ReviewTotals summarises a user's review ledger.
type ReviewTotals struct {
	Reviews    int64
	Correct    int64
	QualitySum int64
}

// ReviewStore defines the interface for the append-only review ledger.
// There are no update or delete operations; events only disappear through
// cascading deletion of their user or item.
type ReviewStore interface {
	// Append inserts a new review event. An event without an ID gets one.
	// Identical content may be appended any number of times.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListByUserAndDateRange returns the user's events with from <= reviewDate < to,
	// ordered by review date ascending.
	ListByUserAndDateRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ReviewEvent, error)

	// Totals returns review, correct and quality-sum aggregates for the user.
	Totals(ctx context.Context, userID uuid.UUID) (ReviewTotals, error)

	// WithTx returns a new ReviewStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
