package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/store"
)

// PostgresReviewStore implements store.ReviewStore on the review_events table.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the ReviewStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{db: tx, logger: s.logger}
}

// Append implements store.ReviewStore.Append
func (s *PostgresReviewStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_events (
			id, user_id, item_id, review_date, quality, elapsed_ms,
			previous_interval, new_interval, previous_ease_factor, new_ease_factor
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.ItemID,
		event.ReviewDate.UTC(),
		event.Quality,
		event.ElapsedMs,
		event.PreviousInterval,
		event.NewInterval,
		event.PreviousEaseFactor,
		event.NewEaseFactor,
	)
	if err != nil {
		s.logger.Error("failed to append review event",
			slog.String("user_id", event.UserID.String()),
			slog.String("item_id", event.ItemID),
			slog.String("error", err.Error()))
		return store.NewStoreError("review event", "append", "failed to append review event", MapError(err))
	}
	return nil
}

// ListByUserAndDateRange implements store.ReviewStore.ListByUserAndDateRange
func (s *PostgresReviewStore) ListByUserAndDateRange(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]domain.ReviewEvent, error) {
	query := `
		SELECT id, user_id, item_id, review_date, quality, elapsed_ms,
			previous_interval, new_interval, previous_ease_factor, new_ease_factor
		FROM review_events
		WHERE user_id = $1 AND review_date >= $2 AND review_date < $3
		ORDER BY review_date, id`

	rows, err := s.db.QueryContext(ctx, query, userID, from.UTC(), to.UTC())
	if err != nil {
		s.logger.Error("failed to list review events",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("review event", "list", "failed to list review events", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	events := []domain.ReviewEvent{}
	for rows.Next() {
		var e domain.ReviewEvent
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.ItemID,
			&e.ReviewDate,
			&e.Quality,
			&e.ElapsedMs,
			&e.PreviousInterval,
			&e.NewInterval,
			&e.PreviousEaseFactor,
			&e.NewEaseFactor,
		); err != nil {
			return nil, store.NewStoreError("review event", "list", "failed to scan review event", MapError(err))
		}
		e.ReviewDate = e.ReviewDate.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review event", "list", "failed to iterate review events", MapError(err))
	}
	return events, nil
}

// Totals implements store.ReviewStore.Totals
func (s *PostgresReviewStore) Totals(ctx context.Context, userID uuid.UUID) (store.ReviewTotals, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE quality >= $2),
			COALESCE(SUM(quality), 0)
		FROM review_events
		WHERE user_id = $1`

	var totals store.ReviewTotals
	err := s.db.QueryRowContext(ctx, query, userID, domain.PassingQuality).
		Scan(&totals.Reviews, &totals.Correct, &totals.QualitySum)
	if err != nil {
		return store.ReviewTotals{}, store.NewStoreError("review event", "totals", "failed to aggregate review events", MapError(err))
	}
	return totals, nil
}
