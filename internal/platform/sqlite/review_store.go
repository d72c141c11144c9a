package sqlite

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

// ReviewStore implements store.ReviewStore on SQLite.
type ReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStore creates a SQLite ReviewStore.
func NewReviewStore(db store.DBTX, logger *slog.Logger) *ReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewStore{db: db, logger: logger.With(slog.String("component", "review_store"))}
}

var _ store.ReviewStore = (*ReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
func (s *ReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &ReviewStore{db: tx, logger: s.logger}
}

// Append implements store.ReviewStore.Append
func (s *ReviewStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO review_events (
	id, user_id, item_id, review_date, quality, elapsed_ms,
	previous_interval, new_interval, previous_ease_factor, new_ease_factor
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		event.ID,
		event.UserID,
		event.ItemID,
		toMillis(event.ReviewDate),
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
func (s *ReviewStore) ListByUserAndDateRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ReviewEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, item_id, review_date, quality, elapsed_ms,
	previous_interval, new_interval, previous_ease_factor, new_ease_factor
FROM review_events
WHERE user_id = ? AND review_date >= ? AND review_date < ?
ORDER BY review_date, id
`, userID, toMillis(from), toMillis(to))
	if err != nil {
		s.logger.Error("failed to list review events",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("review event", "list", "failed to list review events", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	events := []domain.ReviewEvent{}
	for rows.Next() {
		var (
			e          domain.ReviewEvent
			reviewDate int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.ItemID,
			&reviewDate,
			&e.Quality,
			&e.ElapsedMs,
			&e.PreviousInterval,
			&e.NewInterval,
			&e.PreviousEaseFactor,
			&e.NewEaseFactor,
		); err != nil {
			return nil, store.NewStoreError("review event", "list", "failed to scan review event", MapError(err))
		}
		e.ReviewDate = fromMillis(reviewDate)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review event", "list", "failed to iterate review events", MapError(err))
	}
	return events, nil
}

// Totals implements store.ReviewStore.Totals
func (s *ReviewStore) Totals(ctx context.Context, userID uuid.UUID) (store.ReviewTotals, error) {
	var totals store.ReviewTotals
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
	COALESCE(SUM(CASE WHEN quality >= ? THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(quality), 0)
FROM review_events
WHERE user_id = ?
`, domain.PassingQuality, userID).Scan(&totals.Reviews, &totals.Correct, &totals.QualitySum)
	if err != nil {
		return store.ReviewTotals{}, store.NewStoreError("review event", "totals", "failed to aggregate review events", MapError(err))
	}
	return totals, nil
}
