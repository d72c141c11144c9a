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

const progressColumns = `user_id, item_id, interval_days, ease_factor, due_date,
	review_count, correct_count, incorrect_count, last_review_date,
	last_review_quality, status, created_at, updated_at`

// ProgressStore implements store.ProgressStore on SQLite.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProgressStore creates a SQLite ProgressStore.
// If logger is nil, a default logger will be used.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{db: db, logger: logger.With(slog.String("component", "progress_store"))}
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *ProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &ProgressStore{db: tx, logger: s.logger}
}

// Get implements store.ProgressStore.Get
func (s *ProgressStore) Get(ctx context.Context, userID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	rec, err := scanProgress(s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM user_item_progress WHERE user_id = ? AND item_id = ?`,
		userID, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		s.logger.Error("failed to get progress record",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("progress", "get", "failed to get progress record", MapError(err))
	}
	return rec, nil
}

// GetForUpdate implements store.ProgressStore.GetForUpdate. Transactions on
// this backend begin IMMEDIATE, so the write lock is already held by the
// time the row is read.
func (s *ProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	return s.Get(ctx, userID, itemID)
}

// Upsert implements store.ProgressStore.Upsert
func (s *ProgressStore) Upsert(ctx context.Context, rec *domain.ProgressRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_item_progress (`+progressColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, item_id) DO UPDATE SET
	interval_days = excluded.interval_days,
	ease_factor = excluded.ease_factor,
	due_date = excluded.due_date,
	review_count = excluded.review_count,
	correct_count = excluded.correct_count,
	incorrect_count = excluded.incorrect_count,
	last_review_date = excluded.last_review_date,
	last_review_quality = excluded.last_review_quality,
	status = excluded.status,
	updated_at = excluded.updated_at
`,
		rec.UserID,
		rec.ItemID,
		rec.Interval,
		rec.EaseFactor,
		toMillis(rec.DueDate),
		rec.ReviewCount,
		rec.CorrectCount,
		rec.IncorrectCount,
		nullMillis(rec.LastReviewDate),
		rec.LastReviewQuality,
		string(rec.Status),
		toMillis(rec.CreatedAt),
		toMillis(rec.UpdatedAt),
	)
	if err != nil {
		s.logger.Error("failed to upsert progress record",
			slog.String("user_id", rec.UserID.String()),
			slog.String("item_id", rec.ItemID),
			slog.String("error", err.Error()))
		return store.NewStoreError("progress", "upsert", "failed to upsert progress record", MapError(err))
	}
	return nil
}

// ListByUser implements store.ProgressStore.ListByUser
func (s *ProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error) {
	return s.list(ctx, "list",
		`SELECT `+progressColumns+` FROM user_item_progress WHERE user_id = ? ORDER BY item_id`,
		userID)
}

// ListDue implements store.ProgressStore.ListDue
func (s *ProgressStore) ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ProgressRecord, error) {
	if limit <= 0 {
		return []domain.ProgressRecord{}, nil
	}
	return s.list(ctx, "list due", `
SELECT `+progressColumns+` FROM user_item_progress
WHERE user_id = ? AND due_date <= ?
ORDER BY due_date, item_id
LIMIT ?`,
		userID, toMillis(now), limit)
}

func (s *ProgressStore) list(ctx context.Context, op, query string, args ...any) ([]domain.ProgressRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query progress records",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("progress", op, "failed to query progress records", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	records := []domain.ProgressRecord{}
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, store.NewStoreError("progress", op, "failed to scan progress record", MapError(err))
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("progress", op, "failed to iterate progress records", MapError(err))
	}
	return records, nil
}

// CountByUser implements store.ProgressStore.CountByUser
func (s *ProgressStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, "count", `SELECT COUNT(*) FROM user_item_progress WHERE user_id = ?`, userID)
}

// CountMastered implements store.ProgressStore.CountMastered
func (s *ProgressStore) CountMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, "count mastered", `
SELECT COUNT(*) FROM user_item_progress
WHERE user_id = ? AND review_count > 0 AND last_review_quality >= ?`,
		userID, domain.MasteredQuality)
}

func (s *ProgressStore) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, store.NewStoreError("progress", op, "failed to count progress records", MapError(err))
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*domain.ProgressRecord, error) {
	var (
		rec                   domain.ProgressRecord
		due, created, updated int64
		lastReview            sql.NullInt64
		status                string
	)
	err := row.Scan(
		&rec.UserID,
		&rec.ItemID,
		&rec.Interval,
		&rec.EaseFactor,
		&due,
		&rec.ReviewCount,
		&rec.CorrectCount,
		&rec.IncorrectCount,
		&lastReview,
		&rec.LastReviewQuality,
		&status,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := domain.ParseProgressStatus(status)
	if err != nil {
		return nil, err
	}
	rec.Status = parsed
	rec.DueDate = fromMillis(due)
	rec.CreatedAt = fromMillis(created)
	rec.UpdatedAt = fromMillis(updated)
	if lastReview.Valid {
		rec.LastReviewDate = fromMillis(lastReview.Int64)
	}
	return &rec, nil
}
