package postgres

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

// PostgresProgressStore implements store.ProgressStore on the
// user_item_progress table.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{db: tx, logger: s.logger}
}

// Get implements store.ProgressStore.Get
func (s *PostgresProgressStore) Get(ctx context.Context, userID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM user_item_progress WHERE user_id = $1 AND item_id = $2`
	return s.getOne(ctx, query, userID, itemID)
}

// GetForUpdate implements store.ProgressStore.GetForUpdate.
// A transaction-scoped advisory lock on the key serializes writers even
// before the row exists; the row lock covers writers that skip the advisory
// lock.
func (s *PostgresProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	if _, err := s.db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text || '/' || $2::text, 0))`,
		userID.String(), itemID,
	); err != nil {
		s.logger.Error("failed to lock progress key",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("progress", "lock", "failed to lock progress key", MapError(err))
	}

	query := `SELECT ` + progressColumns + ` FROM user_item_progress
		WHERE user_id = $1 AND item_id = $2 FOR UPDATE`
	return s.getOne(ctx, query, userID, itemID)
}

func (s *PostgresProgressStore) getOne(ctx context.Context, query string, userID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	rec, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, itemID))
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

// Upsert implements store.ProgressStore.Upsert
func (s *PostgresProgressStore) Upsert(ctx context.Context, rec *domain.ProgressRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_item_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			due_date = EXCLUDED.due_date,
			review_count = EXCLUDED.review_count,
			correct_count = EXCLUDED.correct_count,
			incorrect_count = EXCLUDED.incorrect_count,
			last_review_date = EXCLUDED.last_review_date,
			last_review_quality = EXCLUDED.last_review_quality,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		rec.UserID,
		rec.ItemID,
		rec.Interval,
		rec.EaseFactor,
		rec.DueDate.UTC(),
		rec.ReviewCount,
		rec.CorrectCount,
		rec.IncorrectCount,
		nullTime(rec.LastReviewDate),
		rec.LastReviewQuality,
		string(rec.Status),
		rec.CreatedAt.UTC(),
		rec.UpdatedAt.UTC(),
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
func (s *PostgresProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM user_item_progress
		WHERE user_id = $1 ORDER BY item_id`
	return s.list(ctx, "list", query, userID)
}

// ListDue implements store.ProgressStore.ListDue
func (s *PostgresProgressStore) ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ProgressRecord, error) {
	if limit <= 0 {
		return []domain.ProgressRecord{}, nil
	}
	query := `SELECT ` + progressColumns + ` FROM user_item_progress
		WHERE user_id = $1 AND due_date <= $2
		ORDER BY due_date, item_id
		LIMIT $3`
	return s.list(ctx, "list due", query, userID, now.UTC(), limit)
}

func (s *PostgresProgressStore) list(ctx context.Context, op, query string, args ...any) ([]domain.ProgressRecord, error) {
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
func (s *PostgresProgressStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, "count", `SELECT COUNT(*) FROM user_item_progress WHERE user_id = $1`, userID)
}

// CountMastered implements store.ProgressStore.CountMastered
func (s *PostgresProgressStore) CountMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, "count mastered",
		`SELECT COUNT(*) FROM user_item_progress
		WHERE user_id = $1 AND review_count > 0 AND last_review_quality >= $2`,
		userID, domain.MasteredQuality)
}

func (s *PostgresProgressStore) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, store.NewStoreError("progress", op, "failed to count progress records", MapError(err))
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*domain.ProgressRecord, error) {
	var (
		rec        domain.ProgressRecord
		lastReview sql.NullTime
		status     string
	)
	err := row.Scan(
		&rec.UserID,
		&rec.ItemID,
		&rec.Interval,
		&rec.EaseFactor,
		&rec.DueDate,
		&rec.ReviewCount,
		&rec.CorrectCount,
		&rec.IncorrectCount,
		&lastReview,
		&rec.LastReviewQuality,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := domain.ParseProgressStatus(status)
	if err != nil {
		return nil, err
	}
	rec.Status = parsed
	if lastReview.Valid {
		rec.LastReviewDate = lastReview.Time.UTC()
	}
	rec.DueDate = rec.DueDate.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
