package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/store"
)

// PostgresStudySessionStore implements store.StudySessionStore on the
// study_sessions table.
type PostgresStudySessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudySessionStore creates a new PostgreSQL implementation of the StudySessionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresStudySessionStore(db store.DBTX, logger *slog.Logger) *PostgresStudySessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudySessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_session_store")),
	}
}

// Ensure PostgresStudySessionStore implements store.StudySessionStore interface
var _ store.StudySessionStore = (*PostgresStudySessionStore)(nil)

// WithTx implements store.StudySessionStore.WithTx
func (s *PostgresStudySessionStore) WithTx(tx *sql.Tx) store.StudySessionStore {
	return &PostgresStudySessionStore{db: tx, logger: s.logger}
}

// Create implements store.StudySessionStore.Create
func (s *PostgresStudySessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO study_sessions (
			id, user_id, deck_id, start_time, end_time, review_count, correct_count, study_mode
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		nullUUID(session.DeckID),
		session.StartTime.UTC(),
		session.EndTime.UTC(),
		session.ReviewCount,
		session.CorrectCount,
		session.StudyMode,
	)
	if err != nil {
		s.logger.Error("failed to create study session",
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("study session", "create", "failed to create study session", MapError(err))
	}
	return nil
}

// Get implements store.StudySessionStore.Get
func (s *PostgresStudySessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	query := `
		SELECT id, user_id, deck_id, start_time, end_time, review_count, correct_count, study_mode
		FROM study_sessions
		WHERE id = $1`

	var (
		session domain.StudySession
		deckID  uuid.NullUUID
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&deckID,
		&session.StartTime,
		&session.EndTime,
		&session.ReviewCount,
		&session.CorrectCount,
		&session.StudyMode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, store.NewStoreError("study session", "get", "failed to get study session", MapError(err))
	}
	if deckID.Valid {
		session.DeckID = &deckID.UUID
	}
	session.StartTime = session.StartTime.UTC()
	session.EndTime = session.EndTime.UTC()
	return &session, nil
}

// CountByUser implements store.StudySessionStore.CountByUser
func (s *PostgresStudySessionStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM study_sessions WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, store.NewStoreError("study session", "count", "failed to count study sessions", MapError(err))
	}
	return n, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
