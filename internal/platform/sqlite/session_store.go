package sqlite

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

// StudySessionStore implements store.StudySessionStore on SQLite.
type StudySessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStudySessionStore creates a SQLite StudySessionStore.
func NewStudySessionStore(db store.DBTX, logger *slog.Logger) *StudySessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StudySessionStore{db: db, logger: logger.With(slog.String("component", "study_session_store"))}
}

var _ store.StudySessionStore = (*StudySessionStore)(nil)

// WithTx implements store.StudySessionStore.WithTx
func (s *StudySessionStore) WithTx(tx *sql.Tx) store.StudySessionStore {
	return &StudySessionStore{db: tx, logger: s.logger}
}

// Create implements store.StudySessionStore.Create
func (s *StudySessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var deckID uuid.NullUUID
	if session.DeckID != nil {
		deckID = uuid.NullUUID{UUID: *session.DeckID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO study_sessions (
	id, user_id, deck_id, start_time, end_time, review_count, correct_count, study_mode
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		session.ID,
		session.UserID,
		deckID,
		toMillis(session.StartTime),
		toMillis(session.EndTime),
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
func (s *StudySessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	var (
		session    domain.StudySession
		deckID     uuid.NullUUID
		start, end int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_id, deck_id, start_time, end_time, review_count, correct_count, study_mode
FROM study_sessions
WHERE id = ?
`, id).Scan(
		&session.ID,
		&session.UserID,
		&deckID,
		&start,
		&end,
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
	session.StartTime = fromMillis(start)
	session.EndTime = fromMillis(end)
	return &session, nil
}

// CountByUser implements store.StudySessionStore.CountByUser
func (s *StudySessionStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM study_sessions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, store.NewStoreError("study session", "count", "failed to count study sessions", MapError(err))
	}
	return n, nil
}
