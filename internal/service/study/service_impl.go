package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/domain/srs"
	"github.com/phrazzld/kioku/internal/platform/logger"
	"github.com/phrazzld/kioku/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/phrazzld/kioku/internal/service/study")

// Defaults applied by NewStudyService for zero Options fields.
const (
	DefaultConcurrency  = 4
	DefaultMaxBatchSize = 500
	DefaultDueLimit     = 20
	MaxDueLimit         = 100
	MaxHistoryDays      = 365
)

// Stores groups the storage collaborators of the service.
type Stores struct {
	Users    store.UserStore
	Catalog  store.ItemCatalog
	Progress store.ProgressStore
	Reviews  store.ReviewStore
	Sessions store.StudySessionStore
	Streaks  store.StreakStore
}

// Options tunes the service.
type Options struct {
	// Concurrency bounds how many distinct items of one batch commit at once.
	Concurrency int
	// Location is the zone whose calendar days drive streaks and history.
	Location *time.Location
	// HistoryDays is the default review history window.
	HistoryDays int
	// MaxBatchSize rejects larger batches.
	MaxBatchSize int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Verify interface compliance at compile time
var _ StudyService = (*studyServiceImpl)(nil)

type studyServiceImpl struct {
	db     *sql.DB
	stores Stores
	srs    srs.Service
	opts   Options
	logger *slog.Logger
}

// NewStudyService creates a StudyService. The stores must be bound to db,
// which is used to open the per-review and streak transactions.
func NewStudyService(db *sql.DB, stores Stores, srsService srs.Service, opts Options, logger *slog.Logger) StudyService {
	if db == nil {
		panic("db cannot be nil")
	}
	if stores.Users == nil || stores.Catalog == nil || stores.Progress == nil ||
		stores.Reviews == nil || stores.Sessions == nil || stores.Streaks == nil {
		panic("all stores must be provided")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = domain.DefaultHistoryDays
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &studyServiceImpl{
		db:     db,
		stores: stores,
		srs:    srsService,
		opts:   opts,
		logger: logger.With(slog.String("component", "study_service")),
	}
}

// SubmitBatch implements StudyService.SubmitBatch.
func (s *studyServiceImpl) SubmitBatch(ctx context.Context, userID uuid.UUID, batch Batch) (result *BatchResult, err error) {
	ctx, span := tracer.Start(ctx, "study.SubmitBatch")
	span.SetAttributes(attribute.Int("study.batch.size", len(batch.Reviews)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch not committed")
		} else {
			span.SetAttributes(attribute.Int("study.batch.committed", result.ReviewEntries))
		}
		span.End()
	}()

	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if userID == uuid.Nil {
		return nil, domain.NewValidationError("userId", "is required")
	}
	if err := validateBatch(batch, s.opts.MaxBatchSize); err != nil {
		log.Debug("rejected malformed batch", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.opts.Now().UTC()

	session, err := s.openSession(ctx, userID, batch, now)
	if err != nil {
		log.Error("failed to open study session", slog.String("error", err.Error()))
		return nil, err
	}

	failures := s.commitReviews(ctx, log, userID, batch.Reviews, now)

	result = &BatchResult{SessionID: session.ID}
	for i, ferr := range failures {
		if ferr == nil {
			result.ReviewEntries++
			continue
		}
		result.Failed = append(result.Failed, domain.ItemFailure{ItemID: batch.Reviews[i].ItemID, Err: ferr})
	}

	if result.ReviewEntries == 0 {
		log.Warn("no reviews committed",
			slog.String("session_id", session.ID.String()),
			slog.Int("failed", len(result.Failed)))
		return nil, &domain.TotalFailure{Failures: result.Failed}
	}

	if err := s.touchStreak(ctx, userID, now); err != nil {
		// The reviews are durable already; reporting failure would invite a
		// resubmission that double-counts them.
		log.Error("failed to update streak", slog.String("error", err.Error()))
	}

	stats, err := s.summary(ctx, userID)
	if err != nil {
		log.Error("failed to compute user summary", slog.String("error", err.Error()))
	}
	result.Stats = stats

	log.Info("committed study batch",
		slog.String("session_id", session.ID.String()),
		slog.Int("submitted", len(batch.Reviews)),
		slog.Int("committed", result.ReviewEntries),
		slog.Int("failed", len(result.Failed)))
	return result, nil
}

// openSession registers the user and writes the session summary from the
// submitted counts.
func (s *studyServiceImpl) openSession(ctx context.Context, userID uuid.UUID, batch Batch, now time.Time) (*domain.StudySession, error) {
	correct := 0
	for _, r := range batch.Reviews {
		if domain.IsCorrect(*r.Quality) {
			correct++
		}
	}

	session, err := domain.NewStudySession(
		userID,
		batch.DeckID,
		batch.StudyMode,
		len(batch.Reviews),
		correct,
		time.Duration(batch.TotalTimeMs)*time.Millisecond,
		now,
	)
	if err != nil {
		return nil, domain.NewValidationError("studySession", err.Error())
	}

	// The user row and the session commit together, so a rejected deck
	// leaves no registration behind.
	var opErr error
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.stores.Users.WithTx(tx).Ensure(ctx, userID); err != nil {
			opErr = &domain.PersistenceError{Operation: "register user", Err: err}
			return err
		}
		if err := s.stores.Sessions.WithTx(tx).Create(ctx, session); err != nil {
			if batch.DeckID != nil && errors.Is(err, store.ErrInvalidEntity) {
				opErr = domain.NewValidationError("deckId", "deck does not exist")
			} else {
				opErr = &domain.PersistenceError{Operation: "create study session", Err: err}
			}
			return err
		}
		return nil
	})
	if opErr != nil {
		return nil, opErr
	}
	if err != nil {
		return nil, &domain.PersistenceError{Operation: "create study session", Err: err}
	}
	return session, nil
}

// commitReviews commits every review and returns the per-review error in
// submission order, nil for committed reviews. Reviews are grouped by item;
// groups run concurrently and each group runs in order.
func (s *studyServiceImpl) commitReviews(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	reviews []ReviewSubmission,
	now time.Time,
) []error {
	failures := make([]error, len(reviews))

	var order []string
	groups := make(map[string][]int)
	for i, r := range reviews {
		if _, ok := groups[r.ItemID]; !ok {
			order = append(order, r.ItemID)
		}
		groups[r.ItemID] = append(groups[r.ItemID], i)
	}

	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for _, itemID := range order {
		itemID := itemID
		indexes := groups[itemID]
		g.Go(func() error {
			exists, err := s.stores.Catalog.Exists(ctx, itemID)
			for _, i := range indexes {
				switch {
				case err != nil:
					failures[i] = &domain.PersistenceError{ItemID: itemID, Operation: "look up item", Err: err}
				case !exists:
					failures[i] = &domain.ReferentialError{ItemID: itemID}
				default:
					failures[i] = s.commitReview(ctx, log, userID, reviews[i], now)
				}
				if failures[i] != nil {
					log.Warn("review not committed",
						slog.String("item_id", itemID),
						slog.Int("index", i),
						slog.String("error", failures[i].Error()))
				}
			}
			return nil
		})
	}
	// Goroutines record failures instead of returning them.
	_ = g.Wait()

	return failures
}

// commitReview applies one review inside its own transaction: lock the
// progress key, schedule, write the progress record and append the ledger
// event. Either both writes land or neither does.
func (s *studyServiceImpl) commitReview(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	sub ReviewSubmission,
	now time.Time,
) error {
	quality := *sub.Quality
	reviewedAt := now
	if sub.Timestamp != nil && !sub.Timestamp.IsZero() && !sub.Timestamp.After(now) {
		reviewedAt = sub.Timestamp.UTC()
	}
	var elapsed int64
	if sub.ElapsedMs != nil {
		elapsed = *sub.ElapsedMs
	}

	var stepErr *domain.PersistenceError
	step := func(op string, err error) error {
		stepErr = &domain.PersistenceError{ItemID: sub.ItemID, Operation: op, Err: err}
		return stepErr
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		progress := s.stores.Progress.WithTx(tx)

		rec, err := progress.GetForUpdate(ctx, userID, sub.ItemID)
		if errors.Is(err, store.ErrProgressNotFound) {
			rec, err = domain.NewProgressRecord(userID, sub.ItemID, reviewedAt)
		}
		if err != nil {
			return step("load progress", err)
		}

		prev := rec.State()
		next, err := s.srs.Schedule(quality, &prev)
		if err != nil {
			return step("schedule review", err)
		}
		logHintMismatch(log, sub, prev, next)

		if err := rec.ApplyReview(next, quality, reviewedAt); err != nil {
			return step("apply review", err)
		}
		if err := progress.Upsert(ctx, rec); err != nil {
			return step("save progress", err)
		}

		event, err := domain.NewReviewEvent(userID, sub.ItemID, quality, elapsed, reviewedAt, prev, next)
		if err != nil {
			return step("record review", err)
		}
		if err := s.stores.Reviews.WithTx(tx).Append(ctx, event); err != nil {
			return step("append review", err)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if stepErr != nil && errors.Is(err, stepErr) {
		return stepErr
	}
	return &domain.PersistenceError{ItemID: sub.ItemID, Operation: "commit review", Err: err}
}

// logHintMismatch notes client-computed schedules that disagree with ours.
func logHintMismatch(log *slog.Logger, sub ReviewSubmission, prev, next domain.ProgressState) {
	mismatch := func(hint *int, actual int) bool { return hint != nil && *hint != actual }
	if mismatch(sub.PreviousInterval, prev.Interval) ||
		mismatch(sub.NewInterval, next.Interval) ||
		mismatch(sub.PreviousEaseFactor, prev.EaseFactor) ||
		mismatch(sub.NewEaseFactor, next.EaseFactor) {
		log.Debug("client schedule differs from server schedule",
			slog.String("item_id", sub.ItemID),
			slog.Int("server_interval", next.Interval),
			slog.Int("server_ease_factor", next.EaseFactor))
	}
}

// touchStreak records study on today's calendar date in the configured zone,
// holding the user's streak lock for the read-modify-write.
func (s *studyServiceImpl) touchStreak(ctx context.Context, userID uuid.UUID, now time.Time) error {
	today := now.In(s.opts.Location)
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		streaks := s.stores.Streaks.WithTx(tx)
		state, err := streaks.GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to read streak: %w", err)
		}
		next, changed := state.Touch(today)
		if !changed {
			return nil
		}
		if err := streaks.Save(ctx, userID, next); err != nil {
			return fmt.Errorf("failed to save streak: %w", err)
		}
		return nil
	})
}

func (s *studyServiceImpl) summary(ctx context.Context, userID uuid.UUID) (domain.UserSummary, error) {
	items, err := s.stores.Progress.CountByUser(ctx, userID)
	if err != nil {
		return domain.UserSummary{}, err
	}
	sessions, err := s.stores.Sessions.CountByUser(ctx, userID)
	if err != nil {
		return domain.UserSummary{}, err
	}
	totals, err := s.stores.Reviews.Totals(ctx, userID)
	if err != nil {
		return domain.UserSummary{}, err
	}
	return domain.UserSummary{
		TotalItemsStudied: items,
		TotalSessions:     sessions,
		AverageAccuracy:   domain.AccuracyPercent(totals.QualitySum, totals.Reviews),
	}, nil
}

// GetUserStats implements StudyService.GetUserStats.
func (s *studyServiceImpl) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	summary, err := s.summary(ctx, userID)
	if err != nil {
		log.Error("failed to compute user summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("get_user_stats", "failed to compute summary", err)
	}
	totals, err := s.stores.Reviews.Totals(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_user_stats", "failed to aggregate reviews", err)
	}
	mastered, err := s.stores.Progress.CountMastered(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_user_stats", "failed to count mastered items", err)
	}
	streak, err := s.stores.Streaks.Get(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return nil, NewServiceError("get_user_stats", "failed to read streak", err)
	}

	return &domain.UserStats{
		UserSummary:    summary,
		TotalReviews:   int(totals.Reviews),
		CorrectReviews: int(totals.Correct),
		MasteredItems:  mastered,
		Streak:         streak.Streak,
		LastStudyDate:  streak.LastStudyDate,
	}, nil
}

// GetReviewHistory implements StudyService.GetReviewHistory.
func (s *studyServiceImpl) GetReviewHistory(ctx context.Context, userID uuid.UUID, days int) ([]domain.DailyReviewCount, error) {
	if days <= 0 {
		days = s.opts.HistoryDays
	}
	if days > MaxHistoryDays {
		return nil, fmt.Errorf("%w: at most %d days", ErrInvalidHistoryWindow, MaxHistoryDays)
	}

	now := s.opts.Now()
	from, to := domain.HistoryWindow(now, days, s.opts.Location)
	events, err := s.stores.Reviews.ListByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list review history",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("get_review_history", "failed to list reviews", err)
	}
	return domain.BucketByDay(events, now, days, s.opts.Location), nil
}

// ListProgress implements StudyService.ListProgress.
func (s *studyServiceImpl) ListProgress(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error) {
	records, err := s.stores.Progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_progress", "failed to list progress", err)
	}
	return records, nil
}

// ListDue implements StudyService.ListDue.
func (s *studyServiceImpl) ListDue(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ProgressRecord, error) {
	if limit <= 0 {
		limit = DefaultDueLimit
	}
	if limit > MaxDueLimit {
		limit = MaxDueLimit
	}
	records, err := s.stores.Progress.ListDue(ctx, userID, s.opts.Now().UTC(), limit)
	if err != nil {
		return nil, NewServiceError("list_due", "failed to list due items", err)
	}
	return records, nil
}
