package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/platform/sqlite"
	"github.com/phrazzld/kioku/internal/platform/sqlite/sqlitetest"
	"github.com/phrazzld/kioku/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func learning(interval, ease int) domain.ProgressState {
	return domain.ProgressState{Interval: interval, EaseFactor: ease, Status: domain.StatusLearning}
}

func TestProgressStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := sqlitetest.NewDB(t)
	userID := sqlitetest.InsertUser(t, db)
	sqlitetest.InsertItems(t, db, "kanji-1", "kanji-2")
	progress := sqlite.NewProgressStore(db, nil)

	t.Run("missing record", func(t *testing.T) {
		_, err := progress.Get(ctx, userID, "kanji-1")
		assert.ErrorIs(t, err, store.ErrProgressNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("insert then update", func(t *testing.T) {
		rec, err := domain.NewProgressRecord(userID, "kanji-1", testNow)
		require.NoError(t, err)
		require.NoError(t, rec.ApplyReview(learning(1, 260), 5, testNow))
		require.NoError(t, progress.Upsert(ctx, rec))

		require.NoError(t, rec.ApplyReview(learning(1, 240), 1, testNow.Add(time.Hour)))
		require.NoError(t, progress.Upsert(ctx, rec))

		got, err := progress.Get(ctx, userID, "kanji-1")
		require.NoError(t, err)
		assert.Equal(t, 240, got.EaseFactor)
		assert.Equal(t, 2, got.ReviewCount)
		assert.Equal(t, 1, got.CorrectCount)
		assert.Equal(t, 1, got.IncorrectCount)
		assert.Equal(t, 1, got.LastReviewQuality)
		assert.True(t, got.LastReviewDate.Equal(testNow.Add(time.Hour)))
		assert.True(t, got.CreatedAt.Equal(testNow))
		assert.True(t, got.DueDate.Equal(testNow.Add(25*time.Hour)))
	})

	t.Run("listing and counts", func(t *testing.T) {
		rec, err := domain.NewProgressRecord(userID, "kanji-2", testNow)
		require.NoError(t, err)
		require.NoError(t, rec.ApplyReview(learning(1, 260), 5, testNow))
		require.NoError(t, progress.Upsert(ctx, rec))

		all, err := progress.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "kanji-1", all[0].ItemID)
		assert.Equal(t, "kanji-2", all[1].ItemID)

		due, err := progress.ListDue(ctx, userID, testNow.Add(24*time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "kanji-2", due[0].ItemID)

		due, err = progress.ListDue(ctx, userID, testNow.Add(48*time.Hour), 1)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "kanji-2", due[0].ItemID, "earliest due first")

		count, err := progress.CountByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		mastered, err := progress.CountMastered(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, mastered)
	})

	t.Run("unknown item violates foreign key", func(t *testing.T) {
		rec, err := domain.NewProgressRecord(userID, "missing", testNow)
		require.NoError(t, err)
		err = progress.Upsert(ctx, rec)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("invalid record is rejected before writing", func(t *testing.T) {
		rec := &domain.ProgressRecord{UserID: userID, ItemID: "kanji-1", EaseFactor: 100, Status: domain.StatusNew}
		err := progress.Upsert(ctx, rec)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestProgressStore_RollbackLeavesNoWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := sqlitetest.NewDB(t)
	userID := sqlitetest.InsertUser(t, db)
	sqlitetest.InsertItems(t, db, "kana-a")
	progress := sqlite.NewProgressStore(db, nil)
	reviews := sqlite.NewReviewStore(db, nil)

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		rec, err := domain.NewProgressRecord(userID, "kana-a", testNow)
		require.NoError(t, err)
		require.NoError(t, rec.ApplyReview(learning(1, 260), 5, testNow))
		if err := progress.WithTx(tx).Upsert(ctx, rec); err != nil {
			return err
		}
		// Ledger entry for an unknown item fails the foreign key check.
		event, err := domain.NewReviewEvent(userID, "missing", 5, 0, testNow, domain.InitialProgressState(), rec.State())
		require.NoError(t, err)
		return reviews.WithTx(tx).Append(ctx, event)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	_, err = progress.Get(ctx, userID, "kana-a")
	assert.ErrorIs(t, err, store.ErrProgressNotFound)
}

func TestReviewStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := sqlitetest.NewDB(t)
	userID := sqlitetest.InsertUser(t, db)
	otherID := sqlitetest.InsertUser(t, db)
	sqlitetest.InsertItems(t, db, "word-1")
	reviews := sqlite.NewReviewStore(db, nil)

	record := func(user uuid.UUID, quality int, at time.Time) {
		t.Helper()
		e, err := domain.NewReviewEvent(user, "word-1", quality, 800, at, domain.InitialProgressState(), learning(1, 250))
		require.NoError(t, err)
		require.NoError(t, reviews.Append(ctx, e))
	}
	record(userID, 4, testNow.Add(-48*time.Hour))
	record(userID, 2, testNow)
	record(userID, 5, testNow.Add(time.Minute))
	record(otherID, 5, testNow)

	t.Run("identical content can be appended twice", func(t *testing.T) {
		e := &domain.ReviewEvent{
			UserID: otherID, ItemID: "word-1", ReviewDate: testNow, Quality: 3,
			PreviousEaseFactor: 250, NewEaseFactor: 250,
		}
		require.NoError(t, reviews.Append(ctx, e))
		assert.NotEqual(t, uuid.Nil, e.ID)
		dup := *e
		dup.ID = uuid.Nil
		require.NoError(t, reviews.Append(ctx, &dup))
		assert.NotEqual(t, e.ID, dup.ID)
	})

	t.Run("date range is half open and ordered", func(t *testing.T) {
		events, err := reviews.ListByUserAndDateRange(ctx, userID, testNow, testNow.Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, 2, events[0].Quality)
		assert.Equal(t, int64(800), events[0].ElapsedMs)

		events, err = reviews.ListByUserAndDateRange(ctx, userID, testNow.Add(-72*time.Hour), testNow.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.True(t, events[0].ReviewDate.Before(events[1].ReviewDate))
	})

	t.Run("totals", func(t *testing.T) {
		totals, err := reviews.Totals(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, store.ReviewTotals{Reviews: 3, Correct: 2, QualitySum: 11}, totals)

		empty, err := reviews.Totals(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, store.ReviewTotals{}, empty)
	})
}

func TestStudySessionStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := sqlitetest.NewDB(t)
	userID := sqlitetest.InsertUser(t, db)
	deckID := sqlitetest.InsertDeck(t, db, "JLPT N5")
	sessions := sqlite.NewStudySessionStore(db, nil)

	withDeck, err := domain.NewStudySession(userID, &deckID, "cram", 4, 3, 2*time.Minute, testNow)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, withDeck))

	noDeck, err := domain.NewStudySession(userID, nil, "", 1, 0, 0, testNow)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, noDeck))

	got, err := sessions.Get(ctx, withDeck.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DeckID)
	assert.Equal(t, deckID, *got.DeckID)
	assert.Equal(t, "cram", got.StudyMode)
	assert.Equal(t, 4, got.ReviewCount)
	assert.Equal(t, 3, got.CorrectCount)
	assert.True(t, got.StartTime.Equal(testNow.Add(-2*time.Minute)))

	got, err = sessions.Get(ctx, noDeck.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeckID)
	assert.Equal(t, domain.DefaultStudyMode, got.StudyMode)

	count, err := sessions.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = sessions.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	unknownDeck := uuid.New()
	bad, err := domain.NewStudySession(userID, &unknownDeck, "", 1, 1, 0, testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, sessions.Create(ctx, bad), store.ErrInvalidEntity)
}

func TestUserAndStreakStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := sqlitetest.NewDB(t)
	users := sqlite.NewUserStore(db, nil)
	streaks := sqlite.NewStreakStore(db, nil)
	userID := uuid.New()

	_, err := streaks.Get(ctx, userID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.ErrorIs(t, streaks.Save(ctx, userID, domain.StreakState{Streak: 1}), store.ErrUserNotFound)

	require.NoError(t, users.Ensure(ctx, userID))
	require.NoError(t, users.Ensure(ctx, userID), "Ensure is idempotent")

	state, err := streaks.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.StreakState{}, state)

	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	require.NoError(t, streaks.Save(ctx, userID, domain.StreakState{Streak: 4, LastStudyDate: &day}))

	state, err = streaks.GetForUpdate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.Streak)
	require.NotNil(t, state.LastStudyDate)
	assert.True(t, state.LastStudyDate.Equal(day))
}

func TestItemCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := sqlitetest.NewDB(t)
	sqlitetest.InsertItems(t, db, "vocab-42")
	catalog := sqlite.NewItemCatalog(db, nil)

	ok, err := catalog.Exists(ctx, "vocab-42")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = catalog.Exists(ctx, "vocab-43")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCascadeDeleteRemovesDependents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := sqlitetest.NewDB(t)
	userID := sqlitetest.InsertUser(t, db)
	sqlitetest.InsertItems(t, db, "gone")

	rec, err := domain.NewProgressRecord(userID, "gone", testNow)
	require.NoError(t, err)
	require.NoError(t, rec.ApplyReview(learning(1, 250), 4, testNow))
	require.NoError(t, sqlite.NewProgressStore(db, nil).Upsert(ctx, rec))
	e, err := domain.NewReviewEvent(userID, "gone", 4, 0, testNow, domain.InitialProgressState(), rec.State())
	require.NoError(t, err)
	require.NoError(t, sqlite.NewReviewStore(db, nil).Append(ctx, e))

	_, err = db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, "gone")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_item_progress`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_events`).Scan(&n))
	assert.Zero(t, n)
}
