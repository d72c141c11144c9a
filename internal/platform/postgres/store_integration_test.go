//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/platform/postgres"
	"github.com/phrazzld/kioku/internal/store"
	"github.com/phrazzld/kioku/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func TestProgressStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userID := testdb.CreateTestUser(t, tx)
		itemID := testdb.CreateTestItem(t, tx)
		progress := postgres.NewPostgresProgressStore(tx, nil)

		_, err := progress.GetForUpdate(ctx, userID, itemID)
		assert.ErrorIs(t, err, store.ErrProgressNotFound)

		rec, err := domain.NewProgressRecord(userID, itemID, testNow)
		require.NoError(t, err)
		require.NoError(t, rec.ApplyReview(domain.ProgressState{Interval: 1, EaseFactor: 250, Status: domain.StatusLearning}, 4, testNow))
		require.NoError(t, progress.Upsert(ctx, rec))

		require.NoError(t, rec.ApplyReview(domain.ProgressState{Interval: 3, EaseFactor: 250, Status: domain.StatusLearning}, 2, testNow.Add(24*time.Hour)))
		require.NoError(t, progress.Upsert(ctx, rec))

		got, err := progress.GetForUpdate(ctx, userID, itemID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Interval)
		assert.Equal(t, 2, got.ReviewCount)
		assert.Equal(t, 1, got.CorrectCount)
		assert.Equal(t, 1, got.IncorrectCount)
		assert.Equal(t, domain.StatusLearning, got.Status)
		assert.True(t, got.DueDate.Equal(testNow.Add(4*24*time.Hour)))

		due, err := progress.ListDue(ctx, userID, testNow.Add(5*24*time.Hour), 10)
		require.NoError(t, err)
		assert.Len(t, due, 1)

		due, err = progress.ListDue(ctx, userID, testNow, 10)
		require.NoError(t, err)
		assert.Empty(t, due)

		count, err := progress.CountByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		mastered, err := progress.CountMastered(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, mastered)
	})
}

func TestProgressStore_UpsertUnknownItem_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		userID := testdb.CreateTestUser(t, tx)
		rec, err := domain.NewProgressRecord(userID, "missing-item", testNow)
		require.NoError(t, err)

		err = postgres.NewPostgresProgressStore(tx, nil).Upsert(context.Background(), rec)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestReviewStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userID := testdb.CreateTestUser(t, tx)
		itemID := testdb.CreateTestItem(t, tx)
		reviews := postgres.NewPostgresReviewStore(tx, nil)

		prev := domain.InitialProgressState()
		next := domain.ProgressState{Interval: 1, EaseFactor: 260, Status: domain.StatusLearning}
		for i, q := range []int{5, 1, 3} {
			e, err := domain.NewReviewEvent(userID, itemID, q, 1200, testNow.Add(time.Duration(i)*time.Hour), prev, next)
			require.NoError(t, err)
			require.NoError(t, reviews.Append(ctx, e))
		}

		events, err := reviews.ListByUserAndDateRange(ctx, userID, testNow, testNow.Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, 5, events[0].Quality)
		assert.Equal(t, 1, events[1].Quality)

		totals, err := reviews.Totals(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, store.ReviewTotals{Reviews: 3, Correct: 2, QualitySum: 9}, totals)
	})
}

func TestStudySessionStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userID := testdb.CreateTestUser(t, tx)
		deckID := testdb.CreateTestDeck(t, tx, "kanji N5")
		sessions := postgres.NewPostgresStudySessionStore(tx, nil)

		session, err := domain.NewStudySession(userID, &deckID, "", 3, 2, 90*time.Second, testNow)
		require.NoError(t, err)
		require.NoError(t, sessions.Create(ctx, session))

		got, err := sessions.Get(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, got.DeckID)
		assert.Equal(t, deckID, *got.DeckID)
		assert.Equal(t, domain.DefaultStudyMode, got.StudyMode)
		assert.True(t, got.StartTime.Equal(testNow.Add(-90*time.Second)))

		count, err := sessions.CountByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = sessions.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})
}

func TestStreakAndUserStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userID := uuid.New()
		users := postgres.NewPostgresUserStore(tx, nil)
		streaks := postgres.NewPostgresStreakStore(tx, nil)

		_, err := streaks.Get(ctx, userID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		require.NoError(t, users.Ensure(ctx, userID))
		require.NoError(t, users.Ensure(ctx, userID))

		state, err := streaks.GetForUpdate(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, state.Streak)
		assert.Nil(t, state.LastStudyDate)

		next, changed := state.Touch(testNow)
		require.True(t, changed)
		require.NoError(t, streaks.Save(ctx, userID, next))

		got, err := streaks.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Streak)
		require.NotNil(t, got.LastStudyDate)
		assert.Equal(t, "2024-03-10", got.LastStudyDate.Format(domain.DateLayout))

		err = streaks.Save(ctx, uuid.New(), next)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestItemCatalog_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		itemID := testdb.CreateTestItem(t, tx)
		catalog := postgres.NewPostgresItemCatalog(tx, nil)

		ok, err := catalog.Exists(ctx, itemID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = catalog.Exists(ctx, "no-such-item")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
