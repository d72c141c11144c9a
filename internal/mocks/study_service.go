package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
	"github.com/phrazzld/kioku/internal/service/study"
)

// MockStudyService implements study.StudyService for testing
type MockStudyService struct {
	// Custom behavior functions
	SubmitBatchFn      func(ctx context.Context, userID uuid.UUID, batch study.Batch) (*study.BatchResult, error)
	GetUserStatsFn     func(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
	GetReviewHistoryFn func(ctx context.Context, userID uuid.UUID, days int) ([]domain.DailyReviewCount, error)
	ListProgressFn     func(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error)
	ListDueFn          func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ProgressRecord, error)

	// Default response values
	Result   *study.BatchResult
	Stats    *domain.UserStats
	History  []domain.DailyReviewCount
	Progress []domain.ProgressRecord
	Err      error

	// Call tracking for verification
	mu               sync.Mutex
	SubmitBatchCalls []SubmitBatchCall
	HistoryDays      []int
	DueLimits        []int
}

// SubmitBatchCall records the arguments of one SubmitBatch call.
type SubmitBatchCall struct {
	UserID uuid.UUID
	Batch  study.Batch
}

var _ study.StudyService = (*MockStudyService)(nil)

// SubmitBatch implements the study.StudyService interface
func (m *MockStudyService) SubmitBatch(ctx context.Context, userID uuid.UUID, batch study.Batch) (*study.BatchResult, error) {
	m.mu.Lock()
	m.SubmitBatchCalls = append(m.SubmitBatchCalls, SubmitBatchCall{UserID: userID, Batch: batch})
	m.mu.Unlock()

	if m.SubmitBatchFn != nil {
		return m.SubmitBatchFn(ctx, userID, batch)
	}
	return m.Result, m.Err
}

// GetUserStats implements the study.StudyService interface
func (m *MockStudyService) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	if m.GetUserStatsFn != nil {
		return m.GetUserStatsFn(ctx, userID)
	}
	return m.Stats, m.Err
}

// GetReviewHistory implements the study.StudyService interface
func (m *MockStudyService) GetReviewHistory(ctx context.Context, userID uuid.UUID, days int) ([]domain.DailyReviewCount, error) {
	m.mu.Lock()
	m.HistoryDays = append(m.HistoryDays, days)
	m.mu.Unlock()

	if m.GetReviewHistoryFn != nil {
		return m.GetReviewHistoryFn(ctx, userID, days)
	}
	return m.History, m.Err
}

// ListProgress implements the study.StudyService interface
func (m *MockStudyService) ListProgress(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error) {
	if m.ListProgressFn != nil {
		return m.ListProgressFn(ctx, userID)
	}
	return m.Progress, m.Err
}

// ListDue implements the study.StudyService interface
func (m *MockStudyService) ListDue(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ProgressRecord, error) {
	m.mu.Lock()
	m.DueLimits = append(m.DueLimits, limit)
	m.mu.Unlock()

	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, userID, limit)
	}
	return m.Progress, m.Err
}
