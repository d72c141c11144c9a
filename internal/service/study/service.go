// Package study commits batches of reviews and reports on a user's study
// history.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
)

// ReviewSubmission is one review of a batch. Only ItemID and Quality are
// required. The interval and ease fields are client-side hints; the server
// computes its own schedule.
type ReviewSubmission struct {
	ItemID             string     `json:"itemId" validate:"required,notblank,max=255"`
	Quality            *int       `json:"quality" validate:"required,min=0,max=5"`
	Timestamp          *time.Time `json:"timestamp,omitempty"`
	ElapsedMs          *int64     `json:"elapsedMs,omitempty" validate:"omitempty,min=0"`
	PreviousInterval   *int       `json:"previousInterval,omitempty" validate:"omitempty,min=0"`
	NewInterval        *int       `json:"newInterval,omitempty" validate:"omitempty,min=0"`
	PreviousEaseFactor *int       `json:"previousEaseFactor,omitempty" validate:"omitempty,min=0"`
	NewEaseFactor      *int       `json:"newEaseFactor,omitempty" validate:"omitempty,min=0"`
}

// MaxTotalTimeMs bounds the submitted session duration to one day.
const MaxTotalTimeMs = 24 * 60 * 60 * 1000

// Batch is an ordered list of reviews submitted together as one study session.
type Batch struct {
	Reviews     []ReviewSubmission `json:"reviewHistory" validate:"required,min=1,dive"`
	TotalTimeMs int64              `json:"totalTime" validate:"min=0,max=86400000"`
	DeckID      *uuid.UUID         `json:"deckId,omitempty"`
	StudyMode   string             `json:"studyMode,omitempty" validate:"max=64"`
}

// BatchResult reports the outcome of a committed batch. Failed is in
// submission order.
type BatchResult struct {
	SessionID     uuid.UUID
	ReviewEntries int
	Failed        []domain.ItemFailure
	Stats         domain.UserSummary
}

// StudyService is the entry point for review submission and study statistics.
type StudyService interface {
	// SubmitBatch commits every review of the batch independently. Reviews
	// of distinct items may commit concurrently; reviews of one item commit
	// in submission order.
	//
	// Returns:
	//   - (*BatchResult, nil): at least one review committed; per-item failures are in Failed
	//   - (nil, *domain.ValidationError): the batch is malformed; nothing was written
	//   - (nil, *domain.TotalFailure): no review committed
	//   - (nil, *domain.PersistenceError): the session summary could not be written
	SubmitBatch(ctx context.Context, userID uuid.UUID, batch Batch) (*BatchResult, error)

	// GetUserStats returns the aggregate statistics of the user.
	GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// GetReviewHistory returns review counts for each of the last days
	// calendar days, oldest first. A non-positive days uses the configured
	// default.
	GetReviewHistory(ctx context.Context, userID uuid.UUID, days int) ([]domain.DailyReviewCount, error)

	// ListProgress returns every progress record of the user.
	ListProgress(ctx context.Context, userID uuid.UUID) ([]domain.ProgressRecord, error)

	// ListDue returns up to limit records due now, earliest first.
	ListDue(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ProgressRecord, error)
}

// ErrInvalidHistoryWindow is returned when a history window exceeds MaxHistoryDays.
var ErrInvalidHistoryWindow = errors.New("invalid history window")

// ServiceError wraps errors from the study service with additional context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_user_stats")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
