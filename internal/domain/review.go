package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewEvent
var (
	ErrEmptyReviewUserID = errors.New("review user ID cannot be empty")
	ErrEmptyReviewItemID = errors.New("review item ID cannot be empty")
	ErrInvalidElapsed    = errors.New("elapsed time must be greater than or equal to 0")
)

// ReviewEvent is one immutable entry of the review ledger.
type ReviewEvent struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"userId"`
	ItemID             string    `json:"itemId"`
	ReviewDate         time.Time `json:"reviewDate"`
	Quality            int       `json:"quality"`
	ElapsedMs          int64     `json:"elapsedMs"`
	PreviousInterval   int       `json:"previousInterval"`
	NewInterval        int       `json:"newInterval"`
	PreviousEaseFactor int       `json:"previousEaseFactor"`
	NewEaseFactor      int       `json:"newEaseFactor"`
}

// NewReviewEvent records the transition from prev to next caused by a review.
func NewReviewEvent(
	userID uuid.UUID,
	itemID string,
	quality int,
	elapsedMs int64,
	reviewedAt time.Time,
	prev, next ProgressState,
) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:                 uuid.New(),
		UserID:             userID,
		ItemID:             itemID,
		ReviewDate:         reviewedAt.UTC(),
		Quality:            quality,
		ElapsedMs:          elapsedMs,
		PreviousInterval:   prev.Interval,
		NewInterval:        next.Interval,
		PreviousEaseFactor: prev.EaseFactor,
		NewEaseFactor:      next.EaseFactor,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

// Correct reports whether the review counted as a successful recall.
func (e *ReviewEvent) Correct() bool {
	return IsCorrect(e.Quality)
}

// Validate checks if the ReviewEvent has valid data.
func (e *ReviewEvent) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrEmptyReviewUserID
	}
	if strings.TrimSpace(e.ItemID) == "" {
		return ErrEmptyReviewItemID
	}
	if !ValidQuality(e.Quality) {
		return ErrInvalidQuality
	}
	if e.ElapsedMs < 0 {
		return ErrInvalidElapsed
	}
	if e.PreviousInterval < 0 || e.NewInterval < 0 {
		return ErrInvalidInterval
	}
	if e.PreviousEaseFactor < MinEaseFactor || e.NewEaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	return nil
}
