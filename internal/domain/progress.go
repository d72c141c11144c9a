package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scheduling constants. Ease factors are fixed-point integers scaled by 100,
// so 250 means 2.50.
const (
	DefaultEaseFactor = 250
	MinEaseFactor     = 130
	MinQuality        = 0
	MaxQuality        = 5
	PassingQuality    = 3
	MasteredQuality   = 4
)

// ProgressStatus is the learning stage of a (user, item) pair.
type ProgressStatus string

// Possible progress status values
const (
	StatusNew       ProgressStatus = "new"
	StatusLearning  ProgressStatus = "learning"
	StatusReviewing ProgressStatus = "reviewing"
	StatusBurned    ProgressStatus = "burned"
)

// Valid reports whether s is one of the known statuses.
func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusReviewing, StatusBurned:
		return true
	default:
		return false
	}
}

func (s ProgressStatus) String() string {
	return string(s)
}

// ParseProgressStatus converts a stored or transmitted status name.
func ParseProgressStatus(value string) (ProgressStatus, error) {
	s := ProgressStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return s, nil
}

// UnmarshalText rejects unknown statuses.
func (s *ProgressStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseProgressStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ValidQuality reports whether q is a recall score in 0..5.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// IsCorrect reports whether a review quality counts as a successful recall.
func IsCorrect(quality int) bool {
	return quality >= PassingQuality
}

// ProgressState is the part of a progress record the scheduler reads and
// produces.
type ProgressState struct {
	Interval   int            `json:"interval"`
	EaseFactor int            `json:"easeFactor"`
	Status     ProgressStatus `json:"status"`
}

// InitialProgressState is the state assumed for an item never reviewed.
func InitialProgressState() ProgressState {
	return ProgressState{
		Interval:   0,
		EaseFactor: DefaultEaseFactor,
		Status:     StatusNew,
	}
}

// Common validation errors for ProgressRecord
var (
	ErrEmptyProgressUserID = errors.New("progress user ID cannot be empty")
	ErrEmptyProgressItemID = errors.New("progress item ID cannot be empty")
	ErrInvalidInterval     = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 130")
	ErrInvalidCounts       = errors.New("correct and incorrect counts must sum to review count")
)

// ProgressRecord tracks how well one user knows one item. There is at most one
// record per (UserID, ItemID); it is created on the first review.
type ProgressRecord struct {
	UserID            uuid.UUID      `json:"userId"`
	ItemID            string         `json:"itemId"`
	Interval          int            `json:"interval"`
	EaseFactor        int            `json:"easeFactor"`
	DueDate           time.Time      `json:"dueDate"`
	ReviewCount       int            `json:"reviewCount"`
	CorrectCount      int            `json:"correctCount"`
	IncorrectCount    int            `json:"incorrectCount"`
	LastReviewDate    time.Time      `json:"lastReviewDate"`
	LastReviewQuality int            `json:"lastReviewQuality"`
	Status            ProgressStatus `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// NewProgressRecord creates an unreviewed record in the initial state.
func NewProgressRecord(userID uuid.UUID, itemID string, now time.Time) (*ProgressRecord, error) {
	initial := InitialProgressState()
	rec := &ProgressRecord{
		UserID:     userID,
		ItemID:     itemID,
		Interval:   initial.Interval,
		EaseFactor: initial.EaseFactor,
		Status:     initial.Status,
		DueDate:    now.UTC(),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// State returns the scheduler-relevant part of the record.
func (p *ProgressRecord) State() ProgressState {
	return ProgressState{
		Interval:   p.Interval,
		EaseFactor: p.EaseFactor,
		Status:     p.Status,
	}
}

// ApplyReview folds a scheduled state and its review outcome into the record.
// ReviewCount grows by one and exactly one of CorrectCount and IncorrectCount
// grows with it.
func (p *ProgressRecord) ApplyReview(next ProgressState, quality int, reviewedAt time.Time) error {
	if !ValidQuality(quality) {
		return ErrInvalidQuality
	}
	reviewedAt = reviewedAt.UTC()

	p.Interval = next.Interval
	p.EaseFactor = next.EaseFactor
	p.Status = next.Status
	p.ReviewCount++
	if IsCorrect(quality) {
		p.CorrectCount++
	} else {
		p.IncorrectCount++
	}
	p.LastReviewDate = reviewedAt
	p.LastReviewQuality = quality
	p.DueDate = reviewedAt.AddDate(0, 0, next.Interval)
	p.UpdatedAt = reviewedAt

	return p.Validate()
}

// IsDue reports whether the item should be reviewed at now.
func (p *ProgressRecord) IsDue(now time.Time) bool {
	return !p.DueDate.After(now)
}

// Mastered reports whether the most recent review was answered with at least
// MasteredQuality.
func (p *ProgressRecord) Mastered() bool {
	return p.ReviewCount > 0 && p.LastReviewQuality >= MasteredQuality
}

// Validate checks if the ProgressRecord has valid data.
func (p *ProgressRecord) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}
	if strings.TrimSpace(p.ItemID) == "" {
		return ErrEmptyProgressItemID
	}
	if p.Interval < 0 {
		return ErrInvalidInterval
	}
	if p.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	if p.ReviewCount < 0 || p.CorrectCount < 0 || p.IncorrectCount < 0 ||
		p.CorrectCount+p.IncorrectCount != p.ReviewCount {
		return ErrInvalidCounts
	}
	if !ValidQuality(p.LastReviewQuality) {
		return ErrInvalidQuality
	}
	return nil
}
