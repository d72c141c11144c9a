package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultStudyMode is used when a batch does not name a study mode.
const DefaultStudyMode = "standard"

// Common validation errors for StudySession
var (
	ErrEmptySessionUserID = errors.New("study session user ID cannot be empty")
	ErrInvalidSessionTime = errors.New("study session end time must not precede start time")
	ErrInvalidSessionSize = errors.New("study session counts must be non-negative and correct count cannot exceed review count")
)

// StudySession summarises one submitted batch. It is written once and never
// updated.
type StudySession struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	DeckID       *uuid.UUID `json:"deckId,omitempty"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      time.Time  `json:"endTime"`
	ReviewCount  int        `json:"reviewCount"`
	CorrectCount int        `json:"correctCount"`
	StudyMode    string     `json:"studyMode"`
}

// NewStudySession creates a session that ended at now and lasted totalTime.
func NewStudySession(
	userID uuid.UUID,
	deckID *uuid.UUID,
	studyMode string,
	reviewCount, correctCount int,
	totalTime time.Duration,
	now time.Time,
) (*StudySession, error) {
	mode := strings.TrimSpace(studyMode)
	if mode == "" {
		mode = DefaultStudyMode
	}
	if totalTime < 0 {
		totalTime = 0
	}
	end := now.UTC()

	session := &StudySession{
		ID:           uuid.New(),
		UserID:       userID,
		DeckID:       deckID,
		StartTime:    end.Add(-totalTime),
		EndTime:      end,
		ReviewCount:  reviewCount,
		CorrectCount: correctCount,
		StudyMode:    mode,
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return session, nil
}

// Validate checks if the StudySession has valid data.
func (s *StudySession) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}
	if s.EndTime.Before(s.StartTime) {
		return ErrInvalidSessionTime
	}
	if s.ReviewCount < 0 || s.CorrectCount < 0 || s.CorrectCount > s.ReviewCount {
		return ErrInvalidSessionSize
	}
	return nil
}
