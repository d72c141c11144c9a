package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewReviewEvent(t *testing.T) {
	userID := uuid.New()
	reviewedAt := time.Date(2024, 3, 10, 17, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	prev := InitialProgressState()
	next := ProgressState{Interval: 1, EaseFactor: 260, Status: StatusLearning}

	event, err := NewReviewEvent(userID, "kanji-1", 5, 1200, reviewedAt, prev, next)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event.ID == uuid.Nil {
		t.Error("Expected a generated ID")
	}
	if event.ReviewDate.Location() != time.UTC || !event.ReviewDate.Equal(reviewedAt) {
		t.Errorf("Expected review date normalized to UTC, got %v", event.ReviewDate)
	}
	if event.PreviousInterval != 0 || event.NewInterval != 1 {
		t.Errorf("Expected interval 0 -> 1, got %d -> %d", event.PreviousInterval, event.NewInterval)
	}
	if event.PreviousEaseFactor != 250 || event.NewEaseFactor != 260 {
		t.Errorf("Expected ease 250 -> 260, got %d -> %d", event.PreviousEaseFactor, event.NewEaseFactor)
	}
	if !event.Correct() {
		t.Error("Expected quality 5 to count as correct")
	}
}

func TestNewReviewEventValidation(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	prev := InitialProgressState()
	next := ProgressState{Interval: 1, EaseFactor: 230, Status: StatusLearning}

	tests := []struct {
		name      string
		userID    uuid.UUID
		itemID    string
		quality   int
		elapsedMs int64
		next      ProgressState
		want      error
	}{
		{"nil user", uuid.Nil, "kanji-1", 2, 0, next, ErrEmptyReviewUserID},
		{"blank item", uuid.New(), " ", 2, 0, next, ErrEmptyReviewItemID},
		{"quality too high", uuid.New(), "kanji-1", 6, 0, next, ErrInvalidQuality},
		{"negative quality", uuid.New(), "kanji-1", -1, 0, next, ErrInvalidQuality},
		{"negative elapsed", uuid.New(), "kanji-1", 2, -5, next, ErrInvalidElapsed},
		{"negative interval", uuid.New(), "kanji-1", 2, 0, ProgressState{Interval: -1, EaseFactor: 230}, ErrInvalidInterval},
		{"ease below floor", uuid.New(), "kanji-1", 2, 0, ProgressState{Interval: 1, EaseFactor: 120}, ErrInvalidEaseFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReviewEvent(tt.userID, tt.itemID, tt.quality, tt.elapsedMs, now, prev, tt.next)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReviewEventCorrect(t *testing.T) {
	for q := MinQuality; q <= MaxQuality; q++ {
		e := ReviewEvent{Quality: q}
		if got, want := e.Correct(), q >= PassingQuality; got != want {
			t.Errorf("quality %d: expected Correct()=%v, got %v", q, want, got)
		}
	}
}
