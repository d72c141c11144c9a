package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/domain"
)

// Failure kinds reported per review.
const (
	FailureKindNotFound    = "not_found"
	FailureKindPersistence = "persistence"
	FailureKindUnknown     = "unknown"
)

// FailedReview is one review of a batch that was not committed.
type FailedReview struct {
	ItemID string `json:"itemId"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

// SubmitSessionResponse is the body of a successful batch submission.
type SubmitSessionResponse struct {
	Success       bool               `json:"success"`
	SessionID     uuid.UUID          `json:"sessionId"`
	ReviewEntries int                `json:"reviewEntries"`
	FailedReviews []FailedReview     `json:"failedReviews,omitempty"`
	Stats         domain.UserSummary `json:"stats"`
}

// TotalFailureResponse is the body of a batch of which nothing committed.
type TotalFailureResponse struct {
	Success       bool           `json:"success"`
	Error         string         `json:"error"`
	FailedReviews []FailedReview `json:"failedReviews"`
	TraceID       string         `json:"traceId,omitempty"`
}

// UserStatsResponse is the body of GET /api/user/stats.
type UserStatsResponse struct {
	TotalItemsStudied int     `json:"totalItemsStudied"`
	TotalSessions     int     `json:"totalSessions"`
	TotalReviews      int     `json:"totalReviews"`
	CorrectReviews    int     `json:"correctReviews"`
	AverageAccuracy   int     `json:"averageAccuracy"`
	MasteredItems     int     `json:"masteredItems"`
	Streak            int     `json:"streak"`
	LastStudyDate     *string `json:"lastStudyDate"`
}

// ProgressResponse is one progress record as returned to clients.
type ProgressResponse struct {
	ItemID            string     `json:"itemId"`
	Interval          int        `json:"interval"`
	EaseFactor        int        `json:"easeFactor"`
	DueDate           time.Time  `json:"dueDate"`
	ReviewCount       int        `json:"reviewCount"`
	CorrectCount      int        `json:"correctCount"`
	IncorrectCount    int        `json:"incorrectCount"`
	LastReviewDate    *time.Time `json:"lastReviewDate,omitempty"`
	LastReviewQuality *int       `json:"lastReviewQuality,omitempty"`
	Status            string     `json:"status"`
}

func failedReviews(failures []domain.ItemFailure) []FailedReview {
	if len(failures) == 0 {
		return nil
	}
	out := make([]FailedReview, len(failures))
	for i, f := range failures {
		kind, msg := itemFailure(f.Err)
		out[i] = FailedReview{ItemID: f.ItemID, Kind: kind, Error: msg}
	}
	return out
}

func statsToResponse(stats *domain.UserStats) UserStatsResponse {
	resp := UserStatsResponse{
		TotalItemsStudied: stats.TotalItemsStudied,
		TotalSessions:     stats.TotalSessions,
		TotalReviews:      stats.TotalReviews,
		CorrectReviews:    stats.CorrectReviews,
		AverageAccuracy:   stats.AverageAccuracy,
		MasteredItems:     stats.MasteredItems,
		Streak:            stats.Streak,
	}
	if stats.LastStudyDate != nil {
		date := stats.LastStudyDate.Format(domain.DateLayout)
		resp.LastStudyDate = &date
	}
	return resp
}

func progressToResponse(records []domain.ProgressRecord) []ProgressResponse {
	out := make([]ProgressResponse, len(records))
	for i, rec := range records {
		out[i] = ProgressResponse{
			ItemID:         rec.ItemID,
			Interval:       rec.Interval,
			EaseFactor:     rec.EaseFactor,
			DueDate:        rec.DueDate,
			ReviewCount:    rec.ReviewCount,
			CorrectCount:   rec.CorrectCount,
			IncorrectCount: rec.IncorrectCount,
			Status:         rec.Status.String(),
		}
		if rec.ReviewCount > 0 {
			last := rec.LastReviewDate
			quality := rec.LastReviewQuality
			out[i].LastReviewDate = &last
			out[i].LastReviewQuality = &quality
		}
	}
	return out
}
