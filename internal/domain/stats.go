package domain

import "time"

// UserSummary is the aggregate returned after a batch commit.
type UserSummary struct {
	TotalItemsStudied int `json:"totalItemsStudied"`
	TotalSessions     int `json:"totalSessions"`
	AverageAccuracy   int `json:"averageAccuracy"`
}

// UserStats is the fuller statistics view of a user's study history.
type UserStats struct {
	UserSummary
	TotalReviews   int        `json:"totalReviews"`
	CorrectReviews int        `json:"correctReviews"`
	MasteredItems  int        `json:"masteredItems"`
	Streak         int        `json:"streak"`
	LastStudyDate  *time.Time `json:"lastStudyDate,omitempty"`
}

// AccuracyPercent converts a sum of review qualities over count reviews into
// a 0..100 score, rounding half up. It is the mean quality as a share of
// MaxQuality.
func AccuracyPercent(qualitySum, count int64) int {
	if count <= 0 || qualitySum <= 0 {
		return 0
	}
	// mean/5*100 == sum*20/count
	num := qualitySum * 100
	den := count * MaxQuality
	return int((2*num + den) / (2 * den))
}
