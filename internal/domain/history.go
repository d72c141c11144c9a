package domain

import "time"

// DefaultHistoryDays is the window used for review history buckets.
const DefaultHistoryDays = 30

// DateLayout formats calendar dates in API payloads.
const DateLayout = "2006-01-02"

// DailyReviewCount is the number of reviews on one calendar day.
type DailyReviewCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HistoryWindow returns the half-open range [from, to) covering the last days
// calendar days up to and including the day of now in loc.
func HistoryWindow(now time.Time, days int, loc *time.Location) (from, to time.Time) {
	if days < 1 {
		days = 1
	}
	today := StartOfDay(now, loc)
	return today.AddDate(0, 0, -(days - 1)), today.AddDate(0, 0, 1)
}

// BucketByDay counts events per calendar day over the window ending on the day
// of now. Every day of the window is present, oldest first, including days
// without reviews.
func BucketByDay(events []ReviewEvent, now time.Time, days int, loc *time.Location) []DailyReviewCount {
	if loc == nil {
		loc = time.UTC
	}
	from, _ := HistoryWindow(now, days, loc)
	if days < 1 {
		days = 1
	}

	buckets := make([]DailyReviewCount, days)
	index := make(map[string]int, days)
	for i := range buckets {
		key := from.AddDate(0, 0, i).Format(DateLayout)
		buckets[i] = DailyReviewCount{Date: key}
		index[key] = i
	}

	for _, e := range events {
		key := e.ReviewDate.In(loc).Format(DateLayout)
		if i, ok := index[key]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// StartOfDay returns midnight of the calendar day of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
