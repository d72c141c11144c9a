package domain

import "time"

// StreakState is a user's count of consecutive calendar days with at least
// one committed review.
type StreakState struct {
	Streak        int        `json:"streak"`
	LastStudyDate *time.Time `json:"lastStudyDate,omitempty"`
}

// CalendarDate returns the calendar day of t in loc, expressed as midnight UTC
// so that dates compare with Equal regardless of zone.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Touch records study on today. Studying again on the same day changes
// nothing, studying the day after the last study day extends the streak, and
// anything else restarts it at 1. The second result reports whether the state
// changed.
func (s StreakState) Touch(today time.Time) (StreakState, bool) {
	day := CalendarDate(today, today.Location())

	if s.LastStudyDate != nil {
		last := CalendarDate(*s.LastStudyDate, s.LastStudyDate.Location())
		switch {
		case last.Equal(day):
			return s, false
		case last.AddDate(0, 0, 1).Equal(day):
			return StreakState{Streak: s.Streak + 1, LastStudyDate: &day}, true
		}
	}
	return StreakState{Streak: 1, LastStudyDate: &day}, true
}
