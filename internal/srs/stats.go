package srs

import "github.com/conorfennell/mythos/internal/domain"

// TodayStats counts the reviews completed on the current day.
type TodayStats struct {
	Date     domain.Date `json:"date"`
	Reviewed int         `json:"reviewed"`
}

// Streak tracks consecutive calendar days with at least one review.
type Streak struct {
	Current    int         `json:"current"`
	Longest    int         `json:"longest"`
	LastDay    domain.Date `json:"lastDay"`
	TodayCount int         `json:"todayCount"`
}

// Record registers one completed review on today. The streak grows only on
// the first review of a new day and restarts at 1 after a missed day.
func (s Streak) Record(today domain.Date) Streak {
	switch {
	case !s.LastDay.IsZero() && s.LastDay.Equal(today):
		s.TodayCount++
		return s
	case !s.LastDay.IsZero() && s.LastDay.AddDays(1).Equal(today):
		s.Current++
	default:
		s.Current = 1
	}
	s.LastDay = today
	s.TodayCount = 1
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}

// CurrentOn returns the streak as seen on today: a streak whose last review
// is older than yesterday is broken and reads as 0.
func (s Streak) CurrentOn(today domain.Date) int {
	if s.LastDay.IsZero() || s.LastDay.AddDays(1).Before(today) {
		return 0
	}
	return s.Current
}

// Today returns the review count for today.
func (s Streak) Today(today domain.Date) TodayStats {
	st := TodayStats{Date: today}
	if s.LastDay.Equal(today) {
		st.Reviewed = s.TodayCount
	}
	return st
}

// StreakFromDays recomputes the current streak from the set of days that
// contain a review, counting back from today or, failing that, yesterday.
func StreakFromDays(days []domain.Date, today domain.Date) int {
	seen := make(map[domain.Date]bool, len(days))
	for _, d := range days {
		seen[d] = true
	}
	check := today
	if !seen[check] {
		check = check.AddDays(-1)
		if !seen[check] {
			return 0
		}
	}
	streak := 0
	for seen[check] {
		streak++
		check = check.AddDays(-1)
	}
	return streak
}
