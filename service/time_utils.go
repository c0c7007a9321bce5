package service

import (
	"time"
)

// WeekStart returns the most recent Monday 00:00 in loc, at or before now.
// This is the boundary that decides whether a weekly reset is due.
func WeekStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)

	// time.Weekday numbers Sunday as 0; shift so Monday is day 0
	daysSinceMonday := (int(local.Weekday()) + 6) % 7

	monday := local.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
}

// MonthStart returns the first instant of the current calendar month in loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}
