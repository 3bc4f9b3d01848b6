package timecalc

import (
	"fmt"
	"time"
)

// Layouts for bucket keys.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// DayKey returns the YYYY-MM-DD calendar date of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// MonthKey returns the YYYY-MM month of t in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthLayout)
}

// ParseDay parses a YYYY-MM-DD date as the start of that day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	y, m, d := t.Date()
	return StartOfDay(time.Date(y, m, d, 12, 0, 0, 0, loc)), nil
}

// Days returns the start of every calendar day in [from, to] inclusive,
// evaluated in loc.
func Days(from, to time.Time, loc *time.Location) []time.Time {
	end := StartOfDay(to.In(loc))
	y, m, d := from.In(loc).Date()
	var days []time.Time
	for i := 0; ; i++ {
		// noon always exists, so the date never slips across a DST gap
		day := StartOfDay(time.Date(y, m, d+i, 12, 0, 0, 0, loc))
		if day.After(end) {
			return days
		}
		days = append(days, day)
	}
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Hours and Minutes floor-divide a second count for display only.
func Hours(seconds int64) int64   { return seconds / 3600 }
func Minutes(seconds int64) int64 { return seconds / 60 }

// WeekStart returns the start of the Monday of the week containing t.
// Sunday counts as day 7 and belongs to the preceding Monday.
func WeekStart(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	y, m, d := t.Date()
	return StartOfDay(time.Date(y, m, d-(wd-1), 12, 0, 0, 0, t.Location()))
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	monday := WeekStart(t)
	y, m, d := monday.Date()
	return monday, EndOfDay(time.Date(y, m, d+6, 12, 0, 0, 0, t.Location()))
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	first := StartOfDay(time.Date(y, m, 1, 12, 0, 0, 0, t.Location()))
	last := time.Date(y, m+1, 0, 12, 0, 0, 0, t.Location())
	return first, EndOfDay(last)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns the first instant of the same day: 00:00:00, or the
// end of the gap where a DST change skips midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	s := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	for s.Day() != d {
		s = s.Add(time.Hour)
	}
	return s
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
