package timecalc_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/adityakmr7/focus25-sub001/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{90, "1m"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
		{5400, "1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDurationHHMMSS(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDurationHHMMSS(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDurationHHMMSS(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestHoursMinutesFloor(t *testing.T) {
	if got := timecalc.Hours(7199); got != 1 {
		t.Errorf("Hours(7199) = %d, want 1", got)
	}
	if got := timecalc.Minutes(119); got != 1 {
		t.Errorf("Minutes(119) = %d, want 1", got)
	}
}

func TestWeekStart(t *testing.T) {
	// 2026-02-23 is a Monday.
	want := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday", time.Date(2026, 2, 23, 8, 0, 0, 0, time.UTC)},
		{"friday", time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timecalc.WeekStart(tt.in); !got.Equal(want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestWeekRange(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
}

func TestMonthRange(t *testing.T) {
	first, last := timecalc.MonthRange(time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC))
	if got := first.Format(timecalc.DayLayout); got != "2024-02-01" {
		t.Errorf("first = %s, want 2024-02-01", got)
	}
	if got := last.Format(timecalc.DayLayout); got != "2024-02-29" {
		t.Errorf("last = %s, want 2024-02-29", got)
	}
}

func TestDays(t *testing.T) {
	from := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 12, 1, 0, 0, 0, time.UTC)
	days := timecalc.Days(from, to, time.UTC)
	if len(days) != 3 {
		t.Fatalf("len(Days) = %d, want 3", len(days))
	}
	if got := timecalc.DayKey(days[2], time.UTC); got != "2024-03-12" {
		t.Errorf("last day = %s, want 2024-03-12", got)
	}

	if got := timecalc.Days(to, from, time.UTC); len(got) != 0 {
		t.Errorf("reversed range gave %d days, want 0", len(got))
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	if got := timecalc.DayKey(ts, berlin); got != "2024-03-11" {
		t.Errorf("DayKey in +01:00 = %s, want 2024-03-11", got)
	}
	if got := timecalc.MonthKey(ts, time.UTC); got != "2024-03" {
		t.Errorf("MonthKey = %s, want 2024-03", got)
	}
}

func TestParseDay(t *testing.T) {
	d, err := timecalc.ParseDay("2024-03-10", time.UTC)
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if !d.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDay = %v", d)
	}
	if _, err := timecalc.ParseDay("10/03/2024", time.UTC); err == nil {
		t.Error("expected error for bad layout")
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}

func TestDaysAcrossSkippedMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatal(err)
	}
	from := time.Date(2024, 9, 6, 15, 0, 0, 0, loc)
	to := time.Date(2024, 9, 10, 8, 0, 0, 0, loc)

	var got []string
	for _, d := range timecalc.Days(from, to, loc) {
		got = append(got, timecalc.DayKey(d, loc))
	}
	want := []string{"2024-09-06", "2024-09-07", "2024-09-08", "2024-09-09", "2024-09-10"}
	if len(got) != len(want) {
		t.Fatalf("Days = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Days[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestStartOfDaySkippedMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatal(err)
	}
	got := timecalc.StartOfDay(time.Date(2024, 9, 8, 10, 0, 0, 0, loc))
	if got.Day() != 8 || got.Hour() != 1 || got.Minute() != 0 {
		t.Errorf("StartOfDay = %v, want 2024-09-08 01:00 local", got)
	}
	d, err := timecalc.ParseDay("2024-09-08", loc)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(got) {
		t.Errorf("ParseDay = %v, want %v", d, got)
	}
}
