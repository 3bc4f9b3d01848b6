package stats_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/adityakmr7/focus25-sub001/internal/model"
	"github.com/adityakmr7/focus25-sub001/internal/stats"
)

type fakeSource struct {
	todos    []model.Todo
	sessions []model.Session
}

func (f *fakeSource) ListTodos(context.Context) ([]model.Todo, error)       { return f.todos, nil }
func (f *fakeSource) ListSessions(context.Context) ([]model.Session, error) { return f.sessions, nil }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func focus(id, start string, dur int64) model.Session {
	return model.Session{ID: id, StartTime: at(start), Duration: dur, Type: model.SessionFocus, IsCompleted: true}
}

func brk(id, start string, dur int64) model.Session {
	return model.Session{ID: id, StartTime: at(start), Duration: dur, Type: model.SessionBreak, IsCompleted: true}
}

func completedTodo(id, completedAt string) model.Todo {
	c := at(completedAt)
	return model.Todo{ID: id, Title: id, IsCompleted: true, CompletedAt: &c, CreatedAt: c}
}

func newEngine(src stats.Source, now string) *stats.Engine {
	n := at(now)
	return stats.New(src, stats.WithLocation(time.UTC), stats.WithClock(func() time.Time { return n }))
}

func TestDailyStatsScenario(t *testing.T) {
	sess := focus("s1", "2024-03-10T09:00:00Z", 1500)
	sess.TodoID = ptr("t1")
	src := &fakeSource{
		todos:    []model.Todo{completedTodo("t1", "2024-03-10T00:00:00Z")},
		sessions: []model.Session{sess},
	}
	e := newEngine(src, "2024-03-10T12:00:00Z")

	day := at("2024-03-10T00:00:00Z")
	got, err := e.DailyStats(context.Background(), day, day)
	if err != nil {
		t.Fatal(err)
	}
	want := []stats.DailyStats{{
		Date:           "2024-03-10",
		FocusSessions:  1,
		TotalFocusTime: 1500,
		CompletedTodos: 1,
	}}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("DailyStats = %+v, want %+v", got, want)
	}
}

func TestDailyStatsZeroFilled(t *testing.T) {
	e := newEngine(&fakeSource{}, "2024-03-10T12:00:00Z")
	got, err := e.DailyStats(context.Background(), at("2024-02-27T00:00:00Z"), at("2024-03-02T00:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	wantDates := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(got) != len(wantDates) {
		t.Fatalf("got %d buckets, want %d", len(got), len(wantDates))
	}
	for i, d := range got {
		if d != (stats.DailyStats{Date: wantDates[i]}) {
			t.Errorf("bucket %d = %+v, want zero bucket for %s", i, d, wantDates[i])
		}
	}
}

func TestDailyStatsBucketing(t *testing.T) {
	late := focus("late", "2024-03-10T23:50:00Z", 1800) // ends on the 11th
	abandoned := focus("abandoned", "2024-03-11T09:00:00Z", 600)
	abandoned.IsCompleted = false
	open := model.Todo{ID: "open", CreatedAt: at("2024-03-11T08:00:00Z")}
	src := &fakeSource{
		todos:    []model.Todo{open, completedTodo("done", "2024-03-11T18:00:00Z")},
		sessions: []model.Session{late, abandoned, brk("b", "2024-03-11T10:00:00Z", 300)},
	}
	e := newEngine(src, "2024-03-11T20:00:00Z")

	got, err := e.DailyStats(context.Background(), at("2024-03-10T00:00:00Z"), at("2024-03-11T00:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	want := []stats.DailyStats{
		{Date: "2024-03-10", FocusSessions: 1, TotalFocusTime: 1800},
		{Date: "2024-03-11", BreakSessions: 1, TotalBreakTime: 300, CompletedTodos: 1},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDailyStatsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	src := &fakeSource{sessions: []model.Session{focus("s", "2024-03-11T02:00:00Z", 1500)}}
	e := stats.New(src, stats.WithLocation(loc))

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	got, _ := e.DailyStats(context.Background(), day, day)
	if got[0].FocusSessions != 1 {
		t.Errorf("02:00Z is still the 10th at UTC-5, got %+v", got)
	}
}

func TestDailyStatsAcrossSkippedMidnight(t *testing.T) {
	// Chile moves clocks from 00:00 to 01:00 on 2024-09-08.
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatal(err)
	}
	src := &fakeSource{sessions: []model.Session{
		focus("dst", "2024-09-08T05:30:00Z", 1500), // 02:30 local
		focus("last", "2024-09-15T13:00:00Z", 1500),
	}}
	now := time.Date(2024, 9, 15, 12, 0, 0, 0, loc)
	e := stats.New(src, stats.WithLocation(loc), stats.WithClock(func() time.Time { return now }))

	got, err := e.DailyStats(context.Background(), time.Date(2024, 9, 1, 12, 0, 0, 0, loc), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 15 {
		t.Fatalf("got %d buckets, want 15", len(got))
	}
	seen := map[string]bool{}
	for i, d := range got {
		want := time.Date(2024, 9, 1+i, 12, 0, 0, 0, loc).Format("2006-01-02")
		if d.Date != want {
			t.Errorf("bucket %d = %s, want %s", i, d.Date, want)
		}
		if seen[d.Date] {
			t.Errorf("duplicate bucket %s", d.Date)
		}
		seen[d.Date] = true
	}
	if got[7].FocusSessions != 1 || got[14].FocusSessions != 1 {
		t.Errorf("2024-09-08 = %+v, 2024-09-15 = %+v", got[7], got[14])
	}
}

func TestDailyStatsRejectsInvertedRange(t *testing.T) {
	e := newEngine(&fakeSource{}, "2024-03-10T12:00:00Z")
	if _, err := e.DailyStats(context.Background(), at("2024-03-10T00:00:00Z"), at("2024-03-09T00:00:00Z")); err == nil {
		t.Error("expected error for end before start")
	}
}

func TestWeeklyStatsSundayBelongsToPreviousWeek(t *testing.T) {
	// 2024-03-03 and 2024-03-10 are Sundays.
	src := &fakeSource{sessions: []model.Session{
		focus("sun-before", "2024-03-03T10:00:00Z", 1200),
		focus("mon", "2024-03-04T10:00:00Z", 1500),
		brk("mon-break", "2024-03-04T10:30:00Z", 300),
		focus("sun", "2024-03-10T10:00:00Z", 1500),
	}}
	e := newEngine(src, "2024-03-10T12:00:00Z")

	got, err := e.WeeklyStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d weeks, want 2: %+v", len(got), got)
	}
	if got[0].WeekStart != "2024-02-26" || got[0].FocusSessions != 1 || got[0].TotalFocusTime != 1200 {
		t.Errorf("week 0 = %+v", got[0])
	}
	w := got[1]
	if w.WeekStart != "2024-03-04" || w.FocusSessions != 2 || w.BreakSessions != 1 {
		t.Errorf("week 1 = %+v", w)
	}
	if w.AverageSessionDuration != (1500+300+1500)/3 {
		t.Errorf("average = %d, want %d", w.AverageSessionDuration, (1500+300+1500)/3)
	}
}

func TestWeeklyStatsEmptyAverage(t *testing.T) {
	e := newEngine(&fakeSource{}, "2024-03-10T12:00:00Z")
	got, err := e.WeeklyStats(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range got {
		if w.AverageSessionDuration != 0 {
			t.Errorf("week %s average = %d, want 0", w.WeekStart, w.AverageSessionDuration)
		}
	}
}

func TestMonthlyStats(t *testing.T) {
	src := &fakeSource{
		todos: []model.Todo{completedTodo("t", "2024-03-02T09:00:00Z")},
		sessions: []model.Session{
			focus("jan", "2024-01-15T09:00:00Z", 1500),
			focus("feb", "2024-02-10T09:00:00Z", 1500),
			focus("mar-a", "2024-03-05T09:00:00Z", 1500),
			focus("mar-b1", "2024-03-20T09:00:00Z", 1500),
			focus("mar-b2", "2024-03-20T10:00:00Z", 1500),
			brk("mar-break", "2024-03-21T09:00:00Z", 3600),
		},
	}
	e := newEngine(src, "2024-03-25T12:00:00Z")

	got, err := e.MonthlyStats(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Month != "2024-02" || got[1].Month != "2024-03" {
		t.Fatalf("months = %+v", got)
	}
	mar := got[1]
	if mar.FocusSessions != 3 || mar.TotalFocusTime != 4500 || mar.BreakSessions != 1 || mar.CompletedTodos != 1 {
		t.Errorf("march = %+v", mar)
	}
	if mar.MostProductiveDay != "2024-03-20" {
		t.Errorf("most productive day = %q, want 2024-03-20", mar.MostProductiveDay)
	}
}

func TestMonthlyStatsNoFocusDay(t *testing.T) {
	src := &fakeSource{todos: []model.Todo{completedTodo("t", "2024-03-02T09:00:00Z")}}
	e := newEngine(src, "2024-03-25T12:00:00Z")
	got, _ := e.MonthlyStats(context.Background(), 12)
	if len(got) != 1 || got[0].MostProductiveDay != "" {
		t.Errorf("got %+v", got)
	}
}

func TestTodoStats(t *testing.T) {
	s1 := focus("s1", "2024-03-10T09:00:00Z", 1500)
	s2 := focus("s2", "2024-03-10T10:00:00Z", 900)
	s3 := focus("s3", "2024-03-10T11:00:00Z", 200)
	s3.IsCompleted = false
	for _, s := range []*model.Session{&s1, &s2, &s3} {
		s.TodoID = ptr("t1")
	}
	src := &fakeSource{
		todos:    []model.Todo{{ID: "t1", Title: "write"}, {ID: "idle", Title: "never started"}},
		sessions: []model.Session{s1, s2, s3},
	}
	e := newEngine(src, "2024-03-10T12:00:00Z")
	ctx := context.Background()

	got, err := e.TodoStats(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	want := stats.TodoStats{
		TodoID: "t1", Title: "write",
		TotalSessions: 3, CompletedSessions: 2,
		TotalTime: 2400, AverageTime: 1200,
		CompletionRate: 2.0 / 3.0,
	}
	if got == nil || *got != want {
		t.Errorf("TodoStats = %+v, want %+v", got, want)
	}

	for _, id := range []string{"idle", "missing"} {
		got, err := e.TodoStats(ctx, id)
		if err != nil || got != nil {
			t.Errorf("TodoStats(%q) = %+v, %v; want nil", id, got, err)
		}
	}
}

func TestCategoryStats(t *testing.T) {
	work := model.Todo{ID: "w", Category: ptr("work")}
	loose := model.Todo{ID: "u"}
	doneLoose := completedTodo("u2", "2024-03-10T08:00:00Z")

	wf := focus("wf", "2024-03-10T09:00:00Z", 1500)
	wf.TodoID = ptr("w")
	wb := brk("wb", "2024-03-10T09:30:00Z", 300)
	wb.TodoID = ptr("w")
	uf := focus("uf", "2024-03-10T10:00:00Z", 600)
	uf.TodoID = ptr("u")
	orphan := focus("orphan", "2024-03-10T11:00:00Z", 900)
	orphan.TodoID = ptr("deleted")

	src := &fakeSource{
		todos:    []model.Todo{work, loose, doneLoose},
		sessions: []model.Session{wf, wb, uf, orphan},
	}
	got, err := newEngine(src, "2024-03-10T12:00:00Z").CategoryStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []stats.CategoryStats{
		{Category: "work", TodoCount: 1, FocusSessions: 1, TotalFocusTime: 1500},
		{Category: stats.UncategorizedLabel, TodoCount: 2, CompletedTodos: 1, FocusSessions: 1, TotalFocusTime: 600},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestOverallStatsLongestStreak(t *testing.T) {
	// focus on days 1,2,3, nothing on day 4, then days 5,6
	var sessions []model.Session
	for _, d := range []string{"01", "02", "03", "05", "06"} {
		sessions = append(sessions, focus("s"+d, "2024-03-"+d+"T09:00:00Z", 1500))
	}
	sessions = append(sessions, brk("b04", "2024-03-04T09:00:00Z", 300))
	e := newEngine(&fakeSource{sessions: sessions}, "2024-03-10T12:00:00Z")

	got, err := e.OverallStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3", got.LongestStreak)
	}
	if got.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", got.CurrentStreak)
	}
	if got.TotalFocusSessions != 5 || got.TotalFocusTime != 7500 || got.TotalBreakSessions != 1 {
		t.Errorf("totals = %+v", got)
	}
	if got.AverageSessionDuration != 1500 {
		t.Errorf("average = %d", got.AverageSessionDuration)
	}
}

func TestOverallStatsStreakWindow(t *testing.T) {
	// activity older than 90 days does not count toward the streak
	sessions := []model.Session{
		focus("old1", "2023-11-01T09:00:00Z", 1500),
		focus("old2", "2023-11-02T09:00:00Z", 1500),
		focus("recent", "2024-03-01T09:00:00Z", 1500),
	}
	e := newEngine(&fakeSource{sessions: sessions}, "2024-03-10T12:00:00Z")
	got, _ := e.OverallStats(context.Background())
	if got.LongestStreak != 1 {
		t.Errorf("LongestStreak = %d, want 1", got.LongestStreak)
	}
	if got.TotalFocusSessions != 3 {
		t.Errorf("lifetime focus sessions = %d, want 3", got.TotalFocusSessions)
	}
}

func TestOverallStatsCurrentStreak(t *testing.T) {
	tests := []struct {
		name string
		days []string
		want int
	}{
		{"through today", []string{"08", "09", "10"}, 3},
		{"today not started", []string{"07", "08", "09"}, 3},
		{"broken yesterday", []string{"07", "08", "10"}, 1},
		{"none", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sessions []model.Session
			for _, d := range tt.days {
				sessions = append(sessions, focus("s"+d, "2024-03-"+d+"T09:00:00Z", 1500))
			}
			e := newEngine(&fakeSource{sessions: sessions}, "2024-03-10T12:00:00Z")
			got, _ := e.OverallStats(context.Background())
			if got.CurrentStreak != tt.want {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.want)
			}
		})
	}
}

func TestProductivityTrend(t *testing.T) {
	src := &fakeSource{
		todos: []model.Todo{completedTodo("t", "2024-03-10T15:00:00Z")},
		sessions: []model.Session{
			focus("a", "2024-03-10T09:00:00Z", 1500),
			focus("b", "2024-03-10T10:00:00Z", 1500),
			brk("c", "2024-03-10T10:30:00Z", 300),
		},
	}
	e := newEngine(src, "2024-03-10T20:00:00Z")
	got, err := e.ProductivityTrend(context.Background(), at("2024-03-09T00:00:00Z"), at("2024-03-10T00:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	want := []stats.TrendPoint{
		{Date: "2024-03-09"},
		{Date: "2024-03-10", FocusTime: 3000, SessionCount: 2, TodosCompleted: 1},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
