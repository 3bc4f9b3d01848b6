// Package stats derives daily, weekly and monthly rollups, streaks and
// trends from sessions and todos. Nothing is cached or persisted; every
// call recomputes from the source. Only completed sessions count.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/adityakmr7/focus25-sub001/internal/model"
	"github.com/adityakmr7/focus25-sub001/internal/timecalc"
)

// UncategorizedLabel is the category of todos without one.
const UncategorizedLabel = "Uncategorized"

// streakWindow is the number of trailing days scanned for streaks.
const streakWindow = 90

// Source supplies the records statistics are computed from.
type Source interface {
	ListTodos(ctx context.Context) ([]model.Todo, error)
	ListSessions(ctx context.Context) ([]model.Session, error)
}

// Engine computes statistics. Calendar days are taken in its location.
type Engine struct {
	src Source
	loc *time.Location
	now func() time.Time
}

type Option func(*Engine)

// WithLocation sets the time zone used for day and month keys.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// snapshot is one read of the source.
type snapshot struct {
	todos    []model.Todo
	sessions []model.Session
}

func (e *Engine) load(ctx context.Context) (snapshot, error) {
	todos, err := e.src.ListTodos(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("loading todos: %w", err)
	}
	sessions, err := e.src.ListSessions(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("loading sessions: %w", err)
	}
	return snapshot{todos: todos, sessions: sessions}, nil
}

// DailyStats returns one bucket per calendar day in [start, end], zero
// filled. Sessions count on the day they started, todos on the day they
// were completed.
func (e *Engine) DailyStats(ctx context.Context, start, end time.Time) ([]DailyStats, error) {
	if timecalc.StartOfDay(end.In(e.loc)).Before(timecalc.StartOfDay(start.In(e.loc))) {
		return nil, fmt.Errorf("end %s is before start %s", end.Format(timecalc.DayLayout), start.Format(timecalc.DayLayout))
	}
	snap, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return e.daily(snap, start, end), nil
}

func (e *Engine) daily(snap snapshot, start, end time.Time) []DailyStats {
	days := timecalc.Days(start, end, e.loc)
	out := make([]DailyStats, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		key := timecalc.DayKey(d, e.loc)
		out[i] = DailyStats{Date: key}
		index[key] = i
	}

	for _, s := range snap.sessions {
		if !s.IsCompleted {
			continue
		}
		i, ok := index[timecalc.DayKey(s.StartTime, e.loc)]
		if !ok {
			continue
		}
		switch s.Type {
		case model.SessionFocus:
			out[i].FocusSessions++
			out[i].TotalFocusTime += s.Duration
		case model.SessionBreak:
			out[i].BreakSessions++
			out[i].TotalBreakTime += s.Duration
		}
	}
	for _, t := range snap.todos {
		if !t.IsCompleted || t.CompletedAt == nil {
			continue
		}
		if i, ok := index[timecalc.DayKey(*t.CompletedAt, e.loc)]; ok {
			out[i].CompletedTodos++
		}
	}
	return out
}

// WeeklyStats covers the last weeks*7 days up to now, grouped by Monday
// week start, oldest first.
func (e *Engine) WeeklyStats(ctx context.Context, weeks int) ([]WeeklyStats, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("weeks must be positive, got %d", weeks)
	}
	now := e.now().In(e.loc)
	days, err := e.DailyStats(ctx, now.AddDate(0, 0, -weeks*7), now)
	if err != nil {
		return nil, err
	}

	var out []WeeklyStats
	index := map[string]int{}
	for _, d := range days {
		day, err := timecalc.ParseDay(d.Date, e.loc)
		if err != nil {
			return nil, err
		}
		key := timecalc.DayKey(timecalc.WeekStart(day), e.loc)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, WeeklyStats{WeekStart: key})
		}
		w := &out[i]
		w.FocusSessions += d.FocusSessions
		w.TotalFocusTime += d.TotalFocusTime
		w.CompletedTodos += d.CompletedTodos
		w.BreakSessions += d.BreakSessions
		w.TotalBreakTime += d.TotalBreakTime
	}
	for i := range out {
		w := &out[i]
		w.AverageSessionDuration = average(w.TotalFocusTime+w.TotalBreakTime, w.FocusSessions+w.BreakSessions)
	}
	return out, nil
}

// MonthlyStats groups every month that has activity and returns the most
// recent months of them, oldest first.
func (e *Engine) MonthlyStats(ctx context.Context, months int) ([]MonthlyStats, error) {
	if months <= 0 {
		return nil, fmt.Errorf("months must be positive, got %d", months)
	}
	snap, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	byMonth := map[string]*MonthlyStats{}
	get := func(key string) *MonthlyStats {
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyStats{Month: key}
			byMonth[key] = m
		}
		return m
	}
	for _, s := range snap.sessions {
		if !s.IsCompleted {
			continue
		}
		m := get(timecalc.MonthKey(s.StartTime, e.loc))
		switch s.Type {
		case model.SessionFocus:
			m.FocusSessions++
			m.TotalFocusTime += s.Duration
		case model.SessionBreak:
			m.BreakSessions++
			m.TotalBreakTime += s.Duration
		}
	}
	for _, t := range snap.todos {
		if t.IsCompleted && t.CompletedAt != nil {
			get(timecalc.MonthKey(*t.CompletedAt, e.loc)).CompletedTodos++
		}
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > months {
		keys = keys[len(keys)-months:]
	}

	out := make([]MonthlyStats, 0, len(keys))
	for _, k := range keys {
		m := byMonth[k]
		first, err := time.ParseInLocation(timecalc.MonthLayout, k, e.loc)
		if err != nil {
			return nil, err
		}
		from, to := timecalc.MonthRange(first)
		m.MostProductiveDay = mostProductive(e.daily(snap, from, to))
		out = append(out, *m)
	}
	return out, nil
}

// mostProductive returns the earliest day with the highest focus time.
func mostProductive(days []DailyStats) string {
	best := ""
	var top int64
	for _, d := range days {
		if d.TotalFocusTime > top {
			top = d.TotalFocusTime
			best = d.Date
		}
	}
	return best
}

// TodoStats summarises the sessions of one todo. It returns nil when the
// todo does not exist or has no sessions.
func (e *Engine) TodoStats(ctx context.Context, todoID string) (*TodoStats, error) {
	snap, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	var todo *model.Todo
	for i := range snap.todos {
		if snap.todos[i].ID == todoID {
			todo = &snap.todos[i]
			break
		}
	}
	if todo == nil {
		return nil, nil
	}

	ts := TodoStats{TodoID: todo.ID, Title: todo.Title}
	for _, s := range snap.sessions {
		if !s.BelongsTo(todoID) {
			continue
		}
		ts.TotalSessions++
		if s.IsCompleted {
			ts.CompletedSessions++
			ts.TotalTime += s.Duration
		}
	}
	if ts.TotalSessions == 0 {
		return nil, nil
	}
	ts.AverageTime = average(ts.TotalTime, ts.CompletedSessions)
	ts.CompletionRate = float64(ts.CompletedSessions) / float64(ts.TotalSessions)
	return &ts, nil
}

// CategoryStats groups todos by category and attributes completed focus
// sessions to the category of their todo. Sessions of deleted todos and
// break sessions are not attributed. Ordered by focus time, then name.
func (e *Engine) CategoryStats(ctx context.Context) ([]CategoryStats, error) {
	snap, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	groups := map[string]*CategoryStats{}
	todoCategory := make(map[string]string, len(snap.todos))
	for _, t := range snap.todos {
		cat := t.CategoryOr(UncategorizedLabel)
		todoCategory[t.ID] = cat
		g, ok := groups[cat]
		if !ok {
			g = &CategoryStats{Category: cat}
			groups[cat] = g
		}
		g.TodoCount++
		if t.IsCompleted {
			g.CompletedTodos++
		}
	}
	for _, s := range snap.sessions {
		if !s.IsCompleted || s.Type != model.SessionFocus || s.TodoID == nil {
			continue
		}
		cat, ok := todoCategory[*s.TodoID]
		if !ok {
			continue
		}
		groups[cat].FocusSessions++
		groups[cat].TotalFocusTime += s.Duration
	}

	out := make([]CategoryStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalFocusTime != out[j].TotalFocusTime {
			return out[i].TotalFocusTime > out[j].TotalFocusTime
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// OverallStats returns lifetime totals. LongestStreak is the longest run
// of focus days within the last 90 days; CurrentStreak is the run ending
// today, or yesterday when today has no focus session yet.
func (e *Engine) OverallStats(ctx context.Context) (OverallStats, error) {
	snap, err := e.load(ctx)
	if err != nil {
		return OverallStats{}, err
	}

	var o OverallStats
	for _, s := range snap.sessions {
		if !s.IsCompleted {
			continue
		}
		switch s.Type {
		case model.SessionFocus:
			o.TotalFocusSessions++
			o.TotalFocusTime += s.Duration
		case model.SessionBreak:
			o.TotalBreakSessions++
			o.TotalBreakTime += s.Duration
		}
	}
	o.TotalTodos = len(snap.todos)
	for _, t := range snap.todos {
		if t.IsCompleted {
			o.CompletedTodos++
		}
	}
	o.AverageSessionDuration = average(o.TotalFocusTime, o.TotalFocusSessions)

	now := e.now().In(e.loc)
	days := e.daily(snap, now.AddDate(0, 0, -(streakWindow-1)), now)
	o.LongestStreak = longestStreak(days)
	o.CurrentStreak = currentStreak(days)
	return o, nil
}

func longestStreak(days []DailyStats) int {
	longest, run := 0, 0
	for _, d := range days {
		if d.FocusSessions == 0 {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

func currentStreak(days []DailyStats) int {
	i := len(days) - 1
	if i >= 0 && days[i].FocusSessions == 0 {
		i--
	}
	n := 0
	for ; i >= 0 && days[i].FocusSessions > 0; i-- {
		n++
	}
	return n
}

// ProductivityTrend projects DailyStats onto focus time, focus session
// count and completed todos.
func (e *Engine) ProductivityTrend(ctx context.Context, start, end time.Time) ([]TrendPoint, error) {
	days, err := e.DailyStats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]TrendPoint, len(days))
	for i, d := range days {
		out[i] = TrendPoint{
			Date:           d.Date,
			FocusTime:      d.TotalFocusTime,
			SessionCount:   d.FocusSessions,
			TodosCompleted: d.CompletedTodos,
		}
	}
	return out, nil
}

func average(total int64, n int) int64 {
	if n == 0 {
		return 0
	}
	return total / int64(n)
}
