package stats

// DailyStats is the activity of one calendar day. Times are in seconds.
type DailyStats struct {
	Date           string `json:"date"`
	FocusSessions  int    `json:"focusSessions"`
	TotalFocusTime int64  `json:"totalFocusTime"`
	CompletedTodos int    `json:"completedTodos"`
	BreakSessions  int    `json:"breakSessions"`
	TotalBreakTime int64  `json:"totalBreakTime"`
}

// WeeklyStats sums the days of a Monday-based week.
type WeeklyStats struct {
	WeekStart              string `json:"weekStart"`
	FocusSessions          int    `json:"focusSessions"`
	TotalFocusTime         int64  `json:"totalFocusTime"`
	CompletedTodos         int    `json:"completedTodos"`
	BreakSessions          int    `json:"breakSessions"`
	TotalBreakTime         int64  `json:"totalBreakTime"`
	AverageSessionDuration int64  `json:"averageSessionDuration"`
}

// MonthlyStats sums a YYYY-MM month. MostProductiveDay is the day with the
// most focus time, empty when the month has none.
type MonthlyStats struct {
	Month             string `json:"month"`
	FocusSessions     int    `json:"focusSessions"`
	TotalFocusTime    int64  `json:"totalFocusTime"`
	CompletedTodos    int    `json:"completedTodos"`
	BreakSessions     int    `json:"breakSessions"`
	TotalBreakTime    int64  `json:"totalBreakTime"`
	MostProductiveDay string `json:"mostProductiveDay"`
}

type TodoStats struct {
	TodoID            string  `json:"todoId"`
	Title             string  `json:"title"`
	TotalSessions     int     `json:"totalSessions"`
	CompletedSessions int     `json:"completedSessions"`
	TotalTime         int64   `json:"totalTime"`
	AverageTime       int64   `json:"averageTime"`
	CompletionRate    float64 `json:"completionRate"`
}

type CategoryStats struct {
	Category       string `json:"category"`
	TodoCount      int    `json:"todoCount"`
	CompletedTodos int    `json:"completedTodos"`
	FocusSessions  int    `json:"focusSessions"`
	TotalFocusTime int64  `json:"totalFocusTime"`
}

// OverallStats are lifetime totals plus streaks of days with at least one
// completed focus session.
type OverallStats struct {
	TotalFocusSessions     int   `json:"totalFocusSessions"`
	TotalFocusTime         int64 `json:"totalFocusTime"`
	TotalBreakSessions     int   `json:"totalBreakSessions"`
	TotalBreakTime         int64 `json:"totalBreakTime"`
	TotalTodos             int   `json:"totalTodos"`
	CompletedTodos         int   `json:"completedTodos"`
	AverageSessionDuration int64 `json:"averageSessionDuration"`
	LongestStreak          int   `json:"longestStreak"`
	CurrentStreak          int   `json:"currentStreak"`
}

// TrendPoint is a reporting view of one DailyStats bucket.
type TrendPoint struct {
	Date           string `json:"date"`
	FocusTime      int64  `json:"focusTime"`
	SessionCount   int    `json:"sessionCount"`
	TodosCompleted int    `json:"todosCompleted"`
}
