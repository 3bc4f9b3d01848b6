package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/adityakmr7/focus25-sub001/internal/timecalc"
)

var (
	statsFormat string
	statsFrom   string
	statsTo     string
	statsWeeks  int
	statsMonths int
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E06C75"))

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show productivity statistics",
}

var statsDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Per-day totals (default: this week)",
	Args:  cobra.NoArgs,
	RunE:  runStatsDaily,
}

var statsWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Per-week totals, Monday to Sunday",
	Args:  cobra.NoArgs,
	RunE:  runStatsWeekly,
}

var statsMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Per-month totals with the most productive day",
	Args:  cobra.NoArgs,
	RunE:  runStatsMonthly,
}

var statsTodoCmd = &cobra.Command{
	Use:   "todo <id>",
	Short: "Session totals for one todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatsTodo,
}

var statsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Focus time by todo category",
	Args:  cobra.NoArgs,
	RunE:  runStatsCategories,
}

var statsOverallCmd = &cobra.Command{
	Use:   "overall",
	Short: "Lifetime totals and streaks",
	Args:  cobra.NoArgs,
	RunE:  runStatsOverall,
}

var statsTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Daily focus time trend (default: last 30 days)",
	Args:  cobra.NoArgs,
	RunE:  runStatsTrend,
}

func init() {
	statsCmd.PersistentFlags().StringVar(&statsFormat, "format", "text", "Output format: text, json")
	for _, c := range []*cobra.Command{statsDailyCmd, statsTrendCmd} {
		c.Flags().StringVar(&statsFrom, "from", "", "Start date (YYYY-MM-DD)")
		c.Flags().StringVar(&statsTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	}
	statsWeeklyCmd.Flags().IntVar(&statsWeeks, "weeks", 4, "Number of weeks")
	statsMonthlyCmd.Flags().IntVar(&statsMonths, "months", 6, "Number of months")

	statsCmd.AddCommand(statsDailyCmd, statsWeeklyCmd, statsMonthlyCmd, statsTodoCmd,
		statsCategoriesCmd, statsOverallCmd, statsTrendCmd)
}

// dateRange resolves --from/--to. defaultFrom is used when --from is empty.
func dateRange(now time.Time, loc *time.Location, defaultFrom time.Time) (time.Time, time.Time, error) {
	from := defaultFrom
	to := timecalc.StartOfDay(now.In(loc))
	if statsFrom != "" {
		d, err := timecalc.ParseDay(statsFrom, loc)
		if err != nil {
			return from, to, fmt.Errorf("invalid --from: %w", err)
		}
		from = d
	} else if statsTo != "" {
		return from, to, fmt.Errorf("--from is required when --to is specified")
	}
	if statsTo != "" {
		d, err := timecalc.ParseDay(statsTo, loc)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to: %w", err)
		}
		to = d
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("--to %s is before --from %s", to.Format(timecalc.DayLayout), from.Format(timecalc.DayLayout))
	}
	return from, to, nil
}

// printJSON writes v as indented JSON when --format json is set and
// reports whether it did.
func printJSON(v any) bool {
	if statsFormat != "json" {
		return false
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
		exit(2)
	}
	fmt.Println(string(data))
	return true
}

func usageErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
}

func runStatsDaily(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	loc, _ := location(a.cfg)
	now := time.Now()
	monday, _ := timecalc.WeekRange(now.In(loc))
	from, to, err := dateRange(now, loc, monday)
	usageErr(err)

	days, err := a.stats.DailyStats(ctx, from, to)
	exitOnErr(err)
	if printJSON(days) {
		return nil
	}

	fmt.Println(headingStyle.Render(fmt.Sprintf("Daily %s → %s", from.Format(timecalc.DayLayout), to.Format(timecalc.DayLayout))))
	fmt.Printf("%-12s%8s%10s%8s%10s%7s\n", "Date", "Focus", "Time", "Breaks", "Time", "Todos")
	for _, d := range days {
		fmt.Printf("%-12s%8d%10s%8d%10s%7d\n", d.Date, d.FocusSessions, timecalc.FormatDuration(d.TotalFocusTime),
			d.BreakSessions, timecalc.FormatDuration(d.TotalBreakTime), d.CompletedTodos)
	}
	return nil
}

func runStatsWeekly(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if statsWeeks <= 0 {
		usageErr(fmt.Errorf("--weeks must be positive"))
	}
	a := openApp(ctx)
	defer a.Close()

	weeks, err := a.stats.WeeklyStats(ctx, statsWeeks)
	exitOnErr(err)
	if printJSON(weeks) {
		return nil
	}

	fmt.Println(headingStyle.Render(fmt.Sprintf("Last %d weeks", statsWeeks)))
	loc, _ := location(a.cfg)
	fmt.Printf("%-10s%-12s%8s%10s%8s%7s%10s\n", "Week", "Starting", "Focus", "Time", "Breaks", "Todos", "Avg")
	for _, w := range weeks {
		label := ""
		if start, err := timecalc.ParseDay(w.WeekStart, loc); err == nil {
			label = timecalc.ISOWeekLabel(start)
		}
		fmt.Printf("%-10s%-12s%8d%10s%8d%7d%10s\n", label, w.WeekStart, w.FocusSessions, timecalc.FormatDuration(w.TotalFocusTime),
			w.BreakSessions, w.CompletedTodos, timecalc.FormatDuration(w.AverageSessionDuration))
	}
	return nil
}

func runStatsMonthly(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if statsMonths <= 0 {
		usageErr(fmt.Errorf("--months must be positive"))
	}
	a := openApp(ctx)
	defer a.Close()

	months, err := a.stats.MonthlyStats(ctx, statsMonths)
	exitOnErr(err)
	if printJSON(months) {
		return nil
	}

	fmt.Println(headingStyle.Render("Monthly"))
	if len(months) == 0 {
		fmt.Println("No completed sessions or todos yet.")
		return nil
	}
	fmt.Printf("%-9s%8s%10s%8s%7s  %s\n", "Month", "Focus", "Time", "Breaks", "Todos", "Best day")
	for _, m := range months {
		best := m.MostProductiveDay
		if best == "" {
			best = "-"
		}
		fmt.Printf("%-9s%8d%10s%8d%7d  %s\n", m.Month, m.FocusSessions, timecalc.FormatDuration(m.TotalFocusTime),
			m.BreakSessions, m.CompletedTodos, best)
	}
	return nil
}

func runStatsTodo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	id := mustResolveTodo(ctx, a, args[0])
	ts, err := a.stats.TodoStats(ctx, id)
	exitOnErr(err)
	if printJSON(ts) {
		return nil
	}
	if ts == nil {
		fmt.Println("No sessions recorded for this todo.")
		return nil
	}

	fmt.Println(headingStyle.Render(ts.Title))
	fmt.Printf("  Sessions: %d (%d completed, %.0f%%)\n", ts.TotalSessions, ts.CompletedSessions, ts.CompletionRate*100)
	fmt.Printf("  Total:    %s\n", timecalc.FormatDuration(ts.TotalTime))
	fmt.Printf("  Average:  %s\n", timecalc.FormatDuration(ts.AverageTime))
	return nil
}

func runStatsCategories(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	cats, err := a.stats.CategoryStats(ctx)
	exitOnErr(err)
	if printJSON(cats) {
		return nil
	}

	fmt.Println(headingStyle.Render("Categories"))
	if len(cats) == 0 {
		fmt.Println("No todos yet.")
		return nil
	}
	for _, c := range cats {
		fmt.Printf("%-20s%10s  %d sessions  %d/%d todos done\n", c.Category,
			timecalc.FormatDuration(c.TotalFocusTime), c.FocusSessions, c.CompletedTodos, c.TodoCount)
	}
	return nil
}

func runStatsOverall(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	o, err := a.stats.OverallStats(ctx)
	exitOnErr(err)
	if printJSON(o) {
		return nil
	}

	fmt.Println(headingStyle.Render("Overall"))
	fmt.Printf("  Focus:          %d sessions, %dh %dm\n", o.TotalFocusSessions,
		timecalc.Hours(o.TotalFocusTime), timecalc.Minutes(o.TotalFocusTime)%60)
	fmt.Printf("  Breaks:         %d sessions, %s\n", o.TotalBreakSessions, timecalc.FormatDuration(o.TotalBreakTime))
	fmt.Printf("  Todos:          %d of %d completed\n", o.CompletedTodos, o.TotalTodos)
	fmt.Printf("  Avg session:    %s\n", timecalc.FormatDuration(o.AverageSessionDuration))
	fmt.Printf("  Current streak: %d days\n", o.CurrentStreak)
	fmt.Printf("  Longest streak: %d days (last 90 days)\n", o.LongestStreak)
	return nil
}

func runStatsTrend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	loc, _ := location(a.cfg)
	now := time.Now()
	from, to, err := dateRange(now, loc, timecalc.StartOfDay(now.In(loc)).AddDate(0, 0, -29))
	usageErr(err)

	points, err := a.stats.ProductivityTrend(ctx, from, to)
	exitOnErr(err)
	if printJSON(points) {
		return nil
	}

	var peak int64
	for _, p := range points {
		if p.FocusTime > peak {
			peak = p.FocusTime
		}
	}
	fmt.Println(headingStyle.Render("Focus trend"))
	for _, p := range points {
		fmt.Printf("%s %-30s %s\n", p.Date, bar(p.FocusTime, peak, 30), timecalc.FormatDuration(p.FocusTime))
	}
	return nil
}

// bar renders v relative to max as up to width block characters.
func bar(v, max int64, width int) string {
	if max <= 0 || v <= 0 {
		return ""
	}
	n := int(v * int64(width) / max)
	if n == 0 {
		n = 1
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = '█'
	}
	return string(out)
}
