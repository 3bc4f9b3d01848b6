package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityakmr7/focus25-sub001/internal/model"
	"github.com/adityakmr7/focus25-sub001/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running session, today's totals and sync state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	now := time.Now()
	a := openApp(ctx)
	defer a.Close()

	active, err := a.store.ActiveSession(ctx)
	exitOnErr(err)
	settings, err := a.store.Settings(ctx)
	exitOnErr(err)

	if active != nil {
		elapsed := int64(now.Sub(active.StartTime).Seconds())
		planned := int64(settings.FocusDuration)
		if active.Type == model.SessionBreak {
			planned = int64(settings.BreakDuration)
		}
		fmt.Println("Running:")
		fmt.Printf("  Type: %s\n", active.Type)
		if active.TodoTitle != nil {
			fmt.Printf("  Todo: %s\n", *active.TodoTitle)
		}
		fmt.Printf("  Since: %s\n", sinceLabel(active.StartTime.Local(), now.Local()))
		fmt.Printf("  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(elapsed))
		if remaining := planned - elapsed; remaining > 0 {
			fmt.Printf("  Remaining: %s\n", timecalc.FormatDurationHHMMSS(remaining))
		} else {
			fmt.Println("  Time is up – run: focus25 session stop")
		}
	} else {
		fmt.Println("No running session.")
	}

	days, err := a.stats.DailyStats(ctx, now, now)
	exitOnErr(err)
	today := days[0]
	fmt.Printf("Today: %d focus sessions, %s focused, %d todos completed.\n",
		today.FocusSessions, timecalc.FormatDuration(today.TotalFocusTime), today.CompletedTodos)

	st, err := a.sync.Status(ctx)
	exitOnErr(err)
	printSyncStatus(st)
	return nil
}

// sinceLabel shows the clock time, plus the date when the session started
// on an earlier day.
func sinceLabel(start, now time.Time) string {
	if timecalc.SameDay(start, now) {
		return start.Format("15:04")
	}
	return start.Format("2006-01-02 15:04")
}
