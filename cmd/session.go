package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityakmr7/focus25-sub001/internal/model"
	"github.com/adityakmr7/focus25-sub001/internal/timecalc"
)

var (
	sessionTodo    string
	sessionBreak   bool
	sessionNumber  int
	sessionNotes   string
	sessionAbandon bool
	sessionWeek    bool
	sessionAll     bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start, stop and list focus/break sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus (or --break) session",
	Args:  cobra.NoArgs,
	RunE:  runSessionStart,
}

var sessionStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running session",
	Args:  cobra.NoArgs,
	RunE:  runSessionStop,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionRm,
}

func init() {
	sessionStartCmd.Flags().StringVar(&sessionTodo, "todo", "", "Todo id (or unique prefix) to work on")
	sessionStartCmd.Flags().BoolVar(&sessionBreak, "break", false, "Start a break instead of a focus session")
	sessionStartCmd.Flags().IntVar(&sessionNumber, "number", 0, "Pomodoro number within the current cycle")
	sessionStartCmd.Flags().StringVar(&sessionNotes, "notes", "", "Optional notes")
	sessionStopCmd.Flags().BoolVar(&sessionAbandon, "abandon", false, "Stop without completing; abandoned sessions do not count in statistics")
	sessionListCmd.Flags().BoolVar(&sessionWeek, "week", false, "Show this week's sessions")
	sessionListCmd.Flags().BoolVar(&sessionAll, "all", false, "Show all sessions")

	sessionCmd.AddCommand(sessionStartCmd, sessionStopCmd, sessionListCmd, sessionRmCmd)
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	now := time.Now()
	a := openApp(ctx)
	defer a.Close()

	// Check for a running session and abandon it.
	active, err := a.store.ActiveSession(ctx)
	exitOnErr(err)
	if active != nil {
		fmt.Fprintf(os.Stderr, "Warning: abandoning running %s session started at %s\n",
			active.Type, active.StartTime.Local().Format("15:04"))
		_, err := a.store.FinishSession(ctx, active.ID, now, false)
		exitOnErr(err)
	}

	sess := model.Session{StartTime: now, Type: model.SessionFocus}
	if sessionBreak {
		sess.Type = model.SessionBreak
	}
	if sessionTodo != "" {
		id := mustResolveTodo(ctx, a, sessionTodo)
		sess.TodoID = &id
	}
	if sessionNumber > 0 {
		sess.SessionNumber = &sessionNumber
	}
	if sessionNotes != "" {
		sess.Notes = &sessionNotes
	}

	started, err := a.store.StartSession(ctx, sess)
	exitOnErr(err)

	label := ""
	if started.TodoTitle != nil {
		label = fmt.Sprintf(" on %q", *started.TodoTitle)
	}
	fmt.Printf("Started %s session%s at %s\n", started.Type, label, now.Format("15:04:05"))

	a.autoSync(ctx)
	return nil
}

func runSessionStop(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	now := time.Now()
	a := openApp(ctx)
	defer a.Close()

	active, err := a.store.ActiveSession(ctx)
	exitOnErr(err)
	if active == nil {
		fmt.Fprintln(os.Stderr, "No running session to stop.")
		exit(1)
	}

	done, err := a.store.FinishSession(ctx, active.ID, now, !sessionAbandon)
	exitOnErr(err)

	verb := "Completed"
	if sessionAbandon {
		verb = "Abandoned"
	}
	fmt.Printf("%s %s session. Elapsed: %s\n", verb, done.Type, formatElapsed(done.Duration))

	a.autoSync(ctx)
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	now := time.Now()
	a := openApp(ctx)
	defer a.Close()

	loc, _ := location(a.cfg)
	var from, to time.Time
	switch {
	case sessionAll:
	case sessionWeek:
		from, to = timecalc.WeekRange(now.In(loc))
	default:
		from = timecalc.StartOfDay(now.In(loc))
		to = timecalc.EndOfDay(now.In(loc))
	}

	sessions, err := a.store.ListSessions(ctx)
	exitOnErr(err)

	var shown []model.Session
	for _, s := range sessions {
		if !sessionAll && (s.StartTime.Before(from) || s.StartTime.After(to)) {
			continue
		}
		shown = append(shown, s)
	}
	printSessions(os.Stdout, shown, loc)
	return nil
}

// printSessions groups sessions by start date and writes them to w.
func printSessions(w io.Writer, sessions []model.Session, loc *time.Location) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return
	}

	var currentDay string
	for _, s := range sessions {
		start := s.StartTime.In(loc)
		day := start.Format(timecalc.DayLayout)
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}

		endStr := "running"
		durStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.In(loc).Format("15:04")
			durStr = fmt.Sprintf(" (%s)", timecalc.FormatDuration(s.Duration))
		}
		if s.EndTime != nil && !s.IsCompleted {
			durStr += " abandoned"
		}

		title := ""
		if s.TodoTitle != nil {
			title = "  " + *s.TodoTitle
		}
		fmt.Fprintf(w, "%s–%s  %s  %-5s%s%s\n", start.Format("15:04"), endStr, shortID(s.ID), s.Type, title, durStr)
	}
}

func runSessionRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	sessions, err := a.store.ListSessions(ctx)
	exitOnErr(err)
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	id, err := resolveID(ids, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "session %q: %v\n", args[0], err)
		exit(1)
	}

	exitOnErr(a.store.DeleteSession(ctx, id))
	fmt.Printf("Deleted session %s\n", shortID(id))

	a.autoSync(ctx)
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
