package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityakmr7/focus25-sub001/internal/model"
	"github.com/adityakmr7/focus25-sub001/internal/syncer"
)

var (
	syncPruneOlderThan time.Duration
	syncLogLimit       int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync local todos and sessions with the remote store",
	Args:  cobra.NoArgs,
	RunE:  runSyncRun,
}

var syncEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn sync on and run a first pass",
	Args:  cobra.NoArgs,
	RunE:  runSyncEnable,
}

var syncDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn sync off; local changes keep being recorded",
	Args:  cobra.NoArgs,
	RunE:  runSyncDisable,
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one sync pass now",
	Args:  cobra.NoArgs,
	RunE:  runSyncRun,
}

var syncForceCmd = &cobra.Command{
	Use:   "force",
	Short: "Forget the last sync time and pull everything",
	Args:  cobra.NoArgs,
	RunE:  runSyncForce,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether sync is on, the last sync time and pending changes",
	Args:  cobra.NoArgs,
	RunE:  runSyncStatus,
}

var syncPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete synced change log entries",
	Args:  cobra.NoArgs,
	RunE:  runSyncPrune,
}

var syncLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent change log entries",
	Args:  cobra.NoArgs,
	RunE:  runSyncLog,
}

func init() {
	syncPruneCmd.Flags().DurationVar(&syncPruneOlderThan, "older-than", 30*24*time.Hour, "Only delete entries recorded before this age")
	syncLogCmd.Flags().IntVar(&syncLogLimit, "limit", 20, "Number of entries to show")

	syncCmd.AddCommand(syncEnableCmd, syncDisableCmd, syncRunCmd, syncForceCmd,
		syncStatusCmd, syncPruneCmd, syncLogCmd)
}

func runSyncEnable(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	ok, err := a.sync.EnableSync(ctx)
	if errors.Is(err, model.ErrNotAuthenticated) {
		fmt.Fprintln(os.Stderr, "Not logged in – run: focus25 login")
		exit(1)
	}
	if err != nil {
		// EnableSync leaves sync on when only the first pass failed.
		st, serr := a.sync.Status(ctx)
		if serr != nil || !st.Enabled {
			exitOnErr(err)
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	fmt.Println("Sync enabled.")
	fmt.Println("Only changes made from now on are pulled; run `focus25 sync force` to fetch older records.")
	if !ok {
		fmt.Fprintln(os.Stderr, "The first sync failed; it will be retried on the next change or `focus25 sync run`.")
		exit(2)
	}
	return nil
}

func runSyncDisable(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	exitOnErr(a.sync.DisableSync(ctx))
	fmt.Println("Sync disabled.")
	return nil
}

func runSyncRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	fmt.Println("Syncing...")
	res, err := a.sync.Run(ctx)
	switch {
	case errors.Is(err, syncer.ErrSyncDisabled):
		fmt.Fprintln(os.Stderr, "Sync is disabled – run: focus25 sync enable")
		exit(1)
	case errors.Is(err, model.ErrNotAuthenticated):
		fmt.Fprintln(os.Stderr, "Not logged in – run: focus25 login")
		exit(1)
	}
	printSyncResult(res)
	exitOnErr(err)
	if res.PushFailed > 0 || res.PullFailed > 0 {
		exit(2)
	}
	return nil
}

func runSyncForce(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	if !a.sync.Initialize(ctx) {
		fmt.Fprintln(os.Stderr, "Sync is not available – enable it with `focus25 sync enable` after `focus25 login`.")
		exit(1)
	}
	if !a.sync.ForceSync(ctx) {
		fmt.Fprintln(os.Stderr, "Full sync failed; see the sync log for details.")
		exit(2)
	}
	fmt.Println("Full sync complete.")
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	st, err := a.sync.Status(ctx)
	exitOnErr(err)
	printSyncStatus(st)
	return nil
}

func runSyncPrune(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	n, err := a.store.PruneSynced(ctx, time.Now().Add(-syncPruneOlderThan))
	exitOnErr(err)
	fmt.Printf("Pruned %d synced change log entries.\n", n)
	return nil
}

func runSyncLog(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	entries, err := a.store.ListChanges(ctx, syncLogLimit)
	exitOnErr(err)
	if len(entries) == 0 {
		fmt.Println("Change log is empty.")
		return nil
	}
	for _, e := range entries {
		state := "pending"
		if e.Synced {
			state = "synced"
		}
		fmt.Printf("%s  %-8s %-6s %s  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.TableName, e.Operation, shortID(e.RecordID), state)
		if e.Error != nil {
			fmt.Printf("    error: %s\n", *e.Error)
		}
	}
	return nil
}

func printSyncResult(res syncer.Result) {
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Pushed:      %d\n", res.Pushed)
	fmt.Printf("  Skipped:     %d\n", res.Skipped)
	fmt.Printf("  Created:     %d\n", res.Created)
	fmt.Printf("  Updated:     %d\n", res.Updated)
	if n := res.PushFailed + res.PullFailed; n > 0 {
		fmt.Printf("  Errors:      %d\n", n)
	}
}

func printSyncStatus(st syncer.Status) {
	if !st.Enabled {
		fmt.Printf("Sync: off (%d changes recorded locally)\n", st.Unsynced)
		return
	}
	last := "never"
	if st.LastSyncAt != nil {
		last = st.LastSyncAt.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Printf("Sync: on, last synced %s, %d pending\n", last, st.Unsynced)
}
