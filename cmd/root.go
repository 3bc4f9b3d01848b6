package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var tzName string

var rootCmd = &cobra.Command{
	Use:   "focus25",
	Short: "focus25 – pomodoro todos, sessions and statistics with offline-first sync",
	Long: `focus25 keeps todos and focus/break sessions in a local SQLite database
(~/.focus25/focus25.db) and syncs them with a remote record store when sync
is enabled. Every command works offline; changes are queued and pushed on
the next sync.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tzName, "tz", "", "IANA timezone for day boundaries (default from config, then system)")

	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
