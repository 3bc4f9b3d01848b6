package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export todos, sessions and settings",
	Long: `Export writes a JSON snapshot of the local database that "focus25 import"
reads back. --format csv writes the sessions only, one row per session.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON snapshot written by export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "json" && exportFormat != "csv" {
		fmt.Fprintf(os.Stderr, "invalid --format %q: want json or csv\n", exportFormat)
		exit(1)
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	snap, err := a.store.Export(ctx)
	exitOnErr(err)

	write := func(w io.Writer) error {
		if exportFormat == "csv" {
			return writeSessionsCSV(w, snap.Sessions)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	if exportOut == "" {
		exitOnErr(write(os.Stdout))
		return nil
	}
	exitOnErr(writeFileAtomic(exportOut, write))
	fmt.Fprintf(os.Stderr, "Exported %d todos and %d sessions to %s\n", len(snap.Todos), len(snap.Sessions), exportOut)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		fmt.Fprintf(os.Stderr, "invalid snapshot %s: %v\n", args[0], err)
		exit(1)
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	exitOnErr(a.store.Import(ctx, &snap))
	fmt.Printf("Imported %d todos and %d sessions.\n", len(snap.Todos), len(snap.Sessions))
	return nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".focus25-export-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeSessionsCSV(w io.Writer, sessions []model.Session) error {
	if _, err := fmt.Fprintln(w, "id,date,type,todo,start,end,duration_seconds,completed,notes"); err != nil {
		return err
	}
	for _, s := range sessions {
		todo := ""
		if s.TodoTitle != nil {
			todo = *s.TodoTitle
		}
		notes := ""
		if s.Notes != nil {
			notes = *s.Notes
		}
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Format(time.RFC3339)
		}
		_, err := fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%d,%t,%s\n",
			csvEscape(s.ID),
			s.StartTime.Local().Format("2006-01-02"),
			s.Type,
			csvEscape(todo),
			csvEscape(s.StartTime.Format(time.RFC3339)),
			csvEscape(endStr),
			s.Duration,
			s.IsCompleted,
			csvEscape(notes),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
