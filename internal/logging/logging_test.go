package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sync.log")
	l, c := New("[sync] ", Options{File: path, MaxSizeMB: 1, MaxBackups: 1})
	l.Printf("pushed %d", 3)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[sync] ") || !strings.Contains(string(data), "pushed 3") {
		t.Errorf("log = %q", data)
	}
}

func TestNewDefaultsToStderr(t *testing.T) {
	l, c := New("[sync] ", Options{})
	if l.Writer() != os.Stderr {
		t.Error("expected stderr writer")
	}
	if err := c.Close(); err != nil {
		t.Error(err)
	}
}
