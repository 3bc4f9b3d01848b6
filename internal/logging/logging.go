// Package logging builds the *log.Logger handed to long-running
// components.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log destination. An empty File means stderr.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New returns a logger with the given prefix. When opts.File is set the
// output rotates through lumberjack; the returned closer must be closed on
// exit.
func New(prefix string, opts Options) (*log.Logger, io.Closer) {
	if opts.File == "" {
		return log.New(os.Stderr, prefix, log.LstdFlags), nopCloser{}
	}
	_ = os.MkdirAll(filepath.Dir(opts.File), 0o755)
	w := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds), w
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
