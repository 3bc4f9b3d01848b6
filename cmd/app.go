package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adityakmr7/focus25-sub001/internal/config"
	"github.com/adityakmr7/focus25-sub001/internal/logging"
	"github.com/adityakmr7/focus25-sub001/internal/model"
	"github.com/adityakmr7/focus25-sub001/internal/remote"
	"github.com/adityakmr7/focus25-sub001/internal/stats"
	"github.com/adityakmr7/focus25-sub001/internal/store"
	"github.com/adityakmr7/focus25-sub001/internal/syncer"
)

// memoryIdentity is the user of the in-process remote store.
const memoryIdentity = "local"

// app wires the store and both engines for one command invocation.
type app struct {
	cfg     config.Config
	store   *store.Store
	sync    *syncer.Engine
	stats   *stats.Engine
	closers []io.Closer
}

// openApp loads configuration and opens the database. Failures exit with
// status 2, as storage errors do everywhere in the CLI.
func openApp(ctx context.Context) *app {
	cfg := loadConfig()

	var err error
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		exitOnErr(err)
	}
	st, err := store.New(dbPath)
	exitOnErr(err)

	loc, err := location(cfg)
	if err != nil {
		st.Close()
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}

	logger, logCloser := logging.New("[sync] ", logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	a := &app{cfg: cfg, store: st, closers: []io.Closer{logCloser, st}}
	a.sync = syncer.New(st, newRemote(ctx, cfg),
		syncer.WithLogger(logger),
		syncer.WithTimeout(cfg.Sync.Timeout()),
	)
	a.stats = stats.New(st, stats.WithLocation(loc))
	current = a
	return a
}

// current is the app opened by the running command, closed by exit.
var current *app

// Close releases the logger and the database. It is safe to call twice.
func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
	if current == a {
		current = nil
	}
}

// exit closes the open app, if any, and terminates with code. os.Exit
// skips deferred calls, so commands exit through here.
func exit(code int) {
	if current != nil {
		current.Close()
	}
	os.Exit(code)
}

func authConfig(cfg config.Config) remote.AuthConfig {
	return remote.AuthConfig{
		ClientID:      cfg.Sync.ClientID,
		DeviceAuthURL: cfg.Sync.DeviceAuthURL,
		TokenURL:      cfg.Sync.TokenURL,
		Scopes:        cfg.Sync.Scopes,
		TokenFile:     cfg.Sync.TokenFile,
	}
}

// newRemote builds the remote store. Without a saved token the client is
// signed out and every sync reports ErrNotAuthenticated.
func newRemote(ctx context.Context, cfg config.Config) syncer.RemoteStore {
	if cfg.Sync.Endpoint == config.MemoryEndpoint {
		return remote.NewMemory(memoryIdentity)
	}
	ts, err := remote.TokenSource(ctx, authConfig(cfg))
	if err != nil && !errors.Is(err, model.ErrNotAuthenticated) {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return remote.NewClient(ctx, cfg.Sync.Endpoint, ts)
}

// location resolves --tz, then the config file, then the system zone.
func location(cfg config.Config) (*time.Location, error) {
	if tzName != "" {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid --tz value %q: %w", tzName, err)
		}
		return loc, nil
	}
	return cfg.Stats.Location()
}

// autoSync pushes a local change right away when sync is usable. A failed
// pass is not an error for the command; the change stays queued.
func (a *app) autoSync(ctx context.Context) {
	if !a.sync.Initialize(ctx) {
		return
	}
	if !a.sync.PerformSync(ctx) {
		fmt.Fprintln(os.Stderr, "Note: sync failed; the change is queued for the next sync.")
	}
}

// exitOnErr prints err and exits with status 2.
func exitOnErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	exit(2)
}
