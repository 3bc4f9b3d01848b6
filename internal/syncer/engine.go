// Package syncer reconciles the local change log with the remote record
// store: local mutations are pushed oldest first, then remote records
// updated since the last pass are pulled.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// DefaultTimeout bounds a single sync pass.
const DefaultTimeout = 30 * time.Second

var (
	// ErrSyncInProgress is returned when another pass is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrSyncDisabled is returned when sync is turned off in settings.
	ErrSyncDisabled = errors.New("sync is disabled")
)

// LocalStore is the local side of a sync.
type LocalStore interface {
	GetRecord(ctx context.Context, table, id string) (model.Record, error)
	PutRecord(ctx context.Context, rec model.Record) error
	UnsyncedChanges(ctx context.Context) ([]model.ChangeLogEntry, error)
	MarkChangeSynced(ctx context.Context, id string) error
	MarkChangeError(ctx context.Context, id, msg string) error
	CountUnsynced(ctx context.Context) (int, error)
	Settings(ctx context.Context) (model.UserSettings, error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.UserSettings, error)
}

// RemoteStore is the remote side of a sync. Documents are owned by the
// authenticated identity.
type RemoteStore interface {
	Identity(ctx context.Context) (string, error)
	Upsert(ctx context.Context, ownerID string, rec model.Record) error
	Delete(ctx context.Context, ownerID, table, id string) error
	UpdatedSince(ctx context.Context, ownerID, table string, since *time.Time) ([]model.Record, error)
}

// pullTables are pulled in this order.
var pullTables = []string{model.TableTodos, model.TableSessions}

// Result counts what one pass did.
type Result struct {
	Pushed     int // change log entries delivered
	Skipped    int // entries whose record no longer exists locally
	PushFailed int
	Created    int // pulled records new to this device
	Updated    int // pulled records that replaced a local copy
	PullFailed int
}

// Status is a point-in-time view of sync state.
type Status struct {
	Enabled    bool       `json:"enabled"`
	LastSyncAt *time.Time `json:"lastSyncAt"`
	Unsynced   int        `json:"unsynced"`
}

// Engine runs sync passes. At most one pass runs at a time per Engine.
type Engine struct {
	local   LocalStore
	remote  RemoteStore
	logger  *log.Logger
	timeout time.Duration
	now     func() time.Time

	inProgress atomic.Bool
}

type Option func(*Engine)

// WithLogger sets the logger. A nil logger keeps the default, which
// writes to stderr with a "[sync] " prefix.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout bounds each pass; zero or negative keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(local LocalStore, remote RemoteStore, opts ...Option) *Engine {
	e := &Engine{
		local:   local,
		remote:  remote,
		logger:  log.New(os.Stderr, "[sync] ", log.LstdFlags),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize reports whether sync is usable: a user is signed in and sync
// is enabled in settings. It changes nothing.
func (e *Engine) Initialize(ctx context.Context) bool {
	if _, err := e.remote.Identity(ctx); err != nil {
		return false
	}
	st, err := e.local.Settings(ctx)
	if err != nil {
		e.logger.Printf("reading settings: %v", err)
		return false
	}
	return st.SyncEnabled
}

// EnableSync turns sync on, stamps the watermark and runs a first pass.
// The returned bool is the outcome of that pass; sync stays enabled when
// it fails so the caller can retry.
func (e *Engine) EnableSync(ctx context.Context) (bool, error) {
	if _, err := e.remote.Identity(ctx); err != nil {
		return false, fmt.Errorf("enable sync: %w", err)
	}
	on := true
	now := e.now()
	if _, err := e.local.UpdateSettings(ctx, model.SettingsPatch{SyncEnabled: &on, LastSyncAt: &now}); err != nil {
		return false, fmt.Errorf("enable sync: %w", err)
	}
	e.logger.Printf("sync enabled")
	if _, err := e.Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// DisableSync turns sync off and clears the watermark. The remote store
// is not contacted.
func (e *Engine) DisableSync(ctx context.Context) error {
	off := false
	if _, err := e.local.UpdateSettings(ctx, model.SettingsPatch{SyncEnabled: &off, ClearLastSyncAt: true}); err != nil {
		return fmt.Errorf("disable sync: %w", err)
	}
	e.logger.Printf("sync disabled")
	return nil
}

// PerformSync runs one pass and reports whether it completed. Failures are
// logged, never returned.
func (e *Engine) PerformSync(ctx context.Context) bool {
	_, err := e.Run(ctx)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrSyncInProgress), errors.Is(err, ErrSyncDisabled):
		return false
	default:
		e.logger.Printf("sync failed: %v", err)
		return false
	}
}

// ForceSync clears the watermark so the next pull fetches every remote
// record, then runs a pass.
func (e *Engine) ForceSync(ctx context.Context) bool {
	if _, err := e.local.UpdateSettings(ctx, model.SettingsPatch{ClearLastSyncAt: true}); err != nil {
		e.logger.Printf("clearing watermark: %v", err)
		return false
	}
	return e.PerformSync(ctx)
}

func (e *Engine) Status(ctx context.Context) (Status, error) {
	st, err := e.local.Settings(ctx)
	if err != nil {
		return Status{}, err
	}
	n, err := e.local.CountUnsynced(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{Enabled: st.SyncEnabled, LastSyncAt: st.LastSyncAt, Unsynced: n}, nil
}

// Run performs one reconciliation pass. It returns ErrSyncInProgress
// without touching either store when a pass is already running, and
// ErrSyncDisabled when sync is off. Per-record failures are counted in
// the Result; a failed remote query aborts the pass before the watermark
// is advanced.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if !e.inProgress.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer e.inProgress.Store(false)

	// Remote calls share the pass deadline. Local bookkeeping uses ctx so a
	// timed out call can still be recorded on its change log entry.
	rctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	st, err := e.local.Settings(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading settings: %w", err)
	}
	if !st.SyncEnabled {
		return Result{}, ErrSyncDisabled
	}

	var res Result
	p := &pass{Engine: e, rctx: rctx}
	if err := p.push(ctx, &res); err != nil {
		return res, err
	}
	// The next watermark is taken before the first remote read, so a record
	// written elsewhere while the pull runs is fetched by the next pass.
	mark := e.now()
	if err := p.pull(ctx, st.LastSyncAt, &res); err != nil {
		return res, err
	}

	if _, err := e.local.UpdateSettings(ctx, model.SettingsPatch{LastSyncAt: &mark}); err != nil {
		return res, fmt.Errorf("stamping last sync time: %w", err)
	}
	e.logger.Printf("sync complete: %d pushed, %d skipped, %d push failed, %d created, %d updated, %d pull failed",
		res.Pushed, res.Skipped, res.PushFailed, res.Created, res.Updated, res.PullFailed)
	return res, nil
}

// pass holds state scoped to one Run.
type pass struct {
	*Engine
	rctx     context.Context
	owner    string
	ownerErr error
	resolved bool
}

// identity looks the owner up once per pass.
func (p *pass) identity() (string, error) {
	if !p.resolved {
		p.owner, p.ownerErr = p.remote.Identity(p.rctx)
		p.resolved = true
	}
	return p.owner, p.ownerErr
}

func (p *pass) push(ctx context.Context, res *Result) error {
	entries, err := p.local.UnsyncedChanges(ctx)
	if err != nil {
		return fmt.Errorf("reading change log: %w", err)
	}
	for _, entry := range entries {
		skipped, err := p.pushEntry(ctx, entry)
		if err != nil {
			res.PushFailed++
			p.logger.Printf("push %s %s/%s failed: %v", entry.Operation, entry.TableName, entry.RecordID, err)
			if merr := p.local.MarkChangeError(ctx, entry.ID, err.Error()); merr != nil {
				p.logger.Printf("recording push error for %s: %v", entry.ID, merr)
			}
			continue
		}
		if err := p.local.MarkChangeSynced(ctx, entry.ID); err != nil {
			res.PushFailed++
			p.logger.Printf("marking %s synced: %v", entry.ID, err)
			continue
		}
		if skipped {
			res.Skipped++
		} else {
			res.Pushed++
		}
	}
	return nil
}

// pushEntry delivers one change. skipped is true when a create or update
// refers to a record that is gone locally; a later delete entry, if any,
// removes it remotely.
func (p *pass) pushEntry(ctx context.Context, entry model.ChangeLogEntry) (skipped bool, err error) {
	switch entry.TableName {
	case model.TableTodos, model.TableSessions:
	default:
		return false, fmt.Errorf("unknown table %q", entry.TableName)
	}
	owner, err := p.identity()
	if err != nil {
		return false, err
	}

	switch entry.Operation {
	case model.OpCreate, model.OpUpdate:
		rec, err := p.local.GetRecord(ctx, entry.TableName, entry.RecordID)
		if errors.Is(err, model.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		return false, p.remote.Upsert(p.rctx, owner, rec)
	case model.OpDelete:
		return false, p.remote.Delete(p.rctx, owner, entry.TableName, entry.RecordID)
	default:
		return false, fmt.Errorf("unknown operation %q", entry.Operation)
	}
}

func (p *pass) pull(ctx context.Context, since *time.Time, res *Result) error {
	owner, err := p.identity()
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	for _, table := range pullTables {
		recs, err := p.remote.UpdatedSince(p.rctx, owner, table, since)
		if err != nil {
			return fmt.Errorf("pull %s: %w", table, err)
		}
		for _, rec := range recs {
			p.apply(ctx, rec, res)
		}
	}
	return nil
}

// apply writes one pulled record locally without touching the change log.
func (p *pass) apply(ctx context.Context, rec model.Record, res *Result) {
	_, err := p.local.GetRecord(ctx, rec.TableName(), rec.RecordID())
	exists := err == nil
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		res.PullFailed++
		p.logger.Printf("pull %s/%s: %v", rec.TableName(), rec.RecordID(), err)
		return
	}
	if err := p.local.PutRecord(ctx, rec); err != nil {
		res.PullFailed++
		p.logger.Printf("pull %s/%s: %v", rec.TableName(), rec.RecordID(), err)
		return
	}
	if exists {
		res.Updated++
	} else {
		res.Created++
	}
}
