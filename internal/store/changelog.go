package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// appendChange records a mutation of (table, recordID). Any unsynced entry
// for the same record is replaced, so at most one pending entry exists
// per record and it always carries the latest operation.
func appendChange(ctx context.Context, tx *sql.Tx, table, recordID, op string, at time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sync_log WHERE table_name = ? AND record_id = ? AND synced = 0`,
		table, recordID,
	); err != nil {
		return fmt.Errorf("supersede change log entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_log (id, table_name, record_id, operation, timestamp, synced) VALUES (?, ?, ?, ?, ?, 0)`,
		uuid.NewString(), table, recordID, op, formatTime(at),
	); err != nil {
		return fmt.Errorf("append change log entry: %w", err)
	}
	return nil
}

// UnsyncedChanges returns pending change log entries, oldest first.
func (s *Store) UnsyncedChanges(ctx context.Context) ([]model.ChangeLogEntry, error) {
	return s.queryChanges(ctx, `WHERE synced = 0 ORDER BY timestamp, seq`)
}

// ListChanges returns the most recent entries, newest first.
func (s *Store) ListChanges(ctx context.Context, limit int) ([]model.ChangeLogEntry, error) {
	return s.queryChanges(ctx, fmt.Sprintf(`ORDER BY timestamp DESC, seq DESC LIMIT %d`, limit))
}

func (s *Store) queryChanges(ctx context.Context, clause string) ([]model.ChangeLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, table_name, record_id, operation, timestamp, synced, error FROM sync_log `+clause)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var entries []model.ChangeLogEntry
	for rows.Next() {
		var (
			e      model.ChangeLogEntry
			ts     string
			synced int
			msg    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &e.Operation, &ts, &synced, &msg); err != nil {
			return nil, err
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		e.Synced = synced == 1
		e.Error = stringPtr(msg)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkChangeSynced flags an entry as delivered and clears its error. An
// entry superseded while its push was in flight no longer exists; that
// is not an error.
func (s *Store) MarkChangeSynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sync_log SET synced = 1, error = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark change %s synced: %w", id, err)
	}
	return nil
}

// MarkChangeError attaches the last failure to an entry, leaving it pending.
func (s *Store) MarkChangeError(ctx context.Context, id, msg string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sync_log SET error = ? WHERE id = ? AND synced = 0`, msg, id)
	if err != nil {
		return fmt.Errorf("mark change %s failed: %w", id, err)
	}
	return nil
}

func (s *Store) CountUnsynced(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_log WHERE synced = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unsynced changes: %w", err)
	}
	return n, nil
}

// PruneSynced deletes delivered entries older than before and returns how
// many were removed. Pending entries are never pruned.
func (s *Store) PruneSynced(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sync_log WHERE synced = 1 AND timestamp < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("prune change log: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
