package store

import (
	"context"
	"fmt"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// The methods below are used by the sync engine to apply remote state.
// They never touch the change log, so pulled records are not pushed back.

// GetRecord loads a todo or session by table name. It returns
// model.ErrNotFound when the record does not exist.
func (s *Store) GetRecord(ctx context.Context, table, id string) (model.Record, error) {
	switch table {
	case model.TableTodos:
		t, err := getTodo(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		return t, nil
	case model.TableSessions:
		sess, err := getSession(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		return sess, nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

// PutRecord inserts or replaces rec.
func (s *Store) PutRecord(ctx context.Context, rec model.Record) error {
	switch r := rec.(type) {
	case *model.Todo:
		if err := r.Validate(); err != nil {
			return err
		}
		return upsertTodo(ctx, s.db, r)
	case *model.Session:
		if err := r.Validate(); err != nil {
			return err
		}
		return upsertSession(ctx, s.db, r)
	default:
		return fmt.Errorf("unsupported record type %T", rec)
	}
}

// RemoveRecord deletes a record. A missing record is not an error.
func (s *Store) RemoveRecord(ctx context.Context, table, id string) error {
	var err error
	switch table {
	case model.TableTodos:
		_, err = s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	case model.TableSessions:
		_, err = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	default:
		return fmt.Errorf("unknown table %q", table)
	}
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", table, id, err)
	}
	return nil
}
