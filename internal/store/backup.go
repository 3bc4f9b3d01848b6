package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// Export returns every todo, session and the settings row.
func (s *Store) Export(ctx context.Context) (*model.Snapshot, error) {
	todos, err := s.ListTodos(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return &model.Snapshot{
		ExportedAt: s.now(),
		Todos:      todos,
		Sessions:   sessions,
		Settings:   &st,
	}, nil
}

// Import upserts every record of snap in one transaction. Existing records
// with the same id are replaced; the change log is not touched.
func (s *Store) Import(ctx context.Context, snap *model.Snapshot) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range snap.Todos {
			t := &snap.Todos[i]
			if err := t.Validate(); err != nil {
				return err
			}
			if err := upsertTodo(ctx, tx, t); err != nil {
				return err
			}
		}
		for i := range snap.Sessions {
			sess := &snap.Sessions[i]
			if err := sess.Validate(); err != nil {
				return err
			}
			if err := upsertSession(ctx, tx, sess); err != nil {
				return err
			}
		}
		if snap.Settings == nil {
			return nil
		}
		st := *snap.Settings
		// Values are restored as exported, but updatedAt never moves back.
		cur, err := readSettings(ctx, tx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		case !st.UpdatedAt.After(cur.UpdatedAt):
			st.UpdatedAt = s.now()
			if !st.UpdatedAt.After(cur.UpdatedAt) {
				st.UpdatedAt = cur.UpdatedAt.Add(time.Nanosecond)
			}
		}
		return writeSettings(ctx, tx, st)
	})
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}
