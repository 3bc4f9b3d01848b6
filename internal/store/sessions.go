package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

const sessionColumns = `id, todo_id, todo_title, start_time, end_time, duration, type,
	session_number, is_completed, notes`

// StartSession inserts a running session. When the session references a
// todo and carries no title, the todo's current title is snapshotted.
func (s *Store) StartSession(ctx context.Context, sess model.Session) (*model.Session, error) {
	now := s.now()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartTime.IsZero() {
		sess.StartTime = now
	}
	if sess.Type == "" {
		sess.Type = model.SessionFocus
	}
	sess.EndTime = nil
	sess.Duration = 0
	sess.IsCompleted = false
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if sess.TodoID != nil && sess.TodoTitle == nil {
			t, err := getTodo(ctx, tx, *sess.TodoID)
			switch {
			case err == nil:
				title := t.Title
				sess.TodoTitle = &title
			case !errors.Is(err, model.ErrNotFound):
				return err
			}
		}
		if err := upsertSession(ctx, tx, &sess); err != nil {
			return err
		}
		return appendChange(ctx, tx, model.TableSessions, sess.ID, model.OpCreate, now)
	})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &sess, nil
}

// FinishSession sets the end time and fixes the duration. completed=false
// records an abandoned interval, which statistics ignore.
func (s *Store) FinishSession(ctx context.Context, id string, end time.Time, completed bool) (*model.Session, error) {
	var out *model.Session
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		sess, err := getSession(ctx, tx, id)
		if err != nil {
			return err
		}
		if sess.EndTime != nil {
			return fmt.Errorf("session %s already finished", id)
		}
		dur := int64(end.Sub(sess.StartTime).Seconds())
		if dur < 0 {
			dur = 0
		}
		sess.EndTime = &end
		sess.Duration = dur
		sess.IsCompleted = completed
		if err := upsertSession(ctx, tx, sess); err != nil {
			return err
		}
		out = sess
		return appendChange(ctx, tx, model.TableSessions, id, model.OpUpdate, s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("finish session %s: %w", id, err)
	}
	return out, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.ErrNotFound
		}
		return appendChange(ctx, tx, model.TableSessions, id, model.OpDelete, s.now())
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*model.Session, error) {
	sess, err := getSession(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// ActiveSession returns the most recent session without an end time, or
// nil when no timer is running.
func (s *Store) ActiveSession(ctx context.Context) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE end_time IS NULL ORDER BY start_time DESC LIMIT 1`)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return sess, nil
}

// ListSessions returns all sessions ordered by start time.
func (s *Store) ListSessions(ctx context.Context) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func getSession(ctx context.Context, q querier, id string) (*model.Session, error) {
	row := q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return sess, err
}

func upsertSession(ctx context.Context, q querier, sess *model.Session) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			todo_id = excluded.todo_id,
			todo_title = excluded.todo_title,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			duration = excluded.duration,
			type = excluded.type,
			session_number = excluded.session_number,
			is_completed = excluded.is_completed,
			notes = excluded.notes`,
		sess.ID, nullableString(sess.TodoID), nullableString(sess.TodoTitle),
		formatTime(sess.StartTime), nullableTime(sess.EndTime), sess.Duration, sess.Type,
		nullableInt(sess.SessionNumber), boolInt(sess.IsCompleted), nullableString(sess.Notes),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", sess.ID, err)
	}
	return nil
}

func scanSession(row scanner) (*model.Session, error) {
	var (
		sess                     model.Session
		todoID, todoTitle, notes sql.NullString
		endTime                  sql.NullString
		startTime                string
		number                   sql.NullInt64
		done                     int
	)
	err := row.Scan(&sess.ID, &todoID, &todoTitle, &startTime, &endTime, &sess.Duration,
		&sess.Type, &number, &done, &notes)
	if err != nil {
		return nil, err
	}
	sess.TodoID = stringPtr(todoID)
	sess.TodoTitle = stringPtr(todoTitle)
	sess.Notes = stringPtr(notes)
	sess.SessionNumber = intPtr(number)
	sess.IsCompleted = done == 1
	if sess.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if sess.EndTime, err = parseNullTime(endTime); err != nil {
		return nil, err
	}
	return &sess, nil
}
