package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

const todoColumns = `id, title, description, icon, is_completed, created_at, completed_at,
	category, priority, estimated_minutes, actual_minutes`

// CreateTodo inserts a todo and records a create in the change log.
// An empty ID is replaced by a generated one.
func (s *Store) CreateTodo(ctx context.Context, t model.Todo) (*model.Todo, error) {
	now := s.now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.IsCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertTodo(ctx, tx, &t); err != nil {
			return err
		}
		return appendChange(ctx, tx, model.TableTodos, t.ID, model.OpCreate, now)
	})
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return &t, nil
}

// UpdateTodo replaces an existing todo and records an update.
func (s *Store) UpdateTodo(ctx context.Context, t model.Todo) error {
	if err := t.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getTodo(ctx, tx, t.ID); err != nil {
			return err
		}
		if err := upsertTodo(ctx, tx, &t); err != nil {
			return err
		}
		return appendChange(ctx, tx, model.TableTodos, t.ID, model.OpUpdate, s.now())
	})
	if err != nil {
		return fmt.Errorf("update todo %s: %w", t.ID, err)
	}
	return nil
}

// SetTodoCompleted toggles completion, keeping completedAt consistent.
func (s *Store) SetTodoCompleted(ctx context.Context, id string, done bool) (*model.Todo, error) {
	var out *model.Todo
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := getTodo(ctx, tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		t.SetCompleted(done, now)
		if err := upsertTodo(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return appendChange(ctx, tx, model.TableTodos, id, model.OpUpdate, now)
	})
	if err != nil {
		return nil, fmt.Errorf("complete todo %s: %w", id, err)
	}
	return out, nil
}

// DeleteTodo hard-deletes a todo and records the delete for propagation.
// Sessions keep their todoId and todoTitle snapshot.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.ErrNotFound
		}
		return appendChange(ctx, tx, model.TableTodos, id, model.OpDelete, s.now())
	})
	if err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetTodo(ctx context.Context, id string) (*model.Todo, error) {
	t, err := getTodo(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("get todo %s: %w", id, err)
	}
	return t, nil
}

// ListTodos returns all todos, newest first.
func (s *Store) ListTodos(ctx context.Context) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

func getTodo(ctx context.Context, q querier, id string) (*model.Todo, error) {
	row := q.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return t, err
}

func upsertTodo(ctx context.Context, q querier, t *model.Todo) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			icon = excluded.icon,
			is_completed = excluded.is_completed,
			created_at = excluded.created_at,
			completed_at = excluded.completed_at,
			category = excluded.category,
			priority = excluded.priority,
			estimated_minutes = excluded.estimated_minutes,
			actual_minutes = excluded.actual_minutes`,
		t.ID, t.Title, nullableString(t.Description), nullableString(t.Icon),
		boolInt(t.IsCompleted), formatTime(t.CreatedAt), nullableTime(t.CompletedAt),
		nullableString(t.Category), t.Priority, nullableInt(t.EstimatedMinutes), t.ActualMinutes,
	)
	if err != nil {
		return fmt.Errorf("upsert todo %s: %w", t.ID, err)
	}
	return nil
}

func scanTodo(row scanner) (*model.Todo, error) {
	var (
		t                    model.Todo
		desc, icon, category sql.NullString
		completedAt          sql.NullString
		createdAt            string
		done                 int
		estimated            sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.Title, &desc, &icon, &done, &createdAt, &completedAt,
		&category, &t.Priority, &estimated, &t.ActualMinutes)
	if err != nil {
		return nil, err
	}
	t.Description = stringPtr(desc)
	t.Icon = stringPtr(icon)
	t.Category = stringPtr(category)
	t.EstimatedMinutes = intPtr(estimated)
	t.IsCompleted = done == 1
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
