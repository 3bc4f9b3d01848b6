package model

import (
	"errors"
	"fmt"
	"time"
)

// Table names shared by the local store, the change log and the remote store.
const (
	TableTodos    = "todos"
	TableSessions = "sessions"
)

var (
	// ErrNotFound is returned when a record does not exist in a store.
	ErrNotFound = errors.New("record not found")
	// ErrNotAuthenticated is returned when no user identity is available.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Record is a syncable entity: a Todo or a Session.
type Record interface {
	TableName() string
	RecordID() string
}

// Todo is a unit of user-tracked work.
type Todo struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	Icon             *string    `json:"icon,omitempty"`
	IsCompleted      bool       `json:"isCompleted"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt"`
	Category         *string    `json:"category,omitempty"`
	Priority         int        `json:"priority"`
	EstimatedMinutes *int       `json:"estimatedMinutes,omitempty"`
	ActualMinutes    int        `json:"actualMinutes"`
}

func (t *Todo) TableName() string { return TableTodos }
func (t *Todo) RecordID() string  { return t.ID }

// Validate checks the completedAt/isCompleted invariant.
func (t *Todo) Validate() error {
	if t.ID == "" {
		return errors.New("todo: empty id")
	}
	if t.IsCompleted != (t.CompletedAt != nil) {
		return fmt.Errorf("todo %s: completedAt must be set iff isCompleted", t.ID)
	}
	if t.ActualMinutes < 0 {
		return fmt.Errorf("todo %s: negative actualMinutes", t.ID)
	}
	return nil
}

// SetCompleted toggles completion and keeps CompletedAt in step with it.
func (t *Todo) SetCompleted(done bool, at time.Time) {
	t.IsCompleted = done
	if done {
		t.CompletedAt = &at
		return
	}
	t.CompletedAt = nil
}

// CategoryOr returns the todo's category or def when none is set.
func (t *Todo) CategoryOr(def string) string {
	if t.Category == nil || *t.Category == "" {
		return def
	}
	return *t.Category
}
