package model

import (
	"fmt"
	"time"
)

// Session types.
const (
	SessionFocus = "focus"
	SessionBreak = "break"
)

// Session is one focus or break interval. Duration is fixed in whole
// seconds when the session finishes and is never derived again from
// StartTime/EndTime. TodoTitle is a snapshot taken at creation.
type Session struct {
	ID            string     `json:"id"`
	TodoID        *string    `json:"todoId,omitempty"`
	TodoTitle     *string    `json:"todoTitle,omitempty"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	Duration      int64      `json:"duration"`
	Type          string     `json:"type"`
	SessionNumber *int       `json:"sessionNumber,omitempty"`
	IsCompleted   bool       `json:"isCompleted"`
	Notes         *string    `json:"notes,omitempty"`
}

func (s *Session) TableName() string { return TableSessions }
func (s *Session) RecordID() string  { return s.ID }

func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session: empty id")
	}
	if s.Type != SessionFocus && s.Type != SessionBreak {
		return fmt.Errorf("session %s: unknown type %q", s.ID, s.Type)
	}
	if s.Duration < 0 {
		return fmt.Errorf("session %s: negative duration", s.ID)
	}
	return nil
}

// BelongsTo reports whether the session references todoID.
func (s *Session) BelongsTo(todoID string) bool {
	return s.TodoID != nil && *s.TodoID == todoID
}
