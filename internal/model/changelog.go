package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change log operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeLogEntry records one local mutation that still has to reach, or
// has reached, the remote store.
type ChangeLogEntry struct {
	ID        string    `json:"id"`
	TableName string    `json:"tableName"`
	RecordID  string    `json:"recordId"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
	Synced    bool      `json:"synced"`
	Error     *string   `json:"error,omitempty"`
}

// Snapshot is the export/import payload of a local store.
type Snapshot struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Todos      []Todo        `json:"todos"`
	Sessions   []Session     `json:"sessions"`
	Settings   *UserSettings `json:"settings,omitempty"`
}

// DecodeRecord decodes a JSON document of the given table.
func DecodeRecord(table string, data []byte) (Record, error) {
	switch table {
	case TableTodos:
		var t Todo
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decoding todo: %w", err)
		}
		return &t, nil
	case TableSessions:
		var s Session
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}
