package remote

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// Memory is an in-process remote store. Documents are stored as JSON so
// callers never share pointers with it, and every write is stamped with
// the store's own clock, like a server would.
type Memory struct {
	mu       sync.RWMutex
	identity string
	now      func() time.Time
	docs     map[string]map[string]document // table -> id -> document
}

// NewMemory creates an empty store that authenticates as identity. An
// empty identity behaves as signed out.
func NewMemory(identity string) *Memory {
	return &Memory{
		identity: identity,
		now:      time.Now,
		docs:     make(map[string]map[string]document),
	}
}

func (m *Memory) SetIdentity(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = id
}

// SetClock replaces the clock used to stamp updatedAt.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Identity(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == "" {
		return "", model.ErrNotAuthenticated
	}
	return m.identity, nil
}

func (m *Memory) Upsert(ctx context.Context, ownerID string, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.put(rec.TableName(), document{ID: rec.RecordID(), OwnerID: ownerID, Data: data})
	return nil
}

// put stores doc, stamping UpdatedAt.
func (m *Memory) put(table string, doc document) document {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.UpdatedAt = m.now()
	t, ok := m.docs[table]
	if !ok {
		t = make(map[string]document)
		m.docs[table] = t
	}
	t[doc.ID] = doc
	return doc
}

func (m *Memory) Delete(ctx context.Context, ownerID, table, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[table][id]; ok && doc.OwnerID == ownerID {
		delete(m.docs[table], id)
	}
	return nil
}

func (m *Memory) UpdatedSince(ctx context.Context, ownerID, table string, since *time.Time) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.Record
	for _, doc := range m.query(ownerID, table, since) {
		rec, err := model.DecodeRecord(table, doc.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// query returns matching documents ordered by update time.
func (m *Memory) query(ownerID, table string, since *time.Time) []document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []document
	for _, doc := range m.docs[table] {
		if doc.OwnerID != ownerID {
			continue
		}
		if since != nil && doc.UpdatedAt.Before(*since) {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UpdatedAt.Before(docs[j].UpdatedAt)
	})
	return docs
}

// Len returns the number of documents stored for table.
func (m *Memory) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[table])
}
