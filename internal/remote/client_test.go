package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// fakeServer serves a Memory store over the REST contract, two documents
// per page so paging is exercised.
type fakeServer struct {
	mem      *Memory
	pageSize int
	deletes  atomic.Int32
	srv      *httptest.Server
}

func newFakeServer(t *testing.T, identity string) *fakeServer {
	t.Helper()
	f := &fakeServer{mem: NewMemory(identity), pageSize: 2}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	owner := r.URL.Query().Get("ownerId")

	switch {
	case r.Method == http.MethodGet && parts[0] == "me":
		id, _ := f.mem.Identity(r.Context())
		json.NewEncoder(w).Encode(map[string]string{"id": id})

	case r.Method == http.MethodPut && len(parts) == 2:
		var req struct {
			OwnerID string          `json:"ownerId"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mem.put(parts[0], document{ID: parts[1], OwnerID: req.OwnerID, Data: req.Data})
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete && len(parts) == 2:
		f.deletes.Add(1)
		if f.mem.Len(parts[0]) == 0 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		f.mem.Delete(r.Context(), owner, parts[0], parts[1])
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && len(parts) == 1:
		var since *time.Time
		if raw := r.URL.Query().Get("updatedSince"); raw != "" {
			ts, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			since = &ts
		}
		docs := f.mem.query(owner, parts[0], since)
		skip := 0
		fmt.Sscan(r.URL.Query().Get("skip"), &skip)
		page := listResponse{Value: []document{}}
		end := skip + f.pageSize
		if end < len(docs) {
			q := r.URL.Query()
			q.Set("skip", fmt.Sprint(end))
			page.NextLink = f.srv.URL + r.URL.Path + "?" + q.Encode()
		} else {
			end = len(docs)
		}
		if skip < end {
			page.Value = docs[skip:end]
		}
		json.NewEncoder(w).Encode(page)

	default:
		http.Error(w, "bad route", http.StatusBadRequest)
	}
}

func newTestClient(f *fakeServer) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return NewClient(context.Background(), f.srv.URL, ts)
}

func TestClientIdentity(t *testing.T) {
	f := newFakeServer(t, "user-1")
	id, err := newTestClient(f).Identity(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if id != "user-1" {
		t.Errorf("identity = %q, want user-1", id)
	}
}

func TestClientWithoutTokenSource(t *testing.T) {
	f := newFakeServer(t, "user-1")
	c := NewClient(context.Background(), f.srv.URL, nil)
	if _, err := c.Identity(context.Background()); !errors.Is(err, model.ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestClientUnauthorized(t *testing.T) {
	f := newFakeServer(t, "user-1")
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "wrong"})
	c := NewClient(context.Background(), f.srv.URL, ts)
	if _, err := c.Identity(context.Background()); !errors.Is(err, model.ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestClientUpsertAndPagedQuery(t *testing.T) {
	f := newFakeServer(t, "user-1")
	c := newTestClient(f)
	ctx := context.Background()
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		td := &model.Todo{ID: fmt.Sprintf("t%d", i), Title: fmt.Sprintf("todo %d", i), CreatedAt: created}
		if err := c.Upsert(ctx, "user-1", td); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	other := &model.Todo{ID: "x", Title: "someone else", CreatedAt: created}
	if err := c.Upsert(ctx, "user-2", other); err != nil {
		t.Fatal(err)
	}

	recs, err := c.UpdatedSince(ctx, "user-1", model.TableTodos, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Fatalf("got %d records across pages, want 5", len(recs))
	}
	for _, r := range recs {
		td, ok := r.(*model.Todo)
		if !ok {
			t.Fatalf("record type %T", r)
		}
		if !td.CreatedAt.Equal(created) {
			t.Errorf("createdAt = %v", td.CreatedAt)
		}
	}
}

func TestClientUpdatedSince(t *testing.T) {
	f := newFakeServer(t, "user-1")
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	stamps := []time.Time{base, base.Add(time.Hour)}
	f.mem.SetClock(func() time.Time {
		ts := stamps[0]
		stamps = stamps[1:]
		return ts
	})
	c := newTestClient(f)
	ctx := context.Background()

	c.Upsert(ctx, "user-1", &model.Session{ID: "old", Type: model.SessionFocus})
	c.Upsert(ctx, "user-1", &model.Session{ID: "new", Type: model.SessionBreak})

	since := base.Add(time.Minute)
	recs, err := c.UpdatedSince(ctx, "user-1", model.TableSessions, &since)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].RecordID() != "new" {
		t.Fatalf("got %v, want only new", recs)
	}
}

func TestClientDeleteMissingIsOK(t *testing.T) {
	f := newFakeServer(t, "user-1")
	c := newTestClient(f)
	if err := c.Delete(context.Background(), "user-1", model.TableTodos, "gone"); err != nil {
		t.Errorf("delete of missing document: %v", err)
	}
	if n := f.deletes.Load(); n != 1 {
		t.Errorf("deletes = %d, want 1", n)
	}
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewClient(context.Background(), srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))

	err := c.Upsert(context.Background(), "u", &model.Todo{ID: "a"})
	if !isStatus(err, http.StatusInternalServerError) {
		t.Fatalf("err = %v, want 500 status error", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q should carry the response body", err)
	}
}
