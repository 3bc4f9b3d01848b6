// Package remote talks to the remote record store: a REST document store
// keyed by user identity, plus an in-process implementation of the same
// contract.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// Client is an authenticated REST client for the remote record store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil token source yields a
// client whose calls all fail with model.ErrNotAuthenticated.
func NewClient(ctx context.Context, baseURL string, ts oauth2.TokenSource) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	if ts != nil {
		c.httpClient = oauth2.NewClient(ctx, ts)
	}
	return c
}

// document is the wire shape of a stored record.
type document struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Data      json.RawMessage `json:"data"`
}

// listResponse is one page of a table query.
type listResponse struct {
	Value    []document `json:"value"`
	NextLink string     `json:"nextLink"`
}

type upsertRequest struct {
	OwnerID string       `json:"ownerId"`
	Data    model.Record `json:"data"`
}

// Identity returns the id of the authenticated user.
func (c *Client) Identity(ctx context.Context) (string, error) {
	var me struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/me", nil, &me); err != nil {
		return "", err
	}
	if me.ID == "" {
		return "", model.ErrNotAuthenticated
	}
	return me.ID, nil
}

// Upsert writes rec under ownerID, replacing any existing document.
func (c *Client) Upsert(ctx context.Context, ownerID string, rec model.Record) error {
	body, err := json.Marshal(upsertRequest{OwnerID: ownerID, Data: rec})
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", rec.TableName(), rec.RecordID(), err)
	}
	return c.do(ctx, http.MethodPut, c.recordURL(rec.TableName(), rec.RecordID(), ownerID), body, nil)
}

// Delete removes a document. Deleting a missing document succeeds.
func (c *Client) Delete(ctx context.Context, ownerID, table, id string) error {
	err := c.do(ctx, http.MethodDelete, c.recordURL(table, id, ownerID), nil, nil)
	if isStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

// UpdatedSince returns every document of table owned by ownerID whose
// server-side update time is at or after since. A nil since returns all.
func (c *Client) UpdatedSince(ctx context.Context, ownerID, table string, since *time.Time) ([]model.Record, error) {
	q := url.Values{}
	q.Set("ownerId", ownerID)
	if since != nil {
		q.Set("updatedSince", since.UTC().Format(time.RFC3339Nano))
	}
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(table), q.Encode())

	var all []model.Record
	for endpoint != "" {
		var page listResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		for _, doc := range page.Value {
			rec, err := model.DecodeRecord(table, doc.Data)
			if err != nil {
				return nil, fmt.Errorf("document %s: %w", doc.ID, err)
			}
			all = append(all, rec)
		}
		endpoint = page.NextLink
	}
	return all, nil
}

func (c *Client) recordURL(table, id, ownerID string) string {
	return fmt.Sprintf("%s/%s/%s?ownerId=%s", c.baseURL, url.PathEscape(table), url.PathEscape(id), url.QueryEscape(ownerID))
}

// statusError is a non-2xx response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote store error %d: %s", e.Code, e.Body)
}

func isStatus(err error, code int) bool {
	var se *statusError
	return errors.As(err, &se) && se.Code == code
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	if c.httpClient == nil {
		return model.ErrNotAuthenticated
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote store request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return model.ErrNotAuthenticated
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding remote response: %w", err)
	}
	return nil
}
