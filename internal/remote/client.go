// Package remote talks to the external knowledge backend: drive listing,
// stored notes, delegated semantic search, sync status and chat completion.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starford/lumen/internal/ingest"
	"github.com/starford/lumen/internal/models"
)

const maxErrorBody = 4 << 10

// Error is a non-success response from the backend.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("remote: status %d", e.Status)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Detail)
}

// Client is a JSON client for the backend API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	now     func() time.Time
}

// NewClient creates a backend client. timeout <= 0 leaves requests bounded
// only by their context.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// ListNotes fetches stored notes page-wise.
func (c *Client) ListNotes(ctx context.Context, skip, limit int) ([]models.Note, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var records []ingest.StoredNote
	if err := c.do(ctx, http.MethodGet, "/notes?"+q.Encode(), nil, &records); err != nil {
		return nil, err
	}
	return ingest.NotesFromStored(records, c.now()), nil
}

// DriveFiles fetches the current drive listing with file contents.
func (c *Client) DriveFiles(ctx context.Context) ([]ingest.DriveFile, error) {
	var listing ingest.DriveListing
	if err := c.do(ctx, http.MethodGet, "/drive/files", nil, &listing); err != nil {
		return nil, err
	}
	return listing.Notes, nil
}

// Fetch implements the sync source contract on top of DriveFiles.
func (c *Client) Fetch(ctx context.Context) ([]ingest.DriveFile, error) {
	return c.DriveFiles(ctx)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// KnowledgeSearch runs a delegated search and returns notes in rank order.
func (c *Client) KnowledgeSearch(ctx context.Context, query string, limit int) ([]models.Note, error) {
	var records []ingest.StoredNote
	if err := c.do(ctx, http.MethodPost, "/knowledge-search", searchRequest{Query: query, Limit: limit}, &records); err != nil {
		return nil, err
	}
	return ingest.NotesFromStored(records, c.now()), nil
}

// StatusReport is the backend's view of a sync run.
type StatusReport struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SyncStatus reads the backend sync status endpoint.
func (c *Client) SyncStatus(ctx context.Context) (StatusReport, error) {
	var rep StatusReport
	err := c.do(ctx, http.MethodGet, "/drive/sync-status", nil, &rep)
	return rep, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Api-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", path, err)
	}
	return nil
}

// decodeError pulls a message out of {"detail": ...} or {"error": ...},
// falling back to the raw body.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &Error{Status: resp.StatusCode}

	var body struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch d := body.Detail.(type) {
		case string:
			e.Detail = d
		case nil:
		default:
			b, _ := json.Marshal(d)
			e.Detail = string(b)
		}
		if e.Detail == "" {
			e.Detail = body.Error
		}
	}
	if e.Detail == "" {
		e.Detail = strings.TrimSpace(string(raw))
	}
	if e.Detail == "" {
		e.Detail = http.StatusText(resp.StatusCode)
	}
	return e
}
