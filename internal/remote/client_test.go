package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", "secret", 5*time.Second)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestKnowledgeSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/knowledge-search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Token"))

		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "go channels", body.Query)
		assert.Equal(t, 3, body.Limit)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"n1","title":"Channels","content":"buffered and unbuffered","tags":["go"],"path":"go/channels.md"},
			{"id":"n2","title":"","content":"x","tags":[{"name":"misc"}],"path":"inbox/scratch.md","drive_modified_time":"2024-03-02T10:00:00Z"}
		]`))
	})

	notes, err := c.KnowledgeSearch(context.Background(), "go channels", 3)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, "n1", notes[0].ID)
	assert.Equal(t, 3, notes[0].WordCount)
	assert.Equal(t, []string{"go"}, notes[0].Tags)

	assert.Equal(t, "scratch", notes[1].Title)
	assert.Equal(t, []string{"misc"}, notes[1].Tags)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), notes[1].Modified.UTC())
}

func TestErrorDetail(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", http.StatusUnauthorized, `{"detail":"bad token"}`, "bad token"},
		{"error field", http.StatusBadGateway, `{"error":"upstream down"}`, "upstream down"},
		{"plain body", http.StatusInternalServerError, "boom\n", "boom"},
		{"empty body", http.StatusServiceUnavailable, "", "Service Unavailable"},
		{"structured detail", http.StatusUnprocessableEntity, `{"detail":[{"msg":"limit"}]}`, `[{"msg":"limit"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.KnowledgeSearch(context.Background(), "q", 5)
			require.Error(t, err)

			var rerr *Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tc.status, rerr.Status)
			assert.Equal(t, tc.want, rerr.Detail)
		})
	}
}

func TestListNotesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("skip"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	})

	notes, err := c.ListNotes(context.Background(), 10, 50)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.NotNil(t, notes)
}

func TestDriveFiles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drive/files", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":1,"notes":[{"id":"f1","name":"Plan.md","content":"# Plan\n#todo","modifiedTime":"2024-01-05T08:00:00Z"}]}`))
	})

	files, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "f1", files[0].ID)
	require.NotNil(t, files[0].Content)
	assert.Equal(t, "# Plan\n#todo", *files[0].Content)
}

func TestSyncStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drive/sync-status", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"syncing"}`))
	})

	rep, err := c.SyncStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "syncing", rep.Status)
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.KnowledgeSearch(ctx, "q", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "small-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	c := NewCompleter(srv.URL+"/v1", "key", "small-model", 256, 0.2, 5*time.Second)
	out, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewCompleter(srv.URL, "", "m", 0, 0, time.Second)
	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}
