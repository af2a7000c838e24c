package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/lumen/internal/models"
)

// drain collects every message currently buffered on ch.
func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func countPrefix(msgs []string, event string) int {
	n := 0
	for _, m := range msgs {
		if strings.HasPrefix(m, "event: "+event+"\n") {
			n++
		}
	}
	return n
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	assert.Equal(t, 0, b.ClientCount())
	ch := b.Subscribe()
	assert.Equal(t, 1, b.ClientCount())
	b.Unsubscribe(ch)
	assert.Equal(t, 0, b.ClientCount())
}

func TestPublishSyncState(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishSyncState(map[string]string{"status": "syncing"})

	select {
	case msg := <-ch:
		s := string(msg)
		assert.Contains(t, s, "event: sync.state")
		assert.Contains(t, s, `"status":"syncing"`)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishReplaced_StatsThrottle(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishReplaced(1, 1, models.KnowledgeStats{TotalNotes: 1})
	b.PublishReplaced(2, 2, models.KnowledgeStats{TotalNotes: 2})
	b.PublishReplaced(3, 3, models.KnowledgeStats{TotalNotes: 3})

	time.Sleep(50 * time.Millisecond)
	msgs := drain(ch)
	assert.Equal(t, 3, countPrefix(msgs, EventNotesReplaced))
	require.Equal(t, 1, countPrefix(msgs, EventStatsUpdated), "stats.updated must be throttled")
	assert.Contains(t, strings.Join(msgs, ""), `"totalNotes":1`)

	// The newest stats of the window arrive once it closes.
	time.Sleep(300 * time.Millisecond)
	trailing := drain(ch)
	require.Equal(t, 1, countPrefix(trailing, EventStatsUpdated))
	assert.Contains(t, trailing[0], `"totalNotes":3`)
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	b.PublishReplaced(7, 2, models.KnowledgeStats{TotalNotes: 2})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event: notes.replaced")
	assert.Contains(t, body, `"version":7`)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]int{"i": i}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	require.Equal(t, 1, b.ClientCount())

	b.Close()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "subscriber channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	assert.Equal(t, 0, b.ClientCount())

	// No-ops after close.
	b.PublishSyncState(map[string]string{"status": "idle"})
	b.PublishReplaced(1, 0, models.KnowledgeStats{})
	b.Close()
}
