package events

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSnapshotRing(t *testing.T) {
	h := NewHub(3)
	for i := 0; i < 5; i++ {
		h.Publish(TopicStatus, map[string]int{"n": i})
	}

	snap := h.SnapshotSince(0)
	require.Len(t, snap, 3)
	assert.Equal(t, []int64{3, 4, 5}, []int64{snap[0].ID, snap[1].ID, snap[2].ID})
	assert.JSONEq(t, `{"n":4}`, string(snap[2].Data))

	since := h.SnapshotSince(4)
	require.Len(t, since, 1)
	assert.Equal(t, int64(5), since[0].ID)

	assert.Empty(t, h.SnapshotSince(5))
}

func TestHubPublishPayloads(t *testing.T) {
	h := NewHub(0)
	h.Publish(TopicRender, nil)
	h.Publish(TopicRender, math.Inf(1))

	snap := h.SnapshotSince(0)
	require.Len(t, snap, 2)
	assert.Equal(t, "{}", string(snap[0].Data))
	assert.Equal(t, "{}", string(snap[1].Data), "unmarshalable payloads become {}")
	assert.False(t, snap[0].At.IsZero())
}

func TestHubSubscribe(t *testing.T) {
	h := NewHub(8)
	ch, cancel := h.Subscribe()

	h.Publish(TopicDelivery, map[string]bool{"authorised": true})
	select {
	case ev := <-ch:
		assert.Equal(t, TopicDelivery, ev.Type)
		assert.JSONEq(t, `{"authorised":true}`, string(ev.Data))
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	h.Publish(TopicDelivery, nil)
}

func TestServeSSEReplaysSnapshot(t *testing.T) {
	h := NewHub(8)
	h.Publish(TopicStatus, map[string]string{"outcome": "OK"})
	h.Publish(TopicStatus, map[string]string{"outcome": "Unavailable"})
	h.Publish(TopicRender, map[string]string{"page": "site"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", "1")
	rec := httptest.NewRecorder()
	h.ServeSSE(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var got []Event
	require.NoError(t, ReadSSE(strings.NewReader(rec.Body.String()), func(ev Event) error {
		got = append(got, ev)
		return nil
	}))
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, TopicRender, got[1].Type)
	assert.JSONEq(t, `{"page":"site"}`, string(got[1].Data))
	assert.Contains(t, rec.Body.String(), "event: service.status\n")
}

func TestServeSSELive(t *testing.T) {
	h := NewHub(8)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeSSE))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				h.Publish(TopicDelivery, map[string]string{"id": "live"})
			}
		}
	}()
	defer close(done)

	errStop := errors.New("stop")
	var first Event
	err = ReadSSE(resp.Body, func(ev Event) error {
		first = ev
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	assert.Equal(t, TopicDelivery, first.Type)
	assert.JSONEq(t, `{"id":"live"}`, string(first.Data))
}

func TestParseLastEventID(t *testing.T) {
	assert.Equal(t, int64(0), parseLastEventID(""))
	assert.Equal(t, int64(0), parseLastEventID("abc"))
	assert.Equal(t, int64(0), parseLastEventID("-4"))
	assert.Equal(t, int64(42), parseLastEventID(" 42 "))
}
