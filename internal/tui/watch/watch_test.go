package watch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmacdonald/folio/internal/events"
)

func event(id int64, typ string, data any) events.Event {
	b, _ := json.Marshal(data)
	return events.Event{ID: id, Type: typ, At: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Data: b}
}

func TestCountersApply(t *testing.T) {
	var c Counters
	c.Apply(event(1, events.TopicDelivery, map[string]any{"authorised": true}))
	c.Apply(event(2, events.TopicDelivery, map[string]any{"authorised": false}))
	c.Apply(event(3, events.TopicStatus, map[string]any{"outcome": "OK"}))
	c.Apply(event(4, events.TopicStatus, map[string]any{"outcome": "Unavailable"}))
	c.Apply(event(5, events.TopicRender, map[string]any{"format": "html"}))
	c.Apply(event(6, events.TopicRender, map[string]any{"format": "pdf"}))
	c.Apply(event(7, events.TopicRender, map[string]any{"format": "html", "not_modified": true}))
	c.Apply(event(8, "other", nil))

	assert.Equal(t, Counters{
		Deliveries:  2,
		Authorised:  1,
		Rejected:    1,
		ChecksOK:    1,
		Unavailable: 1,
		RendersHTML: 1,
		RendersPDF:  1,
		NotModified: 1,
	}, c)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "authorised, 12 bytes, via x-signature-256",
		describe(event(1, events.TopicDelivery, map[string]any{"authorised": true, "body_size": 12, "header": "x-signature-256"})))
	assert.Equal(t, "billing: Unavailable (draw 8)",
		describe(event(2, events.TopicStatus, map[string]any{"id": "billing", "outcome": "Unavailable", "draw": 8})))
	assert.Equal(t, "article as pdf, not modified",
		describe(event(3, events.TopicRender, map[string]any{"page": "article", "format": "pdf", "not_modified": true})))
	assert.Equal(t, `{"x":1}`, describe(event(4, "custom", map[string]any{"x": 1})))
}

func TestActivityDecay(t *testing.T) {
	var a Activity
	start := time.Now()
	a.Decay(start)
	assert.Zero(t, a.Level())

	a.OnEvent(start)
	assert.Equal(t, activityWidth, a.Level())
	a.Decay(start.Add(3 * time.Second))
	assert.Equal(t, activityWidth-1, a.Level())
	a.Decay(start.Add(time.Minute))
	assert.Zero(t, a.Level())
}

func TestModelUpdate(t *testing.T) {
	m := New("http://127.0.0.1:0", "token")
	assert.Equal(t, "Connecting to folio...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	next, cmd := m.Update(eventMsg(event(7, events.TopicDelivery, map[string]any{"authorised": false, "body_size": 3})))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, int64(7), m.lastID.Load())
	assert.Equal(t, 1, m.counters.Rejected)
	assert.True(t, m.health.Connected)
	require.Len(t, m.eventLog, 1)

	next, _ = m.Update(healthMsg{Status: "ok", UptimeSeconds: 90, Deliveries: 4})
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "FOLIO WATCH")
	assert.Contains(t, view, "1m 30s")
	assert.Contains(t, view, "stored deliveries: 4")
	assert.Contains(t, view, "webhook.delivery")

	next, _ = m.Update(sseDisconnectedMsg{})
	m = next.(Model)
	assert.False(t, m.health.Connected)
	assert.Contains(t, m.View(), "reconnecting")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSubscribe(t *testing.T) {
	hub := events.NewHub(8)
	hub.Publish(events.TopicStatus, map[string]any{"id": "a", "outcome": "OK", "draw": 2})
	hub.Publish(events.TopicStatus, map[string]any{"id": "b", "outcome": "OK", "draw": 3})

	var auth, lastEventID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		lastEventID = r.Header.Get("Last-Event-ID")
		for _, e := range hub.SnapshotSince(1) {
			_ = events.WriteSSE(w, e)
		}
	}))
	defer srv.Close()

	ch := make(chan events.Event, 4)
	msg := subscribe(srv.URL, "secret", func() int64 { return 1 }, ch)()

	assert.IsType(t, sseDisconnectedMsg{}, msg, "stream end reports a disconnect")
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "1", lastEventID)
	require.Len(t, ch, 1)
	e := <-ch
	assert.Equal(t, int64(2), e.ID)
	assert.Equal(t, events.TopicStatus, e.Type)
}

func TestSubscribeUnauthorised(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	msg := subscribe(srv.URL, "", func() int64 { return 0 }, make(chan events.Event))()
	d, ok := msg.(sseDisconnectedMsg)
	require.True(t, ok)
	assert.ErrorContains(t, d.err, "401")
}

func TestFetchHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","uptime_seconds":5,"deliveries":2}`))
	}))
	defer srv.Close()

	assert.Equal(t, healthMsg{Status: "ok", UptimeSeconds: 5, Deliveries: 2}, fetchHealth(srv.URL))
}
