package status

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmacdonald/folio/internal/log"
)

type recordingPublisher struct {
	types   []string
	results []Result
}

func (p *recordingPublisher) Publish(eventType string, data any) {
	p.types = append(p.types, eventType)
	p.results = append(p.results, data.(Result))
}

func fixed(n int) func() int { return func() int { return n } }

func TestCheckThreshold(t *testing.T) {
	for n := 1; n <= 10; n++ {
		c := NewChecker(DefaultThreshold).WithDraw(fixed(n))
		want := OK
		if n > 5 {
			want = Unavailable
		}
		assert.Equal(t, want, c.Check("svc").Outcome, "draw %d", n)
	}
}

func TestCheckIgnoresID(t *testing.T) {
	c := NewChecker(DefaultThreshold).WithDraw(fixed(7))
	for _, id := range []string{"", "a", "0", "long-service-name"} {
		r := c.Check(id)
		assert.Equal(t, Unavailable, r.Outcome)
		assert.Equal(t, id, r.ID)
	}
}

func TestCheckDrawRange(t *testing.T) {
	c := NewChecker(DefaultThreshold)
	seen := map[Outcome]bool{}
	for i := 0; i < 2000; i++ {
		r := c.Check("x")
		require.GreaterOrEqual(t, r.Draw, 1)
		require.LessOrEqual(t, r.Draw, 10)
		seen[r.Outcome] = true
	}
	assert.True(t, seen[OK])
	assert.True(t, seen[Unavailable])
}

func TestCheckUnavailableHalfTheTime(t *testing.T) {
	const trials = 10000
	c := NewChecker(DefaultThreshold)
	unavailable := 0
	draws := map[int]int{}
	for i := 0; i < trials; i++ {
		r := c.Check("x")
		draws[r.Draw]++
		if r.Outcome == Unavailable {
			unavailable++
		}
	}

	// The fraction has a standard deviation of 0.005 at this trial count.
	assert.InDelta(t, 0.5, float64(unavailable)/trials, 0.05)
	for n := 1; n <= 10; n++ {
		assert.InDelta(t, 0.1, float64(draws[n])/trials, 0.03, "draw %d", n)
	}
}

func TestThresholdOverrides(t *testing.T) {
	assert.Equal(t, OK, NewChecker(10).WithDraw(fixed(10)).Check("x").Outcome)
	assert.Equal(t, Unavailable, NewChecker(0).WithDraw(fixed(1)).Check("x").Outcome)
}

func TestServiceHandler(t *testing.T) {
	tests := []struct {
		draw int
		code int
		body string
	}{
		{draw: 1, code: http.StatusOK, body: "OK"},
		{draw: 5, code: http.StatusOK, body: "OK"},
		{draw: 6, code: http.StatusServiceUnavailable, body: "Unavailable"},
		{draw: 10, code: http.StatusServiceUnavailable, body: "Unavailable"},
	}
	for _, tt := range tests {
		pub := &recordingPublisher{}
		h := NewHandler(NewChecker(DefaultThreshold).WithDraw(fixed(tt.draw)), pub, log.Discard())

		r := chi.NewRouter()
		r.Get("/api/services/{id}", h.Service)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/services/billing", nil))

		assert.Equal(t, tt.code, rec.Code)
		assert.Equal(t, tt.body, rec.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Empty(t, rec.Header().Get("Retry-After"))

		require.Len(t, pub.results, 1)
		assert.Equal(t, EventStatus, pub.types[0])
		assert.Equal(t, "billing", pub.results[0].ID)
		assert.Equal(t, tt.draw, pub.results[0].Draw)
	}
}

func TestServiceHandlerNilPublisher(t *testing.T) {
	h := NewHandler(NewChecker(DefaultThreshold).WithDraw(fixed(3)), nil, log.Discard())
	rec := httptest.NewRecorder()
	h.Service(rec, httptest.NewRequest(http.MethodGet, "/api/services/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
