// Package status implements the randomized availability stub behind
// /api/services/{id}.
package status

import (
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Outcome is the result of one availability check.
type Outcome string

const (
	OK          Outcome = "OK"
	Unavailable Outcome = "Unavailable"
)

// DefaultThreshold is the draw above which a service reports unavailable.
const DefaultThreshold = 5

// EventStatus is the event type published for every check.
const EventStatus = "service.status"

// Result describes one check. ID never affects Outcome.
type Result struct {
	ID      string  `json:"id"`
	Draw    int     `json:"draw"`
	Outcome Outcome `json:"outcome"`
}

// Publisher fans results out to live subscribers.
type Publisher interface {
	Publish(eventType string, data any)
}

// Checker draws uniformly from [1,10].
type Checker struct {
	threshold int
	draw      func() int
}

// NewChecker creates a checker reporting Unavailable for draws above
// threshold.
func NewChecker(threshold int) *Checker {
	return &Checker{
		threshold: threshold,
		draw:      func() int { return rand.IntN(10) + 1 },
	}
}

// WithDraw replaces the random source.
func (c *Checker) WithDraw(draw func() int) *Checker {
	c.draw = draw
	return c
}

// Check performs one draw for id.
func (c *Checker) Check(id string) Result {
	n := c.draw()
	r := Result{ID: id, Draw: n, Outcome: OK}
	if n > c.threshold {
		r.Outcome = Unavailable
	}
	return r
}

// Handler serves /api/services/{id}.
type Handler struct {
	checker   *Checker
	publisher Publisher
	logger    *slog.Logger
}

// NewHandler creates a handler. publisher may be nil.
func NewHandler(checker *Checker, publisher Publisher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{checker: checker, publisher: publisher, logger: logger}
}

// Service answers GET /api/services/{id}.
func (h *Handler) Service(w http.ResponseWriter, r *http.Request) {
	res := h.checker.Check(chi.URLParam(r, "id"))

	h.logger.Debug("service check",
		"request_id", middleware.GetReqID(r.Context()),
		"id", res.ID,
		"draw", res.Draw,
		"outcome", res.Outcome,
	)
	if h.publisher != nil {
		h.publisher.Publish(EventStatus, res)
	}

	status := http.StatusOK
	if res.Outcome == Unavailable {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(res.Outcome))
}
