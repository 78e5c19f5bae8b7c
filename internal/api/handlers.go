package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmacdonald/folio/internal/article"
	"github.com/dmacdonald/folio/internal/doc"
	"github.com/dmacdonald/folio/internal/events"
	"github.com/dmacdonald/folio/internal/log"
	"github.com/dmacdonald/folio/internal/site"
	"github.com/dmacdonald/folio/internal/webhook"
)

const maxDeliveriesLimit = 500

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.deliveries != nil {
		n, err := s.deliveries.Count(r.Context())
		if err != nil {
			s.logger.Error("failed to count deliveries", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to count deliveries")
			return
		}
		resp.Deliveries = n
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleDeliveries handles GET /admin/deliveries.
func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxDeliveriesLimit)
	}

	resp := DeliveriesResponse{Deliveries: []webhook.Delivery{}}
	if s.deliveries != nil {
		list, err := s.deliveries.List(r.Context(), limit)
		if err != nil {
			s.logger.Error("failed to list deliveries", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to list deliveries")
			return
		}
		total, err := s.deliveries.Count(r.Context())
		if err != nil {
			s.logger.Error("failed to count deliveries", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to count deliveries")
			return
		}
		resp.Deliveries = list
		resp.Total = total
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleSite handles GET / (?format=html|pdf).
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	target, ok := s.target(w, r)
	if !ok {
		return
	}
	s.render(w, r, "site", target, site.Page(s.config.Site))
}

// handleArticle handles GET /w (?format=html|pdf).
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	target, ok := s.target(w, r)
	if !ok {
		return
	}
	logger := log.WithRequest(s.logger, middleware.GetReqID(r.Context()))

	src, err := article.Load(s.config.ArticlePath)
	if err != nil {
		logger.Error("failed to load article", "path", s.config.ArticlePath, "error", err)
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	a, err := s.articles.Render(src)
	if err != nil {
		logger.Error("failed to render article", "error", err)
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	etag := articleETag(a, target)
	w.Header().Set("ETag", etag)
	if !a.ModTime.IsZero() {
		w.Header().Set("Last-Modified", a.ModTime.UTC().Format(http.TimeFormat))
	}
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		s.events.Publish(events.TopicRender, RenderEvent{
			Page:        "article",
			Format:      target.String(),
			NotModified: true,
			RequestID:   middleware.GetReqID(r.Context()),
		})
		return
	}

	root := a.Page()
	if target == doc.PDF {
		root = a.Document()
	}
	s.render(w, r, "article", target, root)
}

// handleOpenAPI handles GET /openapi.json.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, buildOpenAPIDoc())
}

func (s *Server) target(w http.ResponseWriter, r *http.Request) (doc.Target, bool) {
	target, err := doc.ParseTarget(r.URL.Query().Get("format"))
	if errors.Is(err, doc.ErrUnknownTarget) {
		writeText(w, http.StatusBadRequest, "unknown format")
		return target, false
	}
	return target, true
}

// render paints root fully before writing so failures still produce a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, target doc.Target, root *doc.Node) {
	start := time.Now()
	reqID := middleware.GetReqID(r.Context())

	var buf bytes.Buffer
	if err := s.docs.Render(doc.WithTarget(r.Context(), target), &buf, root); err != nil {
		log.WithRequest(s.logger, reqID).Error("failed to render page", "page", page, "format", target.String(), "error", err)
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", target.ContentType())
	if target == doc.PDF {
		w.Header().Set("Content-Disposition", `inline; filename="`+page+`.pdf"`)
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	n, _ := w.Write(buf.Bytes())

	s.events.Publish(events.TopicRender, RenderEvent{
		Page:       page,
		Format:     target.String(),
		Bytes:      n,
		DurationMS: time.Since(start).Milliseconds(),
		RequestID:  reqID,
	})
}

// articleETag distinguishes representations of the same source.
func articleETag(a *article.Article, target doc.Target) string {
	if target == doc.Markup {
		return a.ETag()
	}
	return `"` + a.Hash + "-" + target.String() + `"`
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func writeText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = io.WriteString(w, body)
}
