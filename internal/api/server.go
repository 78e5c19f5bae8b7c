package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/dmacdonald/folio/internal/article"
	"github.com/dmacdonald/folio/internal/config"
	"github.com/dmacdonald/folio/internal/doc"
	"github.com/dmacdonald/folio/internal/events"
	"github.com/dmacdonald/folio/internal/status"
	"github.com/dmacdonald/folio/internal/webhook"
)

// DeliveryLog reads recorded webhook deliveries.
type DeliveryLog interface {
	List(ctx context.Context, limit int) ([]webhook.Delivery, error)
	Count(ctx context.Context) (int, error)
}

// Config holds API server configuration
type Config struct {
	Listen string
	// AdminToken guards /admin/*. Empty rejects every admin request.
	AdminToken     string
	AllowedOrigins []string
	ArticlePath    string
	StaticDir      string
	Site           config.SiteConfig
}

// Server represents the HTTP server
type Server struct {
	config     Config
	hooks      *webhook.Handler
	services   *status.Handler
	articles   *article.Renderer
	docs       *doc.Renderer
	deliveries DeliveryLog
	events     *events.Hub
	logger     *slog.Logger
	server     *http.Server
	startedAt  time.Time
}

// New creates a new server instance. deliveries may be nil.
func New(config Config, hooks *webhook.Handler, services *status.Handler, articles *article.Renderer, docs *doc.Renderer, deliveries DeliveryLog, hub *events.Hub, logger *slog.Logger) *Server {
	if config.ArticlePath == "" {
		config.ArticlePath = article.DefaultPath
	}
	if hub == nil {
		hub = events.NewHub(events.DefaultCapacity)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:     config,
		hooks:      hooks,
		services:   services,
		articles:   articles,
		docs:       docs,
		deliveries: deliveries,
		events:     hub,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

// Start starts the HTTP server (blocking)
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/openapi.json", s.handleOpenAPI)
	r.Get("/", s.handleSite)
	r.Get("/w", s.handleArticle)

	if dir := s.config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
		}
	}

	r.Route("/api", func(r chi.Router) {
		if len(s.config.AllowedOrigins) > 0 {
			r.Use(cors.New(cors.Options{
				AllowedOrigins: s.config.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost},
				AllowedHeaders: []string{"Content-Type", webhook.DefaultHeader, webhook.GitHubHeader},
				MaxAge:         600,
			}).Handler)
		}
		r.Get("/hooks", s.hooks.Liveness)
		r.Post("/hooks", s.hooks.Receive)
		r.Get("/services/{id}", s.services.Service)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/events", s.events.ServeSSE)
		r.Get("/deliveries", s.handleDeliveries)
	})

	return r
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
