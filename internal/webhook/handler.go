package webhook

import (
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Handler serves /api/hooks.
type Handler struct {
	config    Config
	recorder  DeliveryRecorder
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a handler. recorder and publisher may be nil.
func New(config Config, recorder DeliveryRecorder, publisher Publisher, logger *slog.Logger) *Handler {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if len(config.SignatureHeaders) == 0 {
		config.SignatureHeaders = []string{DefaultHeader, GitHubHeader}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		config:    config,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Liveness answers GET /api/hooks.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, LivenessBody)
}

// Receive answers POST /api/hooks.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d := Delivery{
		ID:         uuid.NewString(),
		ReceivedAt: h.now(),
		RequestID:  middleware.GetReqID(ctx),
		RemoteAddr: r.RemoteAddr,
	}

	body, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodySize))
	d.BodySize = int64(len(body))

	var signature string
	d.Header, signature = h.signature(r.Header)

	var verifyErr error
	if readErr != nil {
		verifyErr = ErrVerificationFailed
	} else {
		sum := blake3.Sum256(body)
		d.BodyHash = hex.EncodeToString(sum[:])
		verifyErr = Verify(body, signature, h.config.Secret)
	}
	d.Authorised = verifyErr == nil

	var tooLarge *http.MaxBytesError
	h.logger.Info("webhook delivery",
		"request_id", d.RequestID,
		"header", d.Header,
		"body_size", d.BodySize,
		"oversized", errors.As(readErr, &tooLarge),
		"authorised", d.Authorised,
	)

	if h.recorder != nil {
		if err := h.recorder.Record(ctx, d); err != nil {
			h.logger.Error("failed to record webhook delivery", "request_id", d.RequestID, "error", err)
		}
	}
	if h.publisher != nil {
		h.publisher.Publish(EventDelivery, d)
	}

	if !d.Authorised {
		writeText(w, http.StatusUnauthorized, UnauthorisedBody)
		return
	}
	writeText(w, http.StatusOK, AuthorisedBody)
}

// signature returns the first configured header carrying a value.
func (h *Handler) signature(header http.Header) (name, value string) {
	for _, name := range h.config.SignatureHeaders {
		if v := header.Get(name); v != "" {
			return name, v
		}
	}
	return "", ""
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
