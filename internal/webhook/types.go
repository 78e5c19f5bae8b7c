package webhook

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_webhook.go -package=mocks github.com/dmacdonald/folio/internal/webhook DeliveryRecorder,Publisher

// DeliveryRecorder persists delivery attempts.
type DeliveryRecorder interface {
	Record(ctx context.Context, d Delivery) error
}

// Publisher fans delivery events out to live subscribers.
type Publisher interface {
	Publish(eventType string, data any)
}

// EventDelivery is the event type published for every delivery attempt.
const EventDelivery = "webhook.delivery"

// Delivery describes one POST to /api/hooks. It never holds the body or
// the signatures.
type Delivery struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Header     string    `json:"header,omitempty"`
	BodySize   int64     `json:"body_size"`
	BodyHash   string    `json:"body_hash,omitempty"`
	Authorised bool      `json:"authorised"`
	RequestID  string    `json:"request_id,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
}

// Config holds the verifier settings.
type Config struct {
	Secret           string
	SignatureHeaders []string
	MaxBodySize      int64
}

// Default values
const (
	DefaultMaxBodySize = 1048576 // 1 MB
	DefaultHeader      = "x-signature-256"
	GitHubHeader       = "x-hub-signature-256"
)

// Response bodies.
const (
	LivenessBody     = "Hello there!"
	AuthorisedBody   = "Authorised!"
	UnauthorisedBody = "Unauthorised"
)
