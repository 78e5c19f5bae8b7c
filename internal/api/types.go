package api

import "github.com/dmacdonald/folio/internal/webhook"

// ErrorResponse is returned on JSON endpoint errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Deliveries    int    `json:"deliveries"`
}

// DeliveriesResponse is returned by GET /admin/deliveries.
type DeliveriesResponse struct {
	Deliveries []webhook.Delivery `json:"deliveries"`
	Total      int                `json:"total"`
}

// RenderEvent is published on page.render after every page response.
type RenderEvent struct {
	Page        string `json:"page"`
	Format      string `json:"format"`
	Bytes       int    `json:"bytes"`
	NotModified bool   `json:"not_modified,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	RequestID   string `json:"request_id,omitempty"`
}
