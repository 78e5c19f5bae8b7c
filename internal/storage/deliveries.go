package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmacdonald/folio/internal/webhook"
)

// Fixed-width so received_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// DeliveryStore is the sqlite-backed webhook delivery log.
type DeliveryStore struct {
	db *sql.DB
}

// NewDeliveryStore wraps an opened database.
func NewDeliveryStore(db *sql.DB) *DeliveryStore {
	return &DeliveryStore{db: db}
}

// Record inserts one delivery.
func (s *DeliveryStore) Record(ctx context.Context, d webhook.Delivery) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO webhook_deliveries(id, received_at, header, body_size, body_hash, authorised, request_id, remote_addr)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		d.ID,
		d.ReceivedAt.UTC().Format(timeFormat),
		d.Header,
		d.BodySize,
		d.BodyHash,
		d.Authorised,
		d.RequestID,
		d.RemoteAddr,
	)
	if err != nil {
		return fmt.Errorf("insert delivery %s: %w", d.ID, err)
	}
	return nil
}

// List returns the most recent deliveries, newest first.
func (s *DeliveryStore) List(ctx context.Context, limit int) ([]webhook.Delivery, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, received_at, header, body_size, body_hash, authorised, request_id, remote_addr
FROM webhook_deliveries
ORDER BY received_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	out := make([]webhook.Delivery, 0, limit)
	for rows.Next() {
		var (
			d          webhook.Delivery
			receivedAt string
		)
		if err := rows.Scan(&d.ID, &receivedAt, &d.Header, &d.BodySize, &d.BodyHash, &d.Authorised, &d.RequestID, &d.RemoteAddr); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.ReceivedAt, err = time.Parse(timeFormat, receivedAt)
		if err != nil {
			return nil, fmt.Errorf("parse received_at %q: %w", receivedAt, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return out, nil
}

// Count returns the number of recorded deliveries.
func (s *DeliveryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_deliveries;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	return n, nil
}
