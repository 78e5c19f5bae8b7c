package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmacdonald/folio/internal/webhook"
)

func openTestStore(t *testing.T) *DeliveryStore {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "folio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDeliveryStore(db)
}

func TestOpenSQLiteBootstrapsTables(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "folio.db")
	db, err := OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", "webhook_deliveries").Scan(&name))
	assert.Equal(t, "webhook_deliveries", name)

	// Idempotent.
	require.NoError(t, BootstrapSQLite(context.Background(), db))
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}

func TestDeliveryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(ctx, webhook.Delivery{
			ID:         id,
			ReceivedAt: base.Add(time.Duration(i) * time.Second),
			Header:     "x-signature-256",
			BodySize:   int64(10 * i),
			BodyHash:   "hash-" + id,
			Authorised: i%2 == 0,
			RequestID:  "req-" + id,
			RemoteAddr: "10.0.0.1:1234",
		}))
	}

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.True(t, list[0].Authorised)
	assert.False(t, list[1].Authorised)
	assert.Equal(t, int64(10), list[1].BodySize)
	assert.Equal(t, "req-b", list[1].RequestID)
	assert.True(t, base.Add(time.Second).Equal(list[1].ReceivedAt))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeliveryStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	d := webhook.Delivery{ID: "dup", ReceivedAt: time.Now()}
	require.NoError(t, s.Record(ctx, d))
	assert.Error(t, s.Record(ctx, d))
}

func TestCheckLocalFilesystem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dbPath := filepath.Join(root, "nested", "dir", "folio.db")

	tests := []struct {
		name    string
		fsType  string
		err     error
		wantErr error
		anyErr  bool
	}{
		{name: "local", fsType: "apfs"},
		{name: "linux magic", fsType: "0xef53"},
		{name: "nfs", fsType: "nfs", wantErr: ErrNetworkFilesystem},
		{name: "smbfs uppercase", fsType: " SMBFS ", wantErr: ErrNetworkFilesystem},
		{name: "unsupported platform", err: errDetectUnsupported},
		{name: "statfs failure", err: errors.New("boom"), anyErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inspected string
			err := checkLocalFilesystem(dbPath, func(p string) (string, error) {
				inspected = p
				return tt.fsType, tt.err
			})
			assert.Equal(t, root, inspected, "nearest existing ancestor is inspected")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
