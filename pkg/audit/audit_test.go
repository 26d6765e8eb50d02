package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/audit"
)

type memStorage struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (s *memStorage) Store(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func TestLoggerLog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success event", func(t *testing.T) {
		t.Parallel()
		storage := &memStorage{}
		l := audit.NewLogger(storage)

		tenantID := uuid.New()
		userID := uuid.New()
		err := l.Log(ctx, "tenant.created",
			audit.WithTenant(tenantID),
			audit.WithUser(userID),
			audit.WithMetadata("slug", "acme"))
		require.NoError(t, err)

		require.Len(t, storage.events, 1)
		event := storage.events[0]
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, "tenant.created", event.Action)
		assert.Equal(t, audit.ResultSuccess, event.Result)
		assert.Equal(t, tenantID, event.TenantID)
		assert.Equal(t, userID, event.UserID)
		assert.Equal(t, "acme", event.Metadata["slug"])
		assert.False(t, event.CreatedAt.IsZero())
	})

	t.Run("failure event carries the cause", func(t *testing.T) {
		t.Parallel()
		storage := &memStorage{}
		l := audit.NewLogger(storage)

		err := l.LogError(ctx, "tenant.created", errors.New("slug taken"))
		require.NoError(t, err)

		require.Len(t, storage.events, 1)
		assert.Equal(t, audit.ResultFailure, storage.events[0].Result)
		assert.Equal(t, "slug taken", storage.events[0].Error)
	})

	t.Run("missing action rejected", func(t *testing.T) {
		t.Parallel()
		storage := &memStorage{}
		l := audit.NewLogger(storage)

		err := l.Log(ctx, "")
		require.ErrorIs(t, err, audit.ErrMissingAction)
		assert.Empty(t, storage.events)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		t.Parallel()
		storage := &memStorage{err: errors.New("disk full")}
		l := audit.NewLogger(storage)

		require.Error(t, l.Log(ctx, "tenant.created"))
	})

	t.Run("nil storage panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { audit.NewLogger(nil) })
	})
}

func TestSlogStorage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	l := audit.NewLogger(audit.NewSlogStorage(log))

	tenantID := uuid.New()
	require.NoError(t, l.Log(context.Background(), "membership.role_changed",
		audit.WithTenant(tenantID),
		audit.WithMetadata("new_role", "admin")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "audit", record["msg"])
	assert.Equal(t, "membership.role_changed", record["action"])
	assert.Equal(t, "success", record["result"])
	assert.Equal(t, tenantID.String(), record["tenant_id"])
	assert.Equal(t, "admin", record["new_role"])
}
