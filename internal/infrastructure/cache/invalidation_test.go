package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

func envelopeOf(t *testing.T, e shared.DomainEvent) *shared.Envelope {
	t.Helper()
	env, err := shared.NewEnvelope(e)
	require.NoError(t, err)
	return env
}

func TestInvalidationListener_TenantEvents(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, TenantCacheKey("acme"), []byte(`{}`), time.Minute))
	require.NoError(t, store.Set(ctx, TenantCacheKey("globex"), []byte(`{}`), time.Minute))

	tenant := identity.RestoreTenant("acme", "Acme", "", identity.TenantStatusActive, 3, time.Now(), time.Now())
	require.NoError(t, tenant.Deactivate("contract ended"))

	l := NewInvalidationListener(store, zap.NewNop())
	env := envelopeOf(t, tenant.GetDomainEvents()[0])
	require.NoError(t, l.Handle(ctx, env))

	_, err := store.Get(ctx, TenantCacheKey("acme"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, TenantCacheKey("globex"))
	assert.NoError(t, err, "other tenants are untouched")

	// redelivery is harmless
	assert.NoError(t, l.Handle(ctx, env))
}

func TestInvalidationListener_TransferCompletedEvictsBothItems(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	transfer, err := inventory.RequestStockTransfer("acme", "src", "dst", decimal.NewFromInt(2))
	require.NoError(t, err)
	transfer.ClearDomainEvents()
	require.NoError(t, transfer.Complete())

	for _, id := range []string{"src", "dst", "other"} {
		require.NoError(t, store.Set(ctx, InventoryItemCacheKey("acme", id), []byte(`{}`), time.Minute))
	}

	l := NewInvalidationListener(store, zap.NewNop())
	require.NoError(t, l.Handle(ctx, envelopeOf(t, transfer.GetDomainEvents()[0])))
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, InventoryItemCacheKey("acme", "src"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, InventoryItemCacheKey("acme", "dst"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, InventoryItemCacheKey("acme", "other"))
	assert.NoError(t, err)
}

func TestInvalidationListener_StockEvents(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	item, err := inventory.NewInventoryItem("acme", "SKU-1", "WH-1")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, InventoryItemCacheKey("acme", item.ID), []byte(`{}`), time.Minute))
	require.NoError(t, item.Receive(decimal.NewFromInt(1), ""))

	l := NewInvalidationListener(store, zap.NewNop())
	require.NoError(t, l.Handle(ctx, envelopeOf(t, item.GetDomainEvents()[1])))
	assert.Zero(t, store.Len())
}

func TestInvalidationListener_UnknownAndMalformed(t *testing.T) {
	store := NewInMemoryStore()
	l := NewInvalidationListener(store, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, l.Handle(ctx, &shared.Envelope{EventID: "e1", EventType: "SomethingElse", AggregateID: "x"}))
	assert.NoError(t, l.Handle(ctx, &shared.Envelope{
		EventID: "e2", EventType: inventory.EventTypeTransferCompleted, AggregateID: "t1", Payload: []byte(`{}`),
	}))
}

func TestInvalidationListener_DeleteFailureIsSwallowed(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewInvalidationListener(NewRedisStoreWithClient(client, 100*time.Millisecond), zap.NewNop())
	mr.Close()

	err := l.Handle(context.Background(), &shared.Envelope{
		EventID: "e1", EventType: identity.EventTypeTenantSuspended, AggregateID: "acme",
	})
	assert.NoError(t, err)
}

func TestInvalidationListener_CustomRule(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "custom:1", []byte("x"), 0))

	l := NewInvalidationListener(store, zap.NewNop(), WithRule("Custom", func(*shared.Envelope) ([]string, error) {
		return []string{"custom:1"}, nil
	}))
	assert.Contains(t, l.EventTypes(), "Custom")
	assert.Contains(t, l.EventTypes(), identity.EventTypeTenantCreated)

	require.NoError(t, l.Handle(ctx, &shared.Envelope{EventID: "e1", EventType: "Custom", AggregateID: "1"}))
	assert.Zero(t, store.Len())
}
