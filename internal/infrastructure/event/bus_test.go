package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

func TestInMemoryEventBus_DeliversEnvelopesInOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	var seen []*shared.Envelope
	bus.Subscribe(&handlerFunc{
		types: []string{"A", "B"},
		fn: func(_ context.Context, env *shared.Envelope) error {
			seen = append(seen, env)
			return nil
		},
	})

	a := newSampleEvent("A", "agg-1").WithMetadata(shared.EventMetadata{CorrelationID: "corr-1"})
	b := newSampleEvent("B", "agg-1")
	other := newSampleEvent("Other", "agg-1")
	require.NoError(t, bus.Publish(context.Background(), a, other, b))

	require.Len(t, seen, 2)
	assert.Equal(t, a.EventID().String(), seen[0].EventID)
	assert.Equal(t, "agg-1", seen[0].AggregateID)
	assert.Equal(t, "corr-1", seen[0].Metadata.CorrelationID)
	assert.Equal(t, "B", seen[1].EventType)

	var payload struct {
		Note string `json:"note"`
	}
	require.NoError(t, seen[0].DecodePayload(&payload))
	assert.Equal(t, "n", payload.Note)
}

func TestInMemoryEventBus_HandlerContextMatchesBrokerDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	var causation, correlation, user, tenant string
	bus.Subscribe(&handlerFunc{
		types: []string{"A"},
		fn: func(ctx context.Context, _ *shared.Envelope) error {
			causation = logger.GetCausationID(ctx)
			correlation = logger.GetCorrelationID(ctx)
			user = logger.GetUserID(ctx)
			tenant = logger.GetTenantID(ctx)
			return nil
		},
	})

	e := newSampleEvent("A", "agg-1").WithMetadata(shared.EventMetadata{CorrelationID: "corr-1", UserID: "user-1"})
	require.NoError(t, bus.Publish(context.Background(), e))

	assert.Equal(t, e.EventID().String(), causation)
	assert.Equal(t, "corr-1", correlation)
	assert.Equal(t, "user-1", user)
	assert.Equal(t, "acme", tenant)
}

func TestDeliveryContext(t *testing.T) {
	env := &shared.Envelope{
		EventID:  "evt-1",
		TenantID: "acme",
		Metadata: shared.EventMetadata{CorrelationID: "corr-1", UserID: "user-1"},
	}
	ctx := DeliveryContext(context.Background(), env)

	assert.Equal(t, "evt-1", logger.GetCausationID(ctx))
	assert.Equal(t, "corr-1", logger.GetCorrelationID(ctx))
	assert.Equal(t, "user-1", logger.GetUserID(ctx))
	assert.Equal(t, "acme", logger.GetTenantID(ctx))

	bare := DeliveryContext(context.Background(), &shared.Envelope{EventID: "evt-2"})
	assert.Empty(t, logger.GetCorrelationID(bare))
	assert.Empty(t, logger.GetTenantID(bare))
}

func TestInMemoryEventBus_HandlerFailureDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	calls := 0
	bus.Subscribe(&handlerFunc{types: []string{"A"}, fn: func(context.Context, *shared.Envelope) error {
		return errors.New("boom")
	}})
	bus.Subscribe(&handlerFunc{types: []string{"A"}, fn: func(context.Context, *shared.Envelope) error {
		panic("worse")
	}})
	bus.Subscribe(&handlerFunc{types: []string{"A"}, fn: func(context.Context, *shared.Envelope) error {
		calls++
		return nil
	}})

	assert.NoError(t, bus.Publish(context.Background(), newSampleEvent("A", "agg-1")))
	assert.Equal(t, 1, calls)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	calls := 0
	h := &handlerFunc{types: []string{"A"}, fn: func(context.Context, *shared.Envelope) error {
		calls++
		return nil
	}}

	bus.Subscribe(h)
	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newSampleEvent("A", "agg-1")))
	assert.Zero(t, calls)
}

func TestInMemoryEventBus_SharedRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	calls := 0
	registry.Register(&handlerFunc{fn: func(context.Context, *shared.Envelope) error {
		calls++
		return nil
	}})

	bus := NewInMemoryEventBusWithRegistry(registry, zap.NewNop())
	require.NoError(t, bus.Publish(context.Background(), newSampleEvent("A", "agg-1"), newSampleEvent("B", "agg-1")))
	assert.Equal(t, 2, calls)
}
