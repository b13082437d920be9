package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, "inventory-events", zap.NewNop())

	first := newStockEvent("item-1", 3).WithMetadata(shared.EventMetadata{CorrelationID: "corr-1", UserID: "u1"})
	second := newStockEvent("item-2", 4)
	require.NoError(t, p.Publish(context.Background(), first, second))

	require.Len(t, w.msgs, 2)
	msg := w.msgs[0]
	assert.Equal(t, "inventory-events", msg.Topic)
	assert.Equal(t, []byte("item-1"), msg.Key)
	assert.Equal(t, first.EventID().String(), headerValue(msg, HeaderEventID))
	assert.Equal(t, "StockReceived", headerValue(msg, HeaderEventType))
	assert.Equal(t, "corr-1", headerValue(msg, HeaderCorrelationID))
	assert.Equal(t, "acme", headerValue(msg, HeaderTenantID))

	env, err := shared.DecodeEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "item-1", env.AggregateID)
	assert.Equal(t, "u1", env.Metadata.UserID)
	var payload struct {
		Quantity int `json:"quantity"`
	}
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, 3, payload.Quantity)

	assert.Empty(t, headerValue(w.msgs[1], HeaderCorrelationID))
}

func TestKafkaPublisher_Errors(t *testing.T) {
	boom := errors.New("leader not available")
	w := &fakeWriter{err: boom}
	p := NewKafkaPublisher(w, "inventory-events", zap.NewNop())

	err := p.Publish(context.Background(), newStockEvent("item-1", 1))
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, p.Publish(context.Background()))
	assert.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter(config.KafkaConfig{Brokers: []string{"k1:9092", "k2:9092"}})
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Contains(t, w.Addr.String(), "k1:9092")
}

func TestWaitForBrokers_NoBrokers(t *testing.T) {
	err := WaitForBrokers(context.Background(), nil, 1, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestWaitForBrokers_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitForBrokers(ctx, []string{"127.0.0.1:1"}, 3, 0, zap.NewNop())
	assert.Error(t, err)
}
