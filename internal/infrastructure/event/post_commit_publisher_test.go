package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

func TestPostCommitPublisher_NoTransactionPublishesImmediately(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewPostCommitPublisher(pub, zap.NewNop(), nil)

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	p.Schedule(ctx, []shared.DomainEvent{newSampleEvent("A", "agg-1")})

	got := pub.published()
	require.Len(t, got, 1)
	assert.Equal(t, "corr-1", got[0].Metadata().CorrelationID)
}

func TestPostCommitPublisher_DefersUntilCommit(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewPostCommitPublisher(pub, zap.NewNop(), nil)

	txCtx, scope := shared.BeginTxScope(context.Background())
	p.Schedule(txCtx, []shared.DomainEvent{
		newSampleEvent("A", "agg-1"),
		newSampleEvent("B", "agg-1"),
	})
	p.Schedule(txCtx, []shared.DomainEvent{newSampleEvent("C", "agg-2")})

	assert.Empty(t, pub.published(), "nothing may leave before commit")

	scope.Committed(context.Background())

	got := pub.published()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{got[0].EventType(), got[1].EventType(), got[2].EventType()})
}

func TestPostCommitPublisher_RollbackPublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewPostCommitPublisher(pub, zap.NewNop(), nil)

	txCtx, scope := shared.BeginTxScope(context.Background())
	p.Schedule(txCtx, []shared.DomainEvent{newSampleEvent("A", "agg-1")})
	scope.RolledBack()

	assert.Empty(t, pub.published())
}

func TestPostCommitPublisher_FailureIsSwallowedAndLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	pub := &recordingPublisher{err: errors.New("broker unreachable")}
	p := NewPostCommitPublisher(pub, zap.New(core), nil)

	txCtx, scope := shared.BeginTxScope(context.Background())
	p.Schedule(txCtx, []shared.DomainEvent{newSampleEvent("A", "agg-1")})

	assert.NotPanics(t, func() { scope.Committed(context.Background()) })
	assert.Len(t, pub.published(), 1, "publish is attempted once")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Failed to publish event after commit", logs.All()[0].Message)
}

func TestPostCommitPublisher_EmptyIsNoop(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewPostCommitPublisher(pub, zap.NewNop(), nil)

	p.Schedule(context.Background(), nil)
	assert.Empty(t, pub.calls)
}
