package event

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// InMemoryEventBus delivers events to local handlers synchronously.
// It stands in for the broker in single-process deployments and tests, and
// goes through the same envelope encoding as the broker path.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a bus with its own handler registry
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return NewInMemoryEventBusWithRegistry(NewHandlerRegistry(), logger)
}

// NewInMemoryEventBusWithRegistry creates a bus delivering to an existing
// registry, typically the one a broker consumer would otherwise dispatch to.
func NewInMemoryEventBusWithRegistry(registry *HandlerRegistry, logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{registry: registry, logger: logger}
}

// Publish encodes each event and dispatches it in order.
// Handler failures are logged; only an encoding failure is returned.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		env, err := shared.NewEnvelope(e)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.EventType(), err)
		}
		// round trip through bytes so handlers see what a broker consumer would
		data, err := env.Marshal()
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.EventType(), err)
		}
		decoded, err := shared.DecodeEnvelope(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", e.EventType(), err)
		}

		if err := b.registry.Dispatch(DeliveryContext(ctx, decoded), decoded); err != nil {
			logger.WithLogger(ctx, b.logger).Error("Handler failed to process event",
				zap.String("event_type", decoded.EventType),
				zap.String("event_id", decoded.EventID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, defaulting to handler.EventTypes()
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// DeliveryContext derives the handler context for env. The correlation id,
// user and tenant carry over and the delivered event becomes the causation
// of anything raised while handling it. Broker and in-process delivery both
// go through here.
func DeliveryContext(ctx context.Context, env *shared.Envelope) context.Context {
	ctx = logger.WithCausationID(ctx, env.EventID)
	if env.Metadata.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, env.Metadata.CorrelationID)
	}
	if env.Metadata.UserID != "" {
		ctx = logger.WithUserID(ctx, env.Metadata.UserID)
	}
	if env.TenantID != "" {
		ctx = logger.WithTenantID(ctx, env.TenantID)
	}
	return ctx
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
