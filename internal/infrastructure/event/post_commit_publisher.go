package event

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// PostCommitPublisher hands events to the broker once the surrounding
// transaction has committed.
//
// Without an open transaction the events go out immediately. A rolled back
// transaction publishes nothing. Publish errors after commit are logged and
// counted but never returned: the data is already durable and there is no
// outbox to retry from.
type PostCommitPublisher struct {
	publisher shared.EventPublisher
	metrics   *telemetry.EventMetrics
	logger    *zap.Logger
}

// NewPostCommitPublisher creates a new PostCommitPublisher.
// A nil metrics uses no-op counters.
func NewPostCommitPublisher(publisher shared.EventPublisher, logger *zap.Logger, metrics *telemetry.EventMetrics) *PostCommitPublisher {
	if metrics == nil {
		metrics = telemetry.NoopEventMetrics()
	}
	return &PostCommitPublisher{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Schedule enriches events from ctx and publishes them after commit, in order
func (p *PostCommitPublisher) Schedule(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	enriched := EnrichAll(ctx, events)

	if shared.RegisterAfterCommit(ctx, func(hookCtx context.Context) {
		p.publish(hookCtx, enriched)
	}) {
		logger.WithLogger(ctx, p.logger).Debug("Events deferred until commit", zap.Int("count", len(enriched)))
		return
	}

	p.publish(ctx, enriched)
}

func (p *PostCommitPublisher) publish(ctx context.Context, events []shared.DomainEvent) {
	log := logger.WithLogger(ctx, p.logger)

	if err := p.publisher.Publish(ctx, events...); err != nil {
		for _, e := range events {
			p.metrics.PublishFailures.Inc(ctx, attribute.String("event_type", e.EventType()))
			log.Error("Failed to publish event after commit",
				zap.String("event_id", e.EventID().String()),
				zap.String("event_type", e.EventType()),
				zap.String("aggregate_id", e.AggregateID()),
				zap.Error(err),
			)
		}
		return
	}

	for _, e := range events {
		p.metrics.Published.Inc(ctx, attribute.String("event_type", e.EventType()))
	}
	log.Debug("Events published", zap.Int("count", len(events)))
}
