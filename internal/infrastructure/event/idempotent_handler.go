package event

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// Delivery outcomes recorded on the events.handled counter
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// releaseTimeout bounds releasing a claim after the handler failed
const releaseTimeout = 5 * time.Second

// IdempotentHandler runs the wrapped handler at most once per event id
// within the configured window, however often the broker redelivers.
type IdempotentHandler struct {
	next    shared.EventHandler
	claims  shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics *telemetry.EventMetrics
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the claim window or disables deduplication
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// WithHandlerMetrics records outcomes on metrics.Handled
func WithHandlerMetrics(metrics *telemetry.EventMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.metrics = metrics
	}
}

// NewIdempotentHandler wraps next with claim-based deduplication
func NewIdempotentHandler(
	next shared.EventHandler,
	claims shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		next:    next,
		claims:  claims,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
		metrics: telemetry.NoopEventMetrics(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the event types of the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.next.EventTypes()
}

// Handle processes env unless its event id was already handled.
//
// The id is claimed before handling. When the wrapped handler fails the claim
// is released so the redelivered message is processed again. A store outage
// lets the event through: a duplicate is cheaper than a lost event.
func (h *IdempotentHandler) Handle(ctx context.Context, env *shared.Envelope) error {
	if !h.config.Enabled {
		return h.next.Handle(ctx, env)
	}

	log := logger.WithLogger(ctx, h.logger).With(
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
	)

	fresh, err := h.claims.Claim(ctx, env.EventID, h.config.Window)
	claimed := err == nil && fresh
	switch {
	case err != nil:
		log.Warn("Idempotency check failed, processing anyway", zap.Error(err))
	case !fresh:
		h.record(ctx, env, OutcomeDuplicate)
		log.Debug("Duplicate event skipped")
		return nil
	}

	if err := h.next.Handle(ctx, env); err != nil {
		h.record(ctx, env, OutcomeFailed)
		if claimed {
			h.release(ctx, env.EventID, log)
		}
		log.Error("Event handler failed", zap.Error(err))
		return err
	}

	h.record(ctx, env, OutcomeProcessed)
	log.Debug("Event processed")
	return nil
}

// release drops the claim even when ctx was cancelled mid-handling, otherwise
// the redelivery would be skipped as a duplicate for the whole window.
func (h *IdempotentHandler) release(ctx context.Context, eventID string, log *logger.ContextLogger) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := h.claims.Release(rctx, eventID); err != nil {
		log.Warn("Failed to release idempotency claim", zap.Error(err))
	}
}

func (h *IdempotentHandler) record(ctx context.Context, env *shared.Envelope, outcome string) {
	h.metrics.Handled.Inc(ctx,
		attribute.String("event_type", env.EventType),
		attribute.String("outcome", outcome),
	)
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
