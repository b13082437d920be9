package cache

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// InvalidationRule maps an envelope to the cache keys it makes stale
type InvalidationRule func(env *shared.Envelope) ([]string, error)

func tenantKeys(env *shared.Envelope) ([]string, error) {
	return []string{TenantCacheKey(env.AggregateID)}, nil
}

func inventoryItemKeys(env *shared.Envelope) ([]string, error) {
	return []string{InventoryItemCacheKey(env.TenantID, env.AggregateID)}, nil
}

// transferItemKeys evicts both ends of a completed transfer; the transfer
// itself is not cached.
func transferItemKeys(env *shared.Envelope) ([]string, error) {
	var p struct {
		SourceItemID      string `json:"sourceItemId"`
		DestinationItemID string `json:"destinationItemId"`
	}
	if err := env.DecodePayload(&p); err != nil {
		return nil, err
	}
	if p.SourceItemID == "" || p.DestinationItemID == "" {
		return nil, fmt.Errorf("%s %s: missing item ids", env.EventType, env.EventID)
	}
	return []string{
		InventoryItemCacheKey(env.TenantID, p.SourceItemID),
		InventoryItemCacheKey(env.TenantID, p.DestinationItemID),
	}, nil
}

// DefaultInvalidationRules covers every event that changes a cached aggregate
func DefaultInvalidationRules() map[string]InvalidationRule {
	return map[string]InvalidationRule{
		identity.EventTypeTenantCreated:         tenantKeys,
		identity.EventTypeTenantActivated:       tenantKeys,
		identity.EventTypeTenantDeactivated:     tenantKeys,
		identity.EventTypeTenantSuspended:       tenantKeys,
		inventory.EventTypeInventoryItemCreated: inventoryItemKeys,
		inventory.EventTypeStockReceived:        inventoryItemKeys,
		inventory.EventTypeStockPicked:          inventoryItemKeys,
		inventory.EventTypeStockDepleted:        inventoryItemKeys,
		inventory.EventTypeTransferCompleted:    transferItemKeys,
	}
}

// InvalidationListener evicts cache entries made stale by delivered events.
//
// Eviction is best effort and idempotent: redelivering an envelope deletes
// keys that are already gone. Unknown event types are ignored, and a failed
// delete is logged without failing the delivery, since the entry TTL bounds
// how long it can stay stale.
type InvalidationListener struct {
	store   Store
	rules   map[string]InvalidationRule
	logger  *zap.Logger
	metrics *telemetry.EventMetrics
}

// InvalidationOption configures an InvalidationListener
type InvalidationOption func(*InvalidationListener)

// WithRule adds or replaces the rule for eventType
func WithRule(eventType string, rule InvalidationRule) InvalidationOption {
	return func(l *InvalidationListener) {
		l.rules[eventType] = rule
	}
}

// WithInvalidationMetrics sets the counters for evictions and failures
func WithInvalidationMetrics(metrics *telemetry.EventMetrics) InvalidationOption {
	return func(l *InvalidationListener) {
		l.metrics = metrics
	}
}

// NewInvalidationListener creates a listener with the default rules
func NewInvalidationListener(store Store, logger *zap.Logger, opts ...InvalidationOption) *InvalidationListener {
	l := &InvalidationListener{
		store:   store,
		rules:   DefaultInvalidationRules(),
		logger:  logger,
		metrics: telemetry.NoopEventMetrics(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// EventTypes returns the sorted event types that have a rule
func (l *InvalidationListener) EventTypes() []string {
	types := make([]string, 0, len(l.rules))
	for t := range l.rules {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Handle evicts the keys env maps to. It never returns an error.
func (l *InvalidationListener) Handle(ctx context.Context, env *shared.Envelope) error {
	log := logger.WithLogger(ctx, l.logger).With(
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
	)

	rule, ok := l.rules[env.EventType]
	if !ok {
		log.Debug("No invalidation rule for event type")
		return nil
	}

	keys, err := rule(env)
	if err != nil {
		log.Warn("Cannot derive cache keys from event", zap.Error(err))
		return nil
	}

	for _, key := range keys {
		if err := l.store.Delete(ctx, key); err != nil {
			l.metrics.CacheFailures.Inc(ctx)
			log.Debug("Cache eviction failed", zap.String("key", key), zap.Error(err))
			continue
		}
		l.metrics.Evictions.Inc(ctx)
		log.Debug("Cache entry evicted", zap.String("key", key))
	}
	return nil
}

var _ shared.EventHandler = (*InvalidationListener)(nil)
