package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Counter is a helper for recording monotonically increasing values.
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new Counter metric.
func NewCounter(meter metric.Meter, name, description string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("{event}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc increments the counter by 1 with optional attributes.
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// EventMetrics counts the outcome of post-commit publication, event handling
// and cache upkeep
type EventMetrics struct {
	Published       *Counter
	PublishFailures *Counter
	CacheFailures   *Counter
	Evictions       *Counter
	Handled         *Counter
}

// NewEventMetrics registers the event pipeline counters on meter
func NewEventMetrics(meter metric.Meter) (*EventMetrics, error) {
	var (
		m   EventMetrics
		err error
	)
	if m.Published, err = NewCounter(meter, "events.published", "Events handed to the broker after commit"); err != nil {
		return nil, err
	}
	if m.PublishFailures, err = NewCounter(meter, "events.publish.failures", "Post-commit publish attempts that failed"); err != nil {
		return nil, err
	}
	if m.CacheFailures, err = NewCounter(meter, "cache.failures", "Cache operations that failed and were treated as a miss"); err != nil {
		return nil, err
	}
	if m.Evictions, err = NewCounter(meter, "cache.evictions", "Cache keys evicted in reaction to events"); err != nil {
		return nil, err
	}
	if m.Handled, err = NewCounter(meter, "events.handled", "Deliveries to idempotent handlers by outcome"); err != nil {
		return nil, err
	}
	return &m, nil
}

// NoopEventMetrics returns counters that record nothing
func NoopEventMetrics() *EventMetrics {
	m, err := NewEventMetrics(noop.NewMeterProvider().Meter("noop"))
	if err != nil {
		return &EventMetrics{}
	}
	return m
}
