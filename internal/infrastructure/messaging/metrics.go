package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Delivery outcomes
const (
	OutcomeHandled   = "handled"
	OutcomeFailed    = "failed"
	OutcomeMalformed = "malformed"
)

// ConsumerMetrics counts deliveries per event type and outcome
type ConsumerMetrics struct {
	Deliveries *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Retries    *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer collectors on reg
func NewConsumerMetrics(reg prometheus.Registerer, consumer string) *ConsumerMetrics {
	labels := prometheus.Labels{"consumer": consumer}
	m := &ConsumerMetrics{
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "wms_consumer_deliveries_total",
			Help:        "Event deliveries by type and outcome.",
			ConstLabels: labels,
		}, []string{"event_type", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "wms_consumer_handle_seconds",
			Help:        "Time spent handling one delivery.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"event_type"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "wms_consumer_retries_total",
			Help:        "Handler retries by event type.",
			ConstLabels: labels,
		}, []string{"event_type"}),
	}
	reg.MustRegister(m.Deliveries, m.Duration, m.Retries)
	return m
}
