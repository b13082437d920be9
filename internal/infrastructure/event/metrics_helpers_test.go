package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// outcomeCounts reads events.handled back per outcome attribute
type outcomeCounts func() map[string]int64

func newRecordedMetrics(t *testing.T) (*telemetry.EventMetrics, outcomeCounts) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	m, err := telemetry.NewEventMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	return m, func() map[string]int64 {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		out := map[string]int64{}
		for _, sm := range rm.ScopeMetrics {
			for _, metric := range sm.Metrics {
				if metric.Name != "events.handled" {
					continue
				}
				sum, ok := metric.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					outcome, _ := dp.Attributes.Value("outcome")
					out[outcome.AsString()] += dp.Value
				}
			}
		}
		return out
	}
}
