package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

func TestExecute_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	e, _, _ := newExecutor()
	ctx := logger.WithTenantID(context.Background(), "acme")

	_, err := Execute(ctx, e, Pipeline[*identity.Tenant]{
		Name: "CreateTenant",
		Load: func(context.Context) (*identity.Tenant, error) {
			return identity.NewTenant("acme", "Acme", "")
		},
		Save: func(_ context.Context, tn *identity.Tenant) error {
			tn.SetVersion(1)
			return nil
		},
	})
	require.NoError(t, err)

	_, err = Execute(ctx, e, Pipeline[*identity.Tenant]{
		Name: "ActivateTenant",
		Load: func(context.Context) (*identity.Tenant, error) {
			return nil, shared.ConcurrencyConflict("Tenant", "acme", 1)
		},
	})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	created := spans[0]
	assert.Equal(t, "command CreateTenant", created.Name())
	attrs := attribute.NewSet(created.Attributes()...)
	tenantID, _ := attrs.Value("wms.tenant_id")
	assert.Equal(t, "acme", tenantID.AsString())
	version, _ := attrs.Value("wms.aggregate_version")
	assert.Equal(t, int64(1), version.AsInt64())
	assert.Equal(t, codes.Unset, created.Status().Code)

	failed := spans[1]
	assert.Equal(t, "command ActivateTenant", failed.Name())
	assert.Equal(t, codes.Error, failed.Status().Code)
	retryable, ok := attribute.NewSet(failed.Attributes()...).Value("wms.retryable")
	require.True(t, ok)
	assert.True(t, retryable.AsBool())
}
