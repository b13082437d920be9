package identity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// SchemaProvisioner creates a tenant's schema and applies its migrations.
// Provisioning an existing schema must be a no-op.
type SchemaProvisioner interface {
	Provision(ctx context.Context, tenantID string) (string, error)
}

// TenantProvisioningHandler provisions the schema of every newly created tenant
type TenantProvisioningHandler struct {
	provisioner SchemaProvisioner
	logger      *zap.Logger
}

// NewTenantProvisioningHandler creates a new TenantProvisioningHandler
func NewTenantProvisioningHandler(provisioner SchemaProvisioner, logger *zap.Logger) *TenantProvisioningHandler {
	return &TenantProvisioningHandler{provisioner: provisioner, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *TenantProvisioningHandler) EventTypes() []string {
	return []string{identity.EventTypeTenantCreated}
}

// Handle provisions the schema named by the event's aggregate id.
// Failures are returned so the delivery is retried.
func (h *TenantProvisioningHandler) Handle(ctx context.Context, env *shared.Envelope) error {
	if env.EventType != identity.EventTypeTenantCreated {
		return nil
	}

	schema, err := h.provisioner.Provision(ctx, env.AggregateID)
	if err != nil {
		return fmt.Errorf("provision tenant %s: %w", env.AggregateID, err)
	}

	logger.WithLogger(ctx, h.logger).Info("Tenant schema provisioned",
		zap.String("tenant_id", env.AggregateID),
		zap.String("schema", schema),
	)
	return nil
}

var _ shared.EventHandler = (*TenantProvisioningHandler)(nil)
