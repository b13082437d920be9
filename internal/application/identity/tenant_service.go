package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/command"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// TenantService handles tenant management operations
type TenantService struct {
	exec    *command.Executor
	tenants identity.TenantRepository
	logger  *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	exec *command.Executor,
	tenants identity.TenantRepository,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		exec:    exec,
		tenants: tenants,
		logger:  logger,
	}
}

// CreateTenant registers a pending tenant. Its schema is provisioned
// asynchronously once TenantCreated is delivered.
func (s *TenantService) CreateTenant(ctx context.Context, cmd CreateTenantCommand) (TenantDTO, error) {
	t, err := command.Execute(ctx, s.exec, command.Pipeline[*identity.Tenant]{
		Name:    "CreateTenant",
		Command: cmd,
		Load: func(context.Context) (*identity.Tenant, error) {
			return identity.NewTenant(cmd.ID, cmd.Name, cmd.ContactEmail)
		},
		Save: s.tenants.Save,
	})
	if err != nil {
		return TenantDTO{}, err
	}

	logger.WithLogger(ctx, s.logger).Info("Tenant created", zap.String("tenant_id", t.ID))
	return ToTenantDTO(t), nil
}

// ActivateTenant activates a tenant
func (s *TenantService) ActivateTenant(ctx context.Context, cmd ChangeTenantStatusCommand) (TenantDTO, error) {
	return s.changeStatus(ctx, "ActivateTenant", cmd, func(t *identity.Tenant) error {
		return t.Activate()
	})
}

// DeactivateTenant deactivates a tenant
func (s *TenantService) DeactivateTenant(ctx context.Context, cmd ChangeTenantStatusCommand) (TenantDTO, error) {
	return s.changeStatus(ctx, "DeactivateTenant", cmd, func(t *identity.Tenant) error {
		return t.Deactivate(cmd.Reason)
	})
}

// SuspendTenant suspends an active tenant
func (s *TenantService) SuspendTenant(ctx context.Context, cmd ChangeTenantStatusCommand) (TenantDTO, error) {
	return s.changeStatus(ctx, "SuspendTenant", cmd, func(t *identity.Tenant) error {
		return t.Suspend(cmd.Reason)
	})
}

// GetTenant returns a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, id string) (TenantDTO, error) {
	t, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return TenantDTO{}, err
	}
	return ToTenantDTO(t), nil
}

func (s *TenantService) changeStatus(
	ctx context.Context,
	name string,
	cmd ChangeTenantStatusCommand,
	mutate func(*identity.Tenant) error,
) (TenantDTO, error) {
	t, err := command.Execute(ctx, s.exec, command.Pipeline[*identity.Tenant]{
		Name:    name,
		Command: cmd,
		Load: func(ctx context.Context) (*identity.Tenant, error) {
			return s.tenants.FindByID(ctx, cmd.TenantID)
		},
		Mutate: func(_ context.Context, t *identity.Tenant) error {
			return mutate(t)
		},
		Save: s.tenants.Save,
	})
	if err != nil {
		return TenantDTO{}, err
	}

	logger.WithLogger(ctx, s.logger).Info("Tenant status changed",
		zap.String("tenant_id", t.ID),
		zap.String("status", string(t.Status)),
	)
	return ToTenantDTO(t), nil
}
