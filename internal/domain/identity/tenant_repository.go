package identity

import (
	"context"
)

// TenantRepository persists tenants in the shared registry.
// Save inserts when the version is 0 and otherwise performs an optimistic
// update, failing with shared.ErrConcurrencyConflict on a stale version.
type TenantRepository interface {
	FindByID(ctx context.Context, id string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}
