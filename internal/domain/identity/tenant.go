package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/wms/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusPending   TenantStatus = "PENDING"
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusInactive  TenantStatus = "INACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED" // payment or policy violation
)

// IsValid reports whether s is a known status
func (s TenantStatus) IsValid() bool {
	switch s {
	case TenantStatusPending, TenantStatusActive, TenantStatusInactive, TenantStatusSuspended:
		return true
	}
	return false
}

var tenantIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,39}$`)

// ValidTenantID reports whether id can be used as a tenant identifier.
// Tenant ids end up in schema names, so the alphabet is restricted.
func ValidTenantID(id string) bool {
	return tenantIDPattern.MatchString(id)
}

// Tenant is the aggregate root for a warehouse operator organisation.
// Tenants live in the shared registry and are not themselves tenant-scoped;
// the tenant id is the aggregate id.
type Tenant struct {
	shared.BaseAggregateRoot
	Name         string
	ContactEmail string
	Status       TenantStatus
}

// NewTenant creates a new pending tenant
func NewTenant(id, name, contactEmail string) (*Tenant, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if !ValidTenantID(id) {
		return nil, shared.NewDomainError("INVALID_TENANT_ID",
			"Tenant id must start with a letter and contain only lowercase letters, digits or underscores")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}

	t := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		Name:              name,
		ContactEmail:      strings.TrimSpace(contactEmail),
		Status:            TenantStatusPending,
	}
	t.AddDomainEvent(NewTenantCreatedEvent(t))
	return t, nil
}

// RestoreTenant rebuilds a tenant from persisted state without raising events
func RestoreTenant(id, name, contactEmail string, status TenantStatus, version int, createdAt, updatedAt time.Time) *Tenant {
	return &Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
			Version:    version,
		},
		Name:         name,
		ContactEmail: contactEmail,
		Status:       status,
	}
}

// GetTenantID returns the tenant's own id
func (t *Tenant) GetTenantID() string {
	return t.ID
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Activate activates the tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}

	previous := t.Status
	t.Status = TenantStatusActive
	t.Touch()

	t.AddDomainEvent(NewTenantActivatedEvent(t, previous))
	return nil
}

// Deactivate deactivates the tenant
func (t *Tenant) Deactivate(reason string) error {
	if t.Status == TenantStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Tenant is already inactive")
	}
	if t.Status == TenantStatusPending {
		return shared.NewDomainError("NOT_ACTIVATED", "Pending tenant cannot be deactivated")
	}

	previous := t.Status
	t.Status = TenantStatusInactive
	t.Touch()

	t.AddDomainEvent(NewTenantDeactivatedEvent(t, previous, reason))
	return nil
}

// Suspend suspends the tenant (e.g., due to payment issues)
func (t *Tenant) Suspend(reason string) error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}
	if t.Status != TenantStatusActive {
		return shared.NewDomainError("NOT_ACTIVE", "Only an active tenant can be suspended")
	}

	t.Status = TenantStatusSuspended
	t.Touch()

	t.AddDomainEvent(NewTenantSuspendedEvent(t, reason))
	return nil
}
