package identity

import (
	"github.com/wms/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTenant = "Tenant"

// Event type constants
const (
	EventTypeTenantCreated     = "TenantCreated"
	EventTypeTenantActivated   = "TenantActivated"
	EventTypeTenantDeactivated = "TenantDeactivated"
	EventTypeTenantSuspended   = "TenantSuspended"
)

// TenantCreatedEvent is published when a new tenant is registered.
// Consumers provision the tenant's schema in reaction to it.
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	Name         string       `json:"name"`
	ContactEmail string       `json:"contactEmail,omitempty"`
	Status       TenantStatus `json:"status"`
}

// NewTenantCreatedEvent creates a new TenantCreatedEvent
func NewTenantCreatedEvent(t *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantCreated, AggregateTypeTenant, t.ID, t.ID),
		Name:            t.Name,
		ContactEmail:    t.ContactEmail,
		Status:          t.Status,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *TenantCreatedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// TenantActivatedEvent is published when a tenant becomes active
type TenantActivatedEvent struct {
	shared.BaseDomainEvent
	PreviousStatus TenantStatus `json:"previousStatus"`
}

// NewTenantActivatedEvent creates a new TenantActivatedEvent
func NewTenantActivatedEvent(t *Tenant, previous TenantStatus) *TenantActivatedEvent {
	return &TenantActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantActivated, AggregateTypeTenant, t.ID, t.ID),
		PreviousStatus:  previous,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *TenantActivatedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// TenantDeactivatedEvent is published when a tenant is deactivated
type TenantDeactivatedEvent struct {
	shared.BaseDomainEvent
	PreviousStatus TenantStatus `json:"previousStatus"`
	Reason         string       `json:"reason,omitempty"`
}

// NewTenantDeactivatedEvent creates a new TenantDeactivatedEvent
func NewTenantDeactivatedEvent(t *Tenant, previous TenantStatus, reason string) *TenantDeactivatedEvent {
	return &TenantDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantDeactivated, AggregateTypeTenant, t.ID, t.ID),
		PreviousStatus:  previous,
		Reason:          reason,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *TenantDeactivatedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// TenantSuspendedEvent is published when a tenant is suspended
type TenantSuspendedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason,omitempty"`
}

// NewTenantSuspendedEvent creates a new TenantSuspendedEvent
func NewTenantSuspendedEvent(t *Tenant, reason string) *TenantSuspendedEvent {
	return &TenantSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantSuspended, AggregateTypeTenant, t.ID, t.ID),
		Reason:          reason,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *TenantSuspendedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}
