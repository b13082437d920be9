package shared

// AggregateRoot is the base interface for all aggregate roots.
//
// An aggregate buffers the events produced by its most recent mutation. The
// buffer is transient: it is never persisted and never serialized into a cache
// entry. Command handlers drain it with GetDomainEvents and ClearDomainEvents.
type AggregateRoot interface {
	Entity
	GetTenantID() string
	GetVersion() int
	SetVersion(version int)
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version 0 means the aggregate has never been saved.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// SetVersion records the version assigned by the repository on save
func (a *BaseAggregateRoot) SetVersion(version int) {
	a.Version = version
}

// IsNew reports whether the aggregate has been persisted yet
func (a *BaseAggregateRoot) IsNew() bool {
	return a.Version == 0
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns a copy of the pending domain events.
// Callers may keep the returned slice after the buffer is cleared.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	if len(a.domainEvents) == 0 {
		return nil
	}
	events := make([]DomainEvent, len(a.domainEvents))
	copy(events, a.domainEvents)
	return events
}

// HasPendingEvents reports whether the buffer is non-empty
func (a *BaseAggregateRoot) HasPendingEvents() bool {
	return len(a.domainEvents) > 0
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new, unsaved aggregate root with a generated ID
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// NewBaseAggregateRootWithID creates a new, unsaved aggregate root with the given ID
func NewBaseAggregateRootWithID(id string) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityWithID(id)}
}

// TenantAggregateRoot extends BaseAggregateRoot with multi-tenant support
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID string
}

// GetTenantID returns the owning tenant
func (t *TenantAggregateRoot) GetTenantID() string {
	return t.TenantID
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID string) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}
