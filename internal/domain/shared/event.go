package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an immutable fact about an aggregate.
//
// The set of event kinds is closed: every concrete event implements
// WithMetadata itself, returning a copy that carries the given metadata.
// Enrichment never mutates the receiver.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
	AggregateType() string
	TenantID() string
	Metadata() *EventMetadata
	WithMetadata(metadata EventMetadata) DomainEvent
}

// EventMetadata carries traceability information attached to an event
type EventMetadata struct {
	CorrelationID string `json:"correlationId,omitempty"`
	CausationID   string `json:"causationId,omitempty"`
	UserID        string `json:"userId,omitempty"`
}

// IsZero reports whether no field is set
func (m EventMetadata) IsZero() bool {
	return m.CorrelationID == "" && m.CausationID == "" && m.UserID == ""
}

// BaseDomainEvent provides the header shared by every event kind.
// Header fields are excluded from JSON so that marshaling a concrete event
// yields only its payload.
type BaseDomainEvent struct {
	ID            uuid.UUID      `json:"-"`
	Type          string         `json:"-"`
	Timestamp     time.Time      `json:"-"`
	AggID         string         `json:"-"`
	AggType       string         `json:"-"`
	TenantIDValue string         `json:"-"`
	Meta          *EventMetadata `json:"-"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() string {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// TenantID returns the tenant ID
func (e *BaseDomainEvent) TenantID() string {
	return e.TenantIDValue
}

// Metadata returns the attached metadata, nil if the event was never enriched
func (e *BaseDomainEvent) Metadata() *EventMetadata {
	return e.Meta
}

// CopyWithMetadata returns a copy of the header carrying its own metadata value.
// Concrete events use it to implement WithMetadata.
func (e BaseDomainEvent) CopyWithMetadata(metadata EventMetadata) BaseDomainEvent {
	m := metadata
	e.Meta = &m
	return e
}

// NewBaseDomainEvent creates a new event header with a fresh ID and timestamp
func NewBaseDomainEvent(eventType, aggType, aggID, tenantID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
	}
}
