package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeTransferRequested = "TransferRequested"
	EventTypeTransferCompleted = "TransferCompleted"
	EventTypeTransferCancelled = "TransferCancelled"
)

// TransferRequestedEvent is published when a transfer is opened
type TransferRequestedEvent struct {
	shared.BaseDomainEvent
	SourceItemID      string          `json:"sourceItemId"`
	DestinationItemID string          `json:"destinationItemId"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// NewTransferRequestedEvent creates a new TransferRequestedEvent
func NewTransferRequestedEvent(t *StockTransfer) *TransferRequestedEvent {
	return &TransferRequestedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransferRequested, AggregateTypeStockTransfer, t.ID, t.TenantID),
		SourceItemID:      t.SourceItemID,
		DestinationItemID: t.DestinationItemID,
		Quantity:          t.Quantity,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *TransferRequestedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// TransferCompletedEvent is published when stock has moved between the two items.
// It names both items so listeners can invalidate their read views.
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	SourceItemID      string          `json:"sourceItemId"`
	DestinationItemID string          `json:"destinationItemId"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// NewTransferCompletedEvent creates a new TransferCompletedEvent
func NewTransferCompletedEvent(t *StockTransfer) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransferCompleted, AggregateTypeStockTransfer, t.ID, t.TenantID),
		SourceItemID:      t.SourceItemID,
		DestinationItemID: t.DestinationItemID,
		Quantity:          t.Quantity,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *TransferCompletedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// TransferCancelledEvent is published when a requested transfer is abandoned
type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason,omitempty"`
}

// NewTransferCancelledEvent creates a new TransferCancelledEvent
func NewTransferCancelledEvent(t *StockTransfer, reason string) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCancelled, AggregateTypeStockTransfer, t.ID, t.TenantID),
		Reason:          reason,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *TransferCancelledEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}
