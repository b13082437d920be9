package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// TransferStatus represents the lifecycle of a stock transfer
type TransferStatus string

const (
	TransferStatusRequested TransferStatus = "REQUESTED"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// StockTransfer moves a quantity from one inventory item to another
type StockTransfer struct {
	shared.TenantAggregateRoot
	SourceItemID      string
	DestinationItemID string
	Quantity          decimal.Decimal
	Status            TransferStatus
	CompletedAt       *time.Time
}

// RequestStockTransfer opens a transfer between two distinct items
func RequestStockTransfer(tenantID, sourceItemID, destinationItemID string, quantity decimal.Decimal) (*StockTransfer, error) {
	if tenantID == "" {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if sourceItemID == "" || destinationItemID == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Source and destination items are required")
	}
	if sourceItemID == destinationItemID {
		return nil, shared.NewDomainError("SAME_ITEM", "Source and destination must differ")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	t := &StockTransfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SourceItemID:        sourceItemID,
		DestinationItemID:   destinationItemID,
		Quantity:            quantity,
		Status:              TransferStatusRequested,
	}
	t.AddDomainEvent(NewTransferRequestedEvent(t))
	return t, nil
}

// RestoreStockTransfer rebuilds a transfer from persisted state without raising events
func RestoreStockTransfer(id, tenantID, sourceItemID, destinationItemID string, quantity decimal.Decimal,
	status TransferStatus, completedAt *time.Time, version int, createdAt, updatedAt time.Time) *StockTransfer {
	return &StockTransfer{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
				Version:    version,
			},
			TenantID: tenantID,
		},
		SourceItemID:      sourceItemID,
		DestinationItemID: destinationItemID,
		Quantity:          quantity,
		Status:            status,
		CompletedAt:       completedAt,
	}
}

// Complete marks the transfer as done. Stock movement on the two items is
// performed by the caller in the same transaction.
func (t *StockTransfer) Complete() error {
	if t.Status != TransferStatusRequested {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Only a requested transfer can be completed")
	}

	now := time.Now().UTC()
	t.Status = TransferStatusCompleted
	t.CompletedAt = &now
	t.Touch()

	t.AddDomainEvent(NewTransferCompletedEvent(t))
	return nil
}

// Cancel abandons a requested transfer
func (t *StockTransfer) Cancel(reason string) error {
	if t.Status != TransferStatusRequested {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Only a requested transfer can be cancelled")
	}

	t.Status = TransferStatusCancelled
	t.Touch()

	t.AddDomainEvent(NewTransferCancelledEvent(t, reason))
	return nil
}
