package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// InventoryItem tracks the on-hand quantity of one SKU at one warehouse location
type InventoryItem struct {
	shared.TenantAggregateRoot
	SKU           string
	WarehouseCode string
	OnHand        decimal.Decimal
}

// NewInventoryItem creates an empty stock record for a SKU
func NewInventoryItem(tenantID, sku, warehouseCode string) (*InventoryItem, error) {
	if tenantID == "" {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	warehouseCode = strings.TrimSpace(warehouseCode)
	if warehouseCode == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse code cannot be empty")
	}

	item := &InventoryItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		WarehouseCode:       warehouseCode,
		OnHand:              decimal.Zero,
	}
	item.AddDomainEvent(NewInventoryItemCreatedEvent(item))
	return item, nil
}

// RestoreInventoryItem rebuilds an item from persisted state without raising events
func RestoreInventoryItem(id, tenantID, sku, warehouseCode string, onHand decimal.Decimal, version int, createdAt, updatedAt time.Time) *InventoryItem {
	return &InventoryItem{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
				Version:    version,
			},
			TenantID: tenantID,
		},
		SKU:           sku,
		WarehouseCode: warehouseCode,
		OnHand:        onHand,
	}
}

// Receive adds stock to the item
func (i *InventoryItem) Receive(quantity decimal.Decimal, reference string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	i.OnHand = i.OnHand.Add(quantity)
	i.Touch()

	i.AddDomainEvent(NewStockReceivedEvent(i, quantity, reference))
	return nil
}

// Pick removes stock from the item. Picking the last unit also raises StockDepleted.
func (i *InventoryItem) Pick(quantity decimal.Decimal, reference string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.OnHand.LessThan(quantity) {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			"Insufficient stock: on hand "+i.OnHand.String()+", requested "+quantity.String())
	}

	i.OnHand = i.OnHand.Sub(quantity)
	i.Touch()

	i.AddDomainEvent(NewStockPickedEvent(i, quantity, reference))
	if i.OnHand.IsZero() {
		i.AddDomainEvent(NewStockDepletedEvent(i))
	}
	return nil
}
