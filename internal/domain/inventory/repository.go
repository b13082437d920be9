package inventory

import (
	"context"
)

// InventoryItemRepository persists inventory items in the tenant's schema
type InventoryItemRepository interface {
	FindByID(ctx context.Context, tenantID, id string) (*InventoryItem, error)
	Save(ctx context.Context, item *InventoryItem) error
}

// StockTransferRepository persists stock transfers in the tenant's schema
type StockTransferRepository interface {
	FindByID(ctx context.Context, tenantID, id string) (*StockTransfer, error)
	Save(ctx context.Context, transfer *StockTransfer) error
}
