package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/inventory"
)

// CreateItemCommand opens a stock record for a SKU at a warehouse
type CreateItemCommand struct {
	TenantID      string `json:"tenantId" validate:"required"`
	SKU           string `json:"sku" validate:"required,max=64"`
	WarehouseCode string `json:"warehouseCode" validate:"required,max=32"`
}

// MoveStockCommand receives or picks a quantity on one item.
// Quantity positivity is a domain rule and is checked by the aggregate.
type MoveStockCommand struct {
	TenantID  string          `json:"tenantId" validate:"required"`
	ItemID    string          `json:"itemId" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference" validate:"max=100"`
}

// RequestTransferCommand opens a transfer between two items of the same tenant
type RequestTransferCommand struct {
	TenantID          string          `json:"tenantId" validate:"required"`
	SourceItemID      string          `json:"sourceItemId" validate:"required,uuid"`
	DestinationItemID string          `json:"destinationItemId" validate:"required,uuid,nefield=SourceItemID"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// TransferCommand completes or cancels a transfer
type TransferCommand struct {
	TenantID   string `json:"tenantId" validate:"required"`
	TransferID string `json:"transferId" validate:"required,uuid"`
	Reason     string `json:"reason" validate:"max=500"`
}

// InventoryItemDTO represents inventory item data transfer object
type InventoryItemDTO struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	SKU           string          `json:"sku"`
	WarehouseCode string          `json:"warehouseCode"`
	OnHand        decimal.Decimal `json:"onHand"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToInventoryItemDTO converts a domain InventoryItem to its DTO
func ToInventoryItemDTO(i *inventory.InventoryItem) InventoryItemDTO {
	return InventoryItemDTO{
		ID:            i.ID,
		TenantID:      i.TenantID,
		SKU:           i.SKU,
		WarehouseCode: i.WarehouseCode,
		OnHand:        i.OnHand,
		Version:       i.GetVersion(),
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// StockTransferDTO represents stock transfer data transfer object
type StockTransferDTO struct {
	ID                string          `json:"id"`
	TenantID          string          `json:"tenantId"`
	SourceItemID      string          `json:"sourceItemId"`
	DestinationItemID string          `json:"destinationItemId"`
	Quantity          decimal.Decimal `json:"quantity"`
	Status            string          `json:"status"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ToStockTransferDTO converts a domain StockTransfer to its DTO
func ToStockTransferDTO(t *inventory.StockTransfer) StockTransferDTO {
	return StockTransferDTO{
		ID:                t.ID,
		TenantID:          t.TenantID,
		SourceItemID:      t.SourceItemID,
		DestinationItemID: t.DestinationItemID,
		Quantity:          t.Quantity,
		Status:            string(t.Status),
		CompletedAt:       t.CompletedAt,
		Version:           t.GetVersion(),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
