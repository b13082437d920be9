package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/inventory"
)

// Tenant schema table names
const (
	InventoryItemsTable = "inventory_items"
	StockTransfersTable = "stock_transfers"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate
type InventoryItemModel struct {
	TenantAggregateModel
	SKU           string          `gorm:"column:sku;type:varchar(64);not null"`
	WarehouseCode string          `gorm:"type:varchar(32);not null"`
	OnHand        decimal.Decimal `gorm:"type:numeric(18,4);not null"`
}

// TableName returns the unqualified table name; repositories add the schema
func (InventoryItemModel) TableName() string {
	return InventoryItemsTable
}

// ToDomain converts the persistence model to a domain InventoryItem
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return inventory.RestoreInventoryItem(m.ID, m.TenantID, m.SKU, m.WarehouseCode, m.OnHand, m.Version, m.CreatedAt, m.UpdatedAt)
}

// FromDomain populates the persistence model from a domain InventoryItem
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainTenantAggregateRoot(&i.TenantAggregateRoot)
	m.SKU = i.SKU
	m.WarehouseCode = i.WarehouseCode
	m.OnHand = i.OnHand
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// StockTransferModel is the persistence model for the StockTransfer aggregate
type StockTransferModel struct {
	TenantAggregateModel
	SourceItemID      string                   `gorm:"type:uuid;not null"`
	DestinationItemID string                   `gorm:"type:uuid;not null"`
	Quantity          decimal.Decimal          `gorm:"type:numeric(18,4);not null"`
	Status            inventory.TransferStatus `gorm:"type:varchar(20);not null;default:'REQUESTED'"`
	CompletedAt       *time.Time
}

// TableName returns the unqualified table name; repositories add the schema
func (StockTransferModel) TableName() string {
	return StockTransfersTable
}

// ToDomain converts the persistence model to a domain StockTransfer
func (m *StockTransferModel) ToDomain() *inventory.StockTransfer {
	return inventory.RestoreStockTransfer(m.ID, m.TenantID, m.SourceItemID, m.DestinationItemID, m.Quantity,
		m.Status, m.CompletedAt, m.Version, m.CreatedAt, m.UpdatedAt)
}

// FromDomain populates the persistence model from a domain StockTransfer
func (m *StockTransferModel) FromDomain(t *inventory.StockTransfer) {
	m.FromDomainTenantAggregateRoot(&t.TenantAggregateRoot)
	m.SourceItemID = t.SourceItemID
	m.DestinationItemID = t.DestinationItemID
	m.Quantity = t.Quantity
	m.Status = t.Status
	m.CompletedAt = t.CompletedAt
}

// StockTransferModelFromDomain creates a new persistence model from a domain StockTransfer
func StockTransferModelFromDomain(t *inventory.StockTransfer) *StockTransferModel {
	m := &StockTransferModel{}
	m.FromDomain(t)
	return m
}
