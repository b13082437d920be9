package cache

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/inventory"
)

// TenantSnapshot is the cached form of a tenant. It carries state only:
// pending domain events never reach the cache.
type TenantSnapshot struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	ContactEmail string                `json:"contactEmail,omitempty"`
	Status       identity.TenantStatus `json:"status"`
	Version      int                   `json:"version"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewTenantSnapshot captures t's persisted state
func NewTenantSnapshot(t *identity.Tenant) TenantSnapshot {
	return TenantSnapshot{
		ID:           t.ID,
		Name:         t.Name,
		ContactEmail: t.ContactEmail,
		Status:       t.Status,
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ToDomain rebuilds a tenant with an empty event buffer
func (s TenantSnapshot) ToDomain() *identity.Tenant {
	return identity.RestoreTenant(s.ID, s.Name, s.ContactEmail, s.Status, s.Version, s.CreatedAt, s.UpdatedAt)
}

// InventoryItemSnapshot is the cached form of an inventory item
type InventoryItemSnapshot struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	SKU           string          `json:"sku"`
	WarehouseCode string          `json:"warehouseCode"`
	OnHand        decimal.Decimal `json:"onHand"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewInventoryItemSnapshot captures item's persisted state
func NewInventoryItemSnapshot(item *inventory.InventoryItem) InventoryItemSnapshot {
	return InventoryItemSnapshot{
		ID:            item.ID,
		TenantID:      item.TenantID,
		SKU:           item.SKU,
		WarehouseCode: item.WarehouseCode,
		OnHand:        item.OnHand,
		Version:       item.Version,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// ToDomain rebuilds an item with an empty event buffer
func (s InventoryItemSnapshot) ToDomain() *inventory.InventoryItem {
	return inventory.RestoreInventoryItem(s.ID, s.TenantID, s.SKU, s.WarehouseCode, s.OnHand, s.Version, s.CreatedAt, s.UpdatedAt)
}
