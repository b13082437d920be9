package persistence

import (
	"context"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"github.com/wms/backend/internal/infrastructure/persistence/tenant"
)

// GormInventoryItemRepository stores inventory items in the owning tenant's schema
type GormInventoryItemRepository struct {
	tdb *tenant.TenantDB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(tdb *tenant.TenantDB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{tdb: tdb}
}

// FindByID loads an item; an unprovisioned tenant surfaces shared.ErrSchemaNotProvisioned
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, tenantID, id string) (*inventory.InventoryItem, error) {
	q, err := r.tdb.Table(ctx, tenantID, models.InventoryItemsTable)
	if err != nil {
		return nil, err
	}
	var model models.InventoryItemModel
	if err := q.Scopes(tenant.Scope(tenantID)).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, inventory.AggregateTypeInventoryItem, id)
	}
	return model.ToDomain(), nil
}

// Save inserts or updates the item under optimistic locking
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	q, err := r.tdb.Table(ctx, item.TenantID, models.InventoryItemsTable)
	if err != nil {
		return err
	}
	model := models.InventoryItemModelFromDomain(item)
	return saveVersioned(q, item, inventory.AggregateTypeInventoryItem, model,
		func(v int) { model.Version = v },
		map[string]any{
			"on_hand": item.OnHand,
		})
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
