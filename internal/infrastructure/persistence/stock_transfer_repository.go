package persistence

import (
	"context"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"github.com/wms/backend/internal/infrastructure/persistence/tenant"
)

// GormStockTransferRepository stores stock transfers in the owning tenant's schema
type GormStockTransferRepository struct {
	tdb *tenant.TenantDB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(tdb *tenant.TenantDB) *GormStockTransferRepository {
	return &GormStockTransferRepository{tdb: tdb}
}

// FindByID loads a transfer
func (r *GormStockTransferRepository) FindByID(ctx context.Context, tenantID, id string) (*inventory.StockTransfer, error) {
	q, err := r.tdb.Table(ctx, tenantID, models.StockTransfersTable)
	if err != nil {
		return nil, err
	}
	var model models.StockTransferModel
	if err := q.Scopes(tenant.Scope(tenantID)).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, inventory.AggregateTypeStockTransfer, id)
	}
	return model.ToDomain(), nil
}

// Save inserts or updates the transfer under optimistic locking
func (r *GormStockTransferRepository) Save(ctx context.Context, t *inventory.StockTransfer) error {
	q, err := r.tdb.Table(ctx, t.TenantID, models.StockTransfersTable)
	if err != nil {
		return err
	}
	model := models.StockTransferModelFromDomain(t)
	return saveVersioned(q, t, inventory.AggregateTypeStockTransfer, model,
		func(v int) { model.Version = v },
		map[string]any{
			"status":       t.Status,
			"completed_at": t.CompletedAt,
		})
}

var _ inventory.StockTransferRepository = (*GormStockTransferRepository)(nil)
