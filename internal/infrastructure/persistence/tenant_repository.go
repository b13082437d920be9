package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"github.com/wms/backend/internal/infrastructure/persistence/transaction"
)

// GormTenantRepository implements identity.TenantRepository on the public schema
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id string) (*identity.Tenant, error) {
	var model models.TenantModel
	if err := transaction.DB(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, identity.AggregateTypeTenant, id)
	}
	return model.ToDomain(), nil
}

// Save inserts a new tenant or updates an existing one under optimistic locking
func (r *GormTenantRepository) Save(ctx context.Context, t *identity.Tenant) error {
	model := models.TenantModelFromDomain(t)
	q := transaction.DB(ctx, r.db).Table(model.TableName())
	return saveVersioned(q, t, identity.AggregateTypeTenant, model,
		func(v int) { model.Version = v },
		map[string]any{
			"name":          t.Name,
			"contact_email": t.ContactEmail,
			"status":        t.Status,
		})
}

var _ identity.TenantRepository = (*GormTenantRepository)(nil)
