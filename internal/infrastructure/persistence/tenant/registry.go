package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/transaction"
)

// Resolver maps a tenant id to the schema that holds its data.
// Resolve never creates anything; an unknown tenant yields
// shared.ErrSchemaNotProvisioned, which callers may retry.
type Resolver interface {
	Resolve(ctx context.Context, tenantID string) (string, error)
}

// Registrar records a provisioned schema
type Registrar interface {
	Register(ctx context.Context, tenantID, schema string) error
}

// Registry is an in-process Resolver and Registrar
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]string)}
}

// Resolve implements Resolver
func (r *Registry) Resolve(_ context.Context, tenantID string) (string, error) {
	id := NormalizeID(tenantID)
	if id == "" {
		return "", ErrTenantIDRequired
	}
	r.mu.RLock()
	schema, ok := r.schemas[id]
	r.mu.RUnlock()
	if !ok {
		return "", shared.SchemaNotProvisioned(id)
	}
	return schema, nil
}

// Register implements Registrar. Registering the same mapping twice is a no-op.
func (r *Registry) Register(_ context.Context, tenantID, schema string) error {
	id := NormalizeID(tenantID)
	if id == "" {
		return ErrTenantIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.schemas[id]; ok && existing != schema {
		return fmt.Errorf("tenant %s is already mapped to schema %s", id, existing)
	}
	r.schemas[id] = schema
	return nil
}

// TenantSchemaModel is the persistence row of public.tenant_schemas
type TenantSchemaModel struct {
	TenantID   string    `gorm:"column:tenant_id;type:varchar(40);primaryKey"`
	SchemaName string    `gorm:"column:schema_name;type:varchar(63);not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

// TableName returns the table name for GORM
func (TenantSchemaModel) TableName() string {
	return "tenant_schemas"
}

// GormRegistry stores tenant to schema mappings in the public schema
type GormRegistry struct {
	db *gorm.DB
}

// NewGormRegistry creates a registry backed by db
func NewGormRegistry(db *gorm.DB) *GormRegistry {
	return &GormRegistry{db: db}
}

// Resolve implements Resolver
func (r *GormRegistry) Resolve(ctx context.Context, tenantID string) (string, error) {
	id := NormalizeID(tenantID)
	if id == "" {
		return "", ErrTenantIDRequired
	}

	var model TenantSchemaModel
	err := transaction.DB(ctx, r.db).Where("tenant_id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", shared.SchemaNotProvisioned(id)
	}
	if err != nil {
		return "", fmt.Errorf("resolve schema for tenant %s: %w", id, err)
	}
	return model.SchemaName, nil
}

// Register implements Registrar. An existing row is left untouched.
func (r *GormRegistry) Register(ctx context.Context, tenantID, schema string) error {
	id := NormalizeID(tenantID)
	if id == "" {
		return ErrTenantIDRequired
	}
	model := TenantSchemaModel{TenantID: id, SchemaName: schema, CreatedAt: time.Now().UTC()}
	err := transaction.DB(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("register schema for tenant %s: %w", id, err)
	}
	return nil
}

// List returns every registered mapping ordered by tenant id
func (r *GormRegistry) List(ctx context.Context) ([]TenantSchemaModel, error) {
	var models []TenantSchemaModel
	if err := transaction.DB(ctx, r.db).Order("tenant_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list tenant schemas: %w", err)
	}
	return models, nil
}

type cachedSchema struct {
	schema    string
	expiresAt time.Time
}

// CachedResolver keeps positive lookups of an underlying Resolver in memory.
// Misses are not cached so a freshly provisioned tenant resolves on the next call.
type CachedResolver struct {
	next    Resolver
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedSchema
	now     func() time.Time
}

// NewCachedResolver wraps next with a TTL cache
func NewCachedResolver(next Resolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		next:    next,
		ttl:     ttl,
		entries: make(map[string]cachedSchema),
		now:     time.Now,
	}
}

// Resolve implements Resolver
func (c *CachedResolver) Resolve(ctx context.Context, tenantID string) (string, error) {
	id := NormalizeID(tenantID)
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.schema, nil
	}

	schema, err := c.next.Resolve(ctx, id)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[id] = cachedSchema{schema: schema, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return schema, nil
}

var (
	_ Resolver  = (*Registry)(nil)
	_ Registrar = (*Registry)(nil)
	_ Resolver  = (*GormRegistry)(nil)
	_ Registrar = (*GormRegistry)(nil)
	_ Resolver  = (*CachedResolver)(nil)
)
