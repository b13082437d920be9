// Package tenant routes tenant-scoped persistence to the tenant's own schema.
//
// Every tenant's operational tables live in tenant_{id}_schema. Repositories
// ask TenantDB for a table handle; the handle joins the ambient transaction
// and is qualified with the schema returned by the Resolver.
//
// Usage:
//
//	tdb := tenant.NewTenantDB(gormDB, resolver)
//	q, err := tdb.Table(ctx, "acme", "inventory_items")
//	q.Where("id = ?", id).First(&row) // SELECT ... FROM "tenant_acme_schema"."inventory_items"
package tenant

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wms/backend/internal/infrastructure/persistence/transaction"
)

// ErrTenantIDRequired is returned when a tenant-scoped call has no tenant id
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope filters rows by the tenant_id column. Tenant tables keep the column
// so rows stay attributable after a schema is exported.
func Scope(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// TenantDB hands out schema-qualified table handles
type TenantDB struct {
	db       *gorm.DB
	resolver Resolver
}

// NewTenantDB creates a new TenantDB
func NewTenantDB(db *gorm.DB, resolver Resolver) *TenantDB {
	return &TenantDB{db: db, resolver: resolver}
}

// Table returns a handle on schema.table for tenantID. The handle uses the
// transaction carried by ctx when there is one.
func (t *TenantDB) Table(ctx context.Context, tenantID, table string) (*gorm.DB, error) {
	if tenantID == "" {
		return nil, ErrTenantIDRequired
	}
	schema, err := t.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return transaction.DB(ctx, t.db).Table(schema + "." + table), nil
}
