// Package models contains GORM persistence models that map to database tables.
// Domain aggregates stay free of ORM tags; repositories convert through
// FromDomain / ToDomain.
//
//   - base.go: shared columns (id, timestamps, version, tenant_id)
//   - identity.go: public.tenants
//   - inventory.go: inventory_items and stock_transfers inside each tenant schema
package models
