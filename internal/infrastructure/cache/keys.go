package cache

import "strings"

// Key namespaces. Tenant-scoped entities carry the tenant id in the key so
// two tenants never share an entry.
const (
	NamespaceTenants        = "tenants"
	NamespaceInventoryItems = "inventory-items"
)

// Key builds {namespace}:{id} for global entities
func Key(namespace, id string) string {
	return namespace + ":" + id
}

// TenantKey builds {namespace}:{tenantId}:{id} for tenant-scoped entities
func TenantKey(namespace, tenantID, id string) string {
	return strings.Join([]string{namespace, tenantID, id}, ":")
}

// TenantCacheKey is the key of a tenant snapshot
func TenantCacheKey(tenantID string) string {
	return Key(NamespaceTenants, tenantID)
}

// InventoryItemCacheKey is the key of an inventory item snapshot
func InventoryItemCacheKey(tenantID, itemID string) string {
	return TenantKey(NamespaceInventoryItems, tenantID, itemID)
}
