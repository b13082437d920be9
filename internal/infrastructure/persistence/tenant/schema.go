package tenant

import (
	"fmt"
	"strings"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
)

const (
	schemaPrefix = "tenant_"
	schemaSuffix = "_schema"
)

// NormalizeID lower-cases and trims a tenant id
func NormalizeID(tenantID string) string {
	return strings.ToLower(strings.TrimSpace(tenantID))
}

// SchemaName returns the schema holding tenantID's data: tenant_{id}_schema.
// The same id always maps to the same name.
func SchemaName(tenantID string) (string, error) {
	id := NormalizeID(tenantID)
	if id == "" {
		return "", ErrTenantIDRequired
	}
	if !identity.ValidTenantID(id) {
		return "", shared.NewValidationError("invalid tenant id", map[string]string{
			"tenantId": fmt.Sprintf("%q must start with a letter and contain only a-z, 0-9 and _", tenantID),
		})
	}
	return schemaPrefix + id + schemaSuffix, nil
}
