package identity

import (
	"time"

	"github.com/wms/backend/internal/domain/identity"
)

// CreateTenantCommand registers a new tenant
type CreateTenantCommand struct {
	ID           string `json:"id" validate:"required,min=2,max=40"`
	Name         string `json:"name" validate:"required,max=200"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email,max=254"`
}

// ChangeTenantStatusCommand activates, deactivates or suspends a tenant
type ChangeTenantStatusCommand struct {
	TenantID string `json:"tenantId" validate:"required"`
	Reason   string `json:"reason" validate:"max=500"`
}

// TenantDTO represents tenant data transfer object
type TenantDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	Status       string    `json:"status"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToTenantDTO converts a domain Tenant to a TenantDTO
func ToTenantDTO(t *identity.Tenant) TenantDTO {
	return TenantDTO{
		ID:           t.ID,
		Name:         t.Name,
		ContactEmail: t.ContactEmail,
		Status:       string(t.Status),
		Version:      t.GetVersion(),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
