package models

import (
	"github.com/wms/backend/internal/domain/identity"
)

// TenantModel is the persistence model for the Tenant aggregate
type TenantModel struct {
	AggregateModel
	Name         string                `gorm:"type:varchar(200);not null"`
	ContactEmail string                `gorm:"type:varchar(254);not null;default:''"`
	Status       identity.TenantStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *identity.Tenant {
	return identity.RestoreTenant(m.ID, m.Name, m.ContactEmail, m.Status, m.Version, m.CreatedAt, m.UpdatedAt)
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(&t.BaseAggregateRoot)
	m.Name = t.Name
	m.ContactEmail = t.ContactEmail
	m.Status = t.Status
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
