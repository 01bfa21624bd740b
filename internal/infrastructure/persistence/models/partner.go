package models

import "github.com/ferreteria/backend/internal/domain/partner"

// SupplierModel is the persistence model for the Supplier entity.
type SupplierModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	TaxID  string `gorm:"type:varchar(20)"`
	Active bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		TaxID:      m.TaxID,
		Active:     m.Active,
	}
}

// SupplierFromDomain creates a persistence model from a domain Supplier.
func SupplierFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{Name: s.Name, TaxID: s.TaxID, Active: s.Active}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
