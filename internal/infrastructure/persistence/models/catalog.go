package models

import (
	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	BaseModel
	SKU       *string                `gorm:"type:varchar(64);uniqueIndex"`
	Name      string                 `gorm:"type:varchar(200);not null"`
	Category  string                 `gorm:"type:varchar(100)"`
	BaseUom   string                 `gorm:"type:varchar(20);not null"`
	Active    bool                   `gorm:"not null"`
	SalePrice decimal.Decimal        `gorm:"type:decimal(14,2);not null;default:0"`
	UomPrices []ProductUomPriceModel `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		SKU:        m.SKU,
		Name:       m.Name,
		Category:   m.Category,
		BaseUom:    m.BaseUom,
		Active:     m.Active,
		SalePrice:  valueobject.NewMoney(m.SalePrice),
		UomPrices:  make([]catalog.ProductUomPrice, len(m.UomPrices)),
	}
	for i, up := range m.UomPrices {
		p.UomPrices[i] = catalog.ProductUomPrice{
			ID:               up.ID,
			ProductID:        up.ProductID,
			Uom:              up.Uom,
			SalePrice:        valueobject.NewMoney(up.SalePrice),
			ConversionToBase: up.ConversionToBase,
			IsBase:           up.IsBase,
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SKU = p.SKU
	m.Name = p.Name
	m.Category = p.Category
	m.BaseUom = p.BaseUom
	m.Active = p.Active
	m.SalePrice = p.SalePrice.Amount()
	m.UomPrices = make([]ProductUomPriceModel, len(p.UomPrices))
	for i, up := range p.UomPrices {
		m.UomPrices[i] = ProductUomPriceModel{
			ID:               up.ID,
			ProductID:        p.ID,
			Uom:              up.Uom,
			SalePrice:        up.SalePrice.Amount(),
			ConversionToBase: up.ConversionToBase,
			IsBase:           up.IsBase,
		}
	}
}

// ProductFromDomain creates a persistence model from a domain Product.
func ProductFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductUomPriceModel is an alternate unit of sale of a product.
type ProductUomPriceModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_uom,priority:1"`
	Uom              string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_product_uom,priority:2"`
	SalePrice        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ConversionToBase decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsBase           bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductUomPriceModel) TableName() string {
	return "product_uom_prices"
}
