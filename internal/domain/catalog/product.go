package catalog

import (
	"strings"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog errors
var (
	ErrProductNotFound   = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrProductInactive   = shared.NewDomainError("PRODUCT_INACTIVE", "Product is inactive")
	ErrProductReferenced = shared.NewDomainError("PRODUCT_REFERENCED", "Product is referenced by sales, invoices or stock moves")
	ErrUnknownUom        = shared.NewDomainError("INVALID_INPUT", "Unit of measure is not configured for this product")
)

// Product is a sellable item. Stock is tracked in BaseUom.
type Product struct {
	shared.BaseEntity
	SKU       *string
	Name      string
	Category  string
	BaseUom   string
	Active    bool
	SalePrice valueobject.Money
	UomPrices []ProductUomPrice
}

// ProductUomPrice is an alternate unit of sale with its own price.
// ConversionToBase is how many base units one unit of Uom holds.
type ProductUomPrice struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	Uom              string
	SalePrice        valueobject.Money
	ConversionToBase decimal.Decimal
	IsBase           bool
}

// NewProduct creates an active product priced in its base unit
func NewProduct(name, baseUom string, salePrice valueobject.Money) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name cannot be empty")
	}
	baseUom = strings.ToUpper(strings.TrimSpace(baseUom))
	if baseUom == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Base unit of measure is required")
	}
	if salePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sale price cannot be negative")
	}

	p := &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		BaseUom:    baseUom,
		Active:     true,
		SalePrice:  salePrice.Round(),
	}
	p.UomPrices = []ProductUomPrice{{
		ID:               uuid.New(),
		ProductID:        p.ID,
		Uom:              baseUom,
		SalePrice:        p.SalePrice,
		ConversionToBase: decimal.NewFromInt(1),
		IsBase:           true,
	}}
	return p, nil
}

// AddUomPrice registers an alternate unit of sale
func (p *Product) AddUomPrice(uom string, price valueobject.Money, conversionToBase decimal.Decimal) error {
	uom = strings.ToUpper(strings.TrimSpace(uom))
	if uom == "" {
		return shared.NewDomainError("INVALID_INPUT", "Unit of measure is required")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Sale price cannot be negative")
	}
	if !conversionToBase.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Conversion to base must be positive")
	}
	for _, up := range p.UomPrices {
		if up.Uom == uom {
			return shared.NewDomainError("ALREADY_EXISTS", "Unit of measure already configured for product")
		}
	}
	p.UomPrices = append(p.UomPrices, ProductUomPrice{
		ID:               uuid.New(),
		ProductID:        p.ID,
		Uom:              uom,
		SalePrice:        price.Round(),
		ConversionToBase: conversionToBase,
	})
	return nil
}

// PriceFor resolves the unit of sale. An empty uom selects the base unit.
func (p *Product) PriceFor(uom string) (ProductUomPrice, error) {
	uom = strings.ToUpper(strings.TrimSpace(uom))
	if uom == "" || uom == p.BaseUom {
		for _, up := range p.UomPrices {
			if up.IsBase {
				return up, nil
			}
		}
		return ProductUomPrice{
			ProductID:        p.ID,
			Uom:              p.BaseUom,
			SalePrice:        p.SalePrice,
			ConversionToBase: decimal.NewFromInt(1),
			IsBase:           true,
		}, nil
	}
	for _, up := range p.UomPrices {
		if up.Uom == uom {
			return up, nil
		}
	}
	return ProductUomPrice{}, ErrUnknownUom
}

// EnsureSellable returns an error when the product cannot take part in a sale or purchase
func (p *Product) EnsureSellable() error {
	if !p.Active {
		return shared.NewDomainError(ErrProductInactive.Code, "Product \""+p.Name+"\" is inactive")
	}
	return nil
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.Active = false
	p.Touch()
}

// ToBase converts a quantity expressed in this unit to base units, rounded
// half away from zero to the stored quantity scale.
func (up ProductUomPrice) ToBase(qty decimal.Decimal) decimal.Decimal {
	return qty.Mul(up.ConversionToBase).Round(valueobject.QtyPlaces)
}
