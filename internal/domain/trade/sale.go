package trade

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale errors
var (
	ErrEmptyCart         = shared.NewDomainError("EMPTY_CART", "Cart is empty")
	ErrInvalidQuantity   = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	ErrQuantityScale     = shared.NewDomainError("INVALID_QUANTITY", "Quantity allows at most 3 decimals")
	ErrSaleNotFound      = shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
	ErrSaleNotAdjustable = shared.NewDomainError("SALE_NOT_ADJUSTABLE", "Only confirmed sales can be adjusted")
)

// SaleStatus is the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusConfirmed SaleStatus = "CONFIRMED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusConfirmed || s == SaleStatusCancelled
}

// Sale is a confirmed point-of-sale transaction
type Sale struct {
	shared.BaseEntity
	SoldAt        time.Time
	Total         valueobject.Money
	Status        SaleStatus
	PaymentMethod finance.PaymentMethod
	Lines         []SaleLine
}

// SaleLine snapshots the unit of sale and price at confirmation time
type SaleLine struct {
	ID               uuid.UUID
	SaleID           uuid.UUID
	ProductID        uuid.UUID
	Uom              string
	Qty              decimal.Decimal
	ConversionToBase decimal.Decimal
	UnitPrice        valueobject.Money
	LineTotal        valueobject.Money
}

// NewSaleLine computes the rounded line total
func NewSaleLine(productID uuid.UUID, uom string, qty, conversion decimal.Decimal, unitPrice valueobject.Money) (SaleLine, error) {
	if err := CheckQuantity(qty); err != nil {
		return SaleLine{}, err
	}
	if !conversion.IsPositive() {
		return SaleLine{}, shared.NewDomainError("INVALID_INPUT", "Conversion to base must be positive")
	}
	return SaleLine{
		ID:               uuid.New(),
		ProductID:        productID,
		Uom:              uom,
		Qty:              qty,
		ConversionToBase: conversion,
		UnitPrice:        unitPrice,
		LineTotal:        unitPrice.Multiply(qty),
	}, nil
}

// BaseQty returns the line quantity in base units, rounded to the stored scale
func (l SaleLine) BaseQty() decimal.Decimal {
	return l.Qty.Mul(l.ConversionToBase).Round(valueobject.QtyPlaces)
}

// NewSale creates a confirmed sale from its lines
func NewSale(lines []SaleLine, method finance.PaymentMethod) (*Sale, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if !method.IsValid() {
		return nil, finance.ErrInvalidPaymentMethod
	}
	s := &Sale{
		BaseEntity:    shared.NewBaseEntity(),
		SoldAt:        time.Now(),
		Status:        SaleStatusConfirmed,
		PaymentMethod: method,
	}
	s.ReplaceLines(lines)
	return s, nil
}

// ReplaceLines swaps the line set and recomputes the total
func (s *Sale) ReplaceLines(lines []SaleLine) {
	totals := make([]valueobject.Money, 0, len(lines))
	s.Lines = make([]SaleLine, len(lines))
	for i, l := range lines {
		l.SaleID = s.ID
		s.Lines[i] = l
		totals = append(totals, l.LineTotal)
	}
	s.Total = valueobject.SumMoney(totals...).Round()
	s.Touch()
}

// EnsureAdjustable fails unless the sale is confirmed
func (s *Sale) EnsureAdjustable() error {
	if s.Status != SaleStatusConfirmed {
		return ErrSaleNotAdjustable
	}
	return nil
}

// LineFor returns the line of a product, if any
func (s *Sale) LineFor(productID uuid.UUID) (SaleLine, bool) {
	for _, l := range s.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return SaleLine{}, false
}

// ProductIDs lists the products on the sale
func (s *Sale) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Lines))
	for i, l := range s.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

// CheckQuantity accepts positive quantities with at most QtyPlaces decimals
func CheckQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	return checkQtyScale(qty)
}

func checkQtyScale(qty decimal.Decimal) error {
	if !valueobject.HasAtMostPlaces(qty, QtyPlaces) {
		return ErrQuantityScale
	}
	return nil
}
