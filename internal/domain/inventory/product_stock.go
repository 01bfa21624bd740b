package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStock is the on-hand aggregate of one product, in base units
type ProductStock struct {
	ProductID uuid.UUID
	OnHandQty decimal.Decimal
	UpdatedAt time.Time
}

// NewProductStock creates an empty stock row
func NewProductStock(productID uuid.UUID) *ProductStock {
	return &ProductStock{
		ProductID: productID,
		OnHandQty: decimal.Zero,
		UpdatedAt: time.Now(),
	}
}

// CanCover reports whether qty base units are available
func (s *ProductStock) CanCover(qty decimal.Decimal) bool {
	return s.OnHandQty.GreaterThanOrEqual(qty)
}

// apply adds a signed delta. Only StockLedger calls it, after locking the row.
func (s *ProductStock) apply(delta decimal.Decimal) error {
	next := s.OnHandQty.Add(delta)
	if next.IsNegative() {
		return &InsufficientStockError{Shortfalls: []Shortfall{{
			ProductID: s.ProductID,
			Requested: delta.Neg(),
			Available: s.OnHandQty,
		}}}
	}
	s.OnHandQty = next
	s.UpdatedAt = time.Now()
	return nil
}

// Shortfall describes one product that cannot cover a requested quantity
type Shortfall struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

// InsufficientStockError lists every product short of stock for an operation
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		name := s.ProductName
		if name == "" {
			name = s.ProductID.String()
		}
		parts = append(parts, fmt.Sprintf("Insufficient stock for %q: available %s, requested %s",
			name, s.Available.String(), s.Requested.String()))
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the error as a DomainError with code INSUFFICIENT_STOCK
func (e *InsufficientStockError) Unwrap() error {
	return shared.NewDomainError(shared.ErrInsufficientStock.Code, e.Error())
}

// WithNames fills product names from the lookup
func (e *InsufficientStockError) WithNames(names map[uuid.UUID]string) *InsufficientStockError {
	for i := range e.Shortfalls {
		if n, ok := names[e.Shortfalls[i].ProductID]; ok {
			e.Shortfalls[i].ProductName = n
		}
	}
	return e
}

// StockBalance pairs a product's on-hand quantity with the sum of its move
// lines. A product with lines but no stock row has a zero OnHandQty.
type StockBalance struct {
	ProductID uuid.UUID
	OnHandQty decimal.Decimal
	MovesSum  decimal.Decimal
}

// Consistent reports whether the stock row equals its move history
func (b StockBalance) Consistent() bool {
	return b.OnHandQty.Round(valueobject.QtyPlaces).Equal(b.MovesSum.Round(valueobject.QtyPlaces))
}
