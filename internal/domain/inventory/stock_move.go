package inventory

import (
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrQuantityScale rejects deltas that would be rounded when stored
var ErrQuantityScale = shared.NewDomainError("INVALID_QUANTITY", "Stock quantities allow at most 3 decimals")

// MoveType classifies a stock move
type MoveType string

const (
	// MoveTypeIn is stock received from a supplier
	MoveTypeIn MoveType = "IN"
	// MoveTypeOut is stock leaving through a sale
	MoveTypeOut MoveType = "OUT"
	// MoveTypeAdjust is a correction in either direction
	MoveTypeAdjust MoveType = "ADJUST"
)

// String returns the string representation of MoveType
func (t MoveType) String() string {
	return string(t)
}

// IsValid returns true if the move type is valid
func (t MoveType) IsValid() bool {
	switch t {
	case MoveTypeIn, MoveTypeOut, MoveTypeAdjust:
		return true
	}
	return false
}

// ReferenceType names the document that caused a stock move
type ReferenceType string

const (
	ReferenceSale    ReferenceType = "SALE"
	ReferenceInvoice ReferenceType = "INVOICE"
	ReferenceManual  ReferenceType = "MANUAL"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceSale, ReferenceInvoice, ReferenceManual:
		return true
	}
	return false
}

// StockMove is an immutable audit event. Lines carry signed deltas in base units:
// positive increases stock, negative decreases it.
type StockMove struct {
	ID            uuid.UUID
	OccurredAt    time.Time
	Type          MoveType
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	Notes         string
	Lines         []StockMoveLine
}

// StockMoveLine is one product's signed delta within a move
type StockMoveLine struct {
	ID        uuid.UUID
	MoveID    uuid.UUID
	ProductID uuid.UUID
	Qty       decimal.Decimal
	Uom       string
	UnitCost  *decimal.Decimal
}

// NewStockMove creates an empty move header
func NewStockMove(moveType MoveType, refType ReferenceType, refID *uuid.UUID, notes string) (*StockMove, error) {
	if !moveType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid stock move type")
	}
	if !refType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid stock move reference type")
	}
	return &StockMove{
		ID:            uuid.New(),
		OccurredAt:    time.Now(),
		Type:          moveType,
		ReferenceType: refType,
		ReferenceID:   refID,
		Notes:         strings.TrimSpace(notes),
	}, nil
}

// AddLine appends a signed delta. Zero deltas and deltas finer than the
// stored scale are rejected, so on-hand and the line always move by the same
// number.
func (m *StockMove) AddLine(productID uuid.UUID, qty decimal.Decimal, uom string, unitCost *decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Stock move line requires a product")
	}
	if qty.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock move line quantity cannot be zero")
	}
	if !valueobject.HasAtMostPlaces(qty, valueobject.QtyPlaces) {
		return ErrQuantityScale
	}
	switch m.Type {
	case MoveTypeIn:
		if qty.IsNegative() {
			return shared.NewDomainError("INVALID_QUANTITY", "IN move lines must be positive")
		}
	case MoveTypeOut:
		if qty.IsPositive() {
			return shared.NewDomainError("INVALID_QUANTITY", "OUT move lines must be negative")
		}
	}
	m.Lines = append(m.Lines, StockMoveLine{
		ID:        uuid.New(),
		MoveID:    m.ID,
		ProductID: productID,
		Qty:       qty,
		Uom:       uom,
		UnitCost:  unitCost,
	})
	return nil
}

// ProductIDs returns the products touched by the move
func (m *StockMove) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.Lines))
	for _, l := range m.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// NetByProduct sums line deltas per product
func (m *StockMove) NetByProduct() map[uuid.UUID]decimal.Decimal {
	net := make(map[uuid.UUID]decimal.Decimal, len(m.Lines))
	for _, l := range m.Lines {
		net[l.ProductID] = net[l.ProductID].Add(l.Qty)
	}
	return net
}
