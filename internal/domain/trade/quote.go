package trade

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote errors
var (
	ErrQuoteNotFound       = shared.NewDomainError("QUOTE_NOT_FOUND", "Quote not found")
	ErrQuoteNotConvertible = shared.NewDomainError("QUOTE_NOT_CONVERTIBLE", "Only draft or sent quotes can be converted")
	ErrDuplicateQuote      = shared.NewDomainError("ALREADY_EXISTS", "A quote with this number already exists")
)

// QuoteStatus is the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusCanceled QuoteStatus = "CANCELED"
)

// IsValid returns true if the status is valid
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusCanceled:
		return true
	}
	return false
}

// Quote is a priced proposal that may become a sale
type Quote struct {
	shared.BaseEntity
	Number        string
	CustomerName  string
	PaymentMethod string
	Status        QuoteStatus
	ValidUntil    *time.Time
	SaleID        *uuid.UUID
	Lines         []QuoteLine
}

// QuoteLine is one quoted product
type QuoteLine struct {
	ID        uuid.UUID
	QuoteID   uuid.UUID
	ProductID uuid.UUID
	Uom       string
	Qty       decimal.Decimal
	UnitPrice valueobject.Money
}

// NewQuote creates a draft quote
func NewQuote(number, customer string, method finance.PaymentMethod) *Quote {
	return &Quote{
		BaseEntity:    shared.NewBaseEntity(),
		Number:        number,
		CustomerName:  customer,
		PaymentMethod: method.String(),
		Status:        QuoteStatusDraft,
	}
}

// AddLine appends a quoted product
func (q *Quote) AddLine(productID uuid.UUID, uom string, qty decimal.Decimal, unitPrice valueobject.Money) error {
	if err := CheckQuantity(qty); err != nil {
		return err
	}
	q.Lines = append(q.Lines, QuoteLine{
		ID:        uuid.New(),
		QuoteID:   q.ID,
		ProductID: productID,
		Uom:       uom,
		Qty:       qty,
		UnitPrice: unitPrice,
	})
	return nil
}

// EnsureConvertible fails unless the quote is a draft or sent
func (q *Quote) EnsureConvertible() error {
	if q.Status != QuoteStatusDraft && q.Status != QuoteStatusSent {
		return ErrQuoteNotConvertible
	}
	return nil
}

// MarkAccepted links the quote to the sale it became
func (q *Quote) MarkAccepted(saleID uuid.UUID) error {
	if err := q.EnsureConvertible(); err != nil {
		return err
	}
	q.Status = QuoteStatusAccepted
	q.SaleID = &saleID
	q.Touch()
	return nil
}
