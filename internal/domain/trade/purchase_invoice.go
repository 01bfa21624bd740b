package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase invoice errors
var (
	ErrInvoiceNotFound     = shared.NewDomainError("INVOICE_NOT_FOUND", "Purchase invoice not found")
	ErrInvoiceNotEditable  = shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only pending invoices can be edited")
	ErrInvoiceNotDeletable = shared.NewDomainError("INVOICE_NOT_DELETABLE", "Only pending invoices without payments can be deleted")
	ErrDuplicateInvoice    = shared.NewDomainError("DUPLICATE_INVOICE_NUMBER", "An invoice with this number already exists for the supplier")
	ErrAlreadyPaid         = shared.NewDomainError("ALREADY_PAID", "Invoice is already paid")
)

const (
	// QtyPlaces is the precision of persisted quantities
	QtyPlaces = valueobject.QtyPlaces
	// CostPlaces is the precision of unit costs
	CostPlaces int32 = 2
)

var hundred = decimal.NewFromInt(100)

// InvoiceStatus is the payment state of a purchase invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// IsValid returns true if the status is valid
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// PurchaseInvoice records goods received from a supplier
type PurchaseInvoice struct {
	shared.BaseEntity
	SupplierID    uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       *time.Time
	Total         valueobject.Money
	Status        InvoiceStatus
	PaidAt        *time.Time
	Notes         string
	Lines         []PurchaseInvoiceLine
	Payments      []PurchaseInvoicePayment
}

// PurchaseInvoiceLine is one received product
type PurchaseInvoiceLine struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	ProductID uuid.UUID
	Qty       decimal.Decimal
	UnitCost  valueobject.Money
	VatRate   decimal.Decimal
	NetAmount valueobject.Money
	VatAmount valueobject.Money
	LineTotal valueobject.Money
}

// PurchaseInvoicePayment is one installment paid against an invoice
type PurchaseInvoicePayment struct {
	ID            uuid.UUID
	InvoiceID     uuid.UUID
	PaidAt        time.Time
	Amount        valueobject.Money
	Notes         string
	PaymentMethod finance.PaymentMethod
}

// NewPurchaseInvoiceLine validates precision and computes net, VAT and total
func NewPurchaseInvoiceLine(productID uuid.UUID, qty decimal.Decimal, unitCost decimal.Decimal, vatRate decimal.Decimal) (PurchaseInvoiceLine, error) {
	if !qty.IsPositive() {
		return PurchaseInvoiceLine{}, ErrInvalidQuantity
	}
	if err := checkQtyScale(qty); err != nil {
		return PurchaseInvoiceLine{}, err
	}
	if unitCost.IsNegative() {
		return PurchaseInvoiceLine{}, shared.NewDomainError("INVALID_INPUT", "Unit cost cannot be negative")
	}
	if !valueobject.HasAtMostPlaces(unitCost, CostPlaces) {
		return PurchaseInvoiceLine{}, shared.NewDomainError("INVALID_INPUT", "Unit cost allows at most 2 decimals")
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(hundred) {
		return PurchaseInvoiceLine{}, shared.NewDomainError("INVALID_INPUT", "VAT rate must be between 0 and 100")
	}

	cost := valueobject.NewMoney(unitCost)
	net := cost.Multiply(qty)
	vat := net.Percentage(vatRate)
	return PurchaseInvoiceLine{
		ID:        uuid.New(),
		ProductID: productID,
		Qty:       qty,
		UnitCost:  cost,
		VatRate:   vatRate,
		NetAmount: net,
		VatAmount: vat,
		LineTotal: net.Add(vat),
	}, nil
}

// NewPurchaseInvoice creates a pending invoice
func NewPurchaseInvoice(supplierID uuid.UUID, number string, invoiceDate time.Time, dueDate *time.Time, notes string, lines []PurchaseInvoiceLine) (*PurchaseInvoice, error) {
	inv := &PurchaseInvoice{
		BaseEntity: shared.NewBaseEntity(),
		Status:     InvoiceStatusPending,
	}
	if err := inv.SetHeader(supplierID, number, invoiceDate, dueDate, notes); err != nil {
		return nil, err
	}
	if err := inv.ReplaceLines(lines); err != nil {
		return nil, err
	}
	return inv, nil
}

// SetHeader validates and sets supplier, number, dates and notes
func (inv *PurchaseInvoice) SetHeader(supplierID uuid.UUID, number string, invoiceDate time.Time, dueDate *time.Time, notes string) error {
	number = strings.TrimSpace(number)
	if supplierID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Supplier is required")
	}
	if number == "" {
		return shared.NewDomainError("INVALID_INPUT", "Invoice number is required")
	}
	if invoiceDate.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Invoice date is required")
	}
	if err := validateDueDate(invoiceDate, dueDate); err != nil {
		return err
	}
	inv.SupplierID = supplierID
	inv.InvoiceNumber = number
	inv.InvoiceDate = invoiceDate
	inv.DueDate = dueDate
	inv.Notes = strings.TrimSpace(notes)
	inv.Touch()
	return nil
}

// ReplaceLines swaps the line set and recomputes the total. A product may
// appear only once.
func (inv *PurchaseInvoice) ReplaceLines(lines []PurchaseInvoiceLine) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Invoice requires at least one line")
	}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	next := make([]PurchaseInvoiceLine, len(lines))
	totals := make([]valueobject.Money, len(lines))
	for i, l := range lines {
		if _, dup := seen[l.ProductID]; dup {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Product %s appears more than once", l.ProductID))
		}
		seen[l.ProductID] = struct{}{}
		l.InvoiceID = inv.ID
		next[i] = l
		totals[i] = l.LineTotal
	}
	inv.Lines = next
	inv.Total = valueobject.SumMoney(totals...).Round()
	inv.Touch()
	return nil
}

// QtyByProduct sums line quantities per product
func (inv *PurchaseInvoice) QtyByProduct() map[uuid.UUID]decimal.Decimal {
	m := make(map[uuid.UUID]decimal.Decimal, len(inv.Lines))
	for _, l := range inv.Lines {
		m[l.ProductID] = m[l.ProductID].Add(l.Qty)
	}
	return m
}

// EnsureEditable fails unless the invoice is pending
func (inv *PurchaseInvoice) EnsureEditable() error {
	if inv.Status != InvoiceStatusPending {
		return ErrInvoiceNotEditable
	}
	return nil
}

// EnsureDeletable fails unless the invoice is pending and has no payments
func (inv *PurchaseInvoice) EnsureDeletable() error {
	if inv.Status != InvoiceStatusPending || len(inv.Payments) > 0 {
		return ErrInvoiceNotDeletable
	}
	return nil
}

// SetDueDate changes the due date of a pending invoice; nil clears it
func (inv *PurchaseInvoice) SetDueDate(dueDate *time.Time) error {
	if err := inv.EnsureEditable(); err != nil {
		return err
	}
	if err := validateDueDate(inv.InvoiceDate, dueDate); err != nil {
		return err
	}
	inv.DueDate = dueDate
	inv.Touch()
	return nil
}

// TotalPaid sums the stored installments
func (inv *PurchaseInvoice) TotalPaid() valueobject.Money {
	amounts := make([]valueobject.Money, len(inv.Payments))
	for i, p := range inv.Payments {
		amounts[i] = p.Amount
	}
	return valueobject.SumMoney(amounts...).Round()
}

// Balance is the unpaid remainder
func (inv *PurchaseInvoice) Balance() valueobject.Money {
	return inv.Total.Subtract(inv.TotalPaid()).Round()
}

// AddPayment records an installment. The caller guarantees amount <= balance.
func (inv *PurchaseInvoice) AddPayment(amount valueobject.Money, paidAt time.Time, method finance.PaymentMethod, notes string) PurchaseInvoicePayment {
	p := PurchaseInvoicePayment{
		ID:            uuid.New(),
		InvoiceID:     inv.ID,
		PaidAt:        paidAt,
		Amount:        amount.Round(),
		Notes:         strings.TrimSpace(notes),
		PaymentMethod: method,
	}
	inv.Payments = append(inv.Payments, p)
	return p
}

// LastPaymentAt returns the date of the latest installment
func (inv *PurchaseInvoice) LastPaymentAt() (time.Time, bool) {
	var last time.Time
	for _, p := range inv.Payments {
		if p.PaidAt.After(last) {
			last = p.PaidAt
		}
	}
	return last, len(inv.Payments) > 0
}

// RefreshPaymentStatus derives status and paid_at from the stored payments
func (inv *PurchaseInvoice) RefreshPaymentStatus(paidAt time.Time) {
	if inv.Balance().IsPositive() {
		inv.Status = InvoiceStatusPending
		inv.PaidAt = nil
	} else {
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &paidAt
	}
	inv.Touch()
}

// IsDueOn reports whether a pending invoice falls due on the given day
func (inv *PurchaseInvoice) IsDueOn(day time.Time) bool {
	return inv.Status == InvoiceStatusPending && inv.DueDate != nil && sameDay(*inv.DueDate, day)
}

// IsOverdue reports whether a pending invoice was due before today
func (inv *PurchaseInvoice) IsOverdue(today time.Time) bool {
	return inv.Status == InvoiceStatusPending && inv.DueDate != nil && dateOnly(*inv.DueDate).Before(dateOnly(today))
}

func validateDueDate(invoiceDate time.Time, dueDate *time.Time) error {
	if dueDate != nil && dateOnly(*dueDate).Before(dateOnly(invoiceDate)) {
		return shared.NewDomainError("INVALID_INPUT", "Due date cannot be before the invoice date")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}
