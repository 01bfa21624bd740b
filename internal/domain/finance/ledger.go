package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Ledger errors
var (
	ErrInvalidPaymentMethod = shared.NewDomainError("INVALID_INPUT", "Payment method must be CASH or TRANSFER")
	ErrInvalidAmount        = shared.NewDomainError("INVALID_AMOUNT", "Amount must be greater than zero")
	ErrOverpayment          = shared.NewDomainError("OVERPAYMENT_REJECTED", "Payment exceeds the outstanding balance")
	ErrLedgerEntryNotFound  = shared.NewDomainError("LEDGER_ENTRY_NOT_FOUND", "Ledger entry not found")
	ErrEntryNotManual       = shared.NewDomainError("INVALID_STATE", "Only manual ledger entries can be deleted")
)

// PaymentMethod is the closed set of ways money moves
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid returns true if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodTransfer
}

// NormalizePaymentMethod trims and uppercases raw input. Empty input resolves to
// fallback; anything outside the closed set is rejected.
func NormalizePaymentMethod(raw string, fallback PaymentMethod) (PaymentMethod, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		s = string(fallback)
	}
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", ErrInvalidPaymentMethod
	}
	return m, nil
}

// EntryType is the direction of a ledger entry
type EntryType string

const (
	EntryTypeIncome  EntryType = "INCOME"
	EntryTypeExpense EntryType = "EXPENSE"
)

// IsValid returns true if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// ReferenceType names the document behind a ledger entry
type ReferenceType string

const (
	ReferenceSale           ReferenceType = "SALE"
	ReferenceInvoicePayment ReferenceType = "INVOICE_PAYMENT"
	ReferenceManual         ReferenceType = "MANUAL"
)

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceSale, ReferenceInvoicePayment, ReferenceManual:
		return true
	}
	return false
}

// Ledger categories written by the engine
const (
	CategorySales           = "Sales"
	CategorySupplierPayment = "Supplier payment"
	CategorySaleAdjustment  = "Sale adjustment"
)

// LedgerEntry is an append-only money movement. Amount is always positive;
// Type carries the direction.
type LedgerEntry struct {
	ID            uuid.UUID
	OccurredAt    time.Time
	Type          EntryType
	Amount        valueobject.Money
	Category      string
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	PaymentMethod PaymentMethod
	Notes         string
	DeletedAt     *time.Time
}

// NewLedgerEntry validates and builds an entry
func NewLedgerEntry(
	entryType EntryType,
	amount valueobject.Money,
	category string,
	refType ReferenceType,
	refID *uuid.UUID,
	method PaymentMethod,
	notes string,
) (*LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Ledger entry type must be INCOME or EXPENSE")
	}
	amount = amount.Round()
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !refType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid ledger reference type")
	}
	if !method.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}
	return &LedgerEntry{
		ID:            uuid.New(),
		OccurredAt:    time.Now(),
		Type:          entryType,
		Amount:        amount,
		Category:      strings.TrimSpace(category),
		ReferenceType: refType,
		ReferenceID:   refID,
		PaymentMethod: method,
		Notes:         strings.TrimSpace(notes),
	}, nil
}

// Signed returns the amount with expenses negated
func (e *LedgerEntry) Signed() valueobject.Money {
	if e.Type == EntryTypeExpense {
		return valueobject.ZeroMoney().Subtract(e.Amount)
	}
	return e.Amount
}

// SoftDelete hides a manual entry from totals
func (e *LedgerEntry) SoftDelete() error {
	if e.ReferenceType != ReferenceManual {
		return ErrEntryNotManual
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

// OverpaymentError reports an installment above the outstanding balance
type OverpaymentError struct {
	Amount  valueobject.Money
	Balance valueobject.Money
}

// Error implements the error interface
func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("Payment of %s exceeds the outstanding balance of %s", e.Amount, e.Balance)
}

// Unwrap exposes the error as a DomainError with code OVERPAYMENT_REJECTED
func (e *OverpaymentError) Unwrap() error {
	return shared.NewDomainError(ErrOverpayment.Code, e.Error())
}
