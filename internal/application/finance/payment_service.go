package finance

import (
	"context"
	"time"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceBalance is the payment position of an invoice
type InvoiceBalance struct {
	InvoiceID   uuid.UUID         `json:"invoice_id"`
	Total       valueobject.Money `json:"total"`
	TotalPaid   valueobject.Money `json:"total_paid"`
	Balance     valueobject.Money `json:"balance"`
	IsFullyPaid bool              `json:"is_fully_paid"`
	Status      string            `json:"status"`
}

// AddPaymentRequest is one installment against an invoice
type AddPaymentRequest struct {
	PaidAt        time.Time       `json:"paid_at"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes"`
	PaymentMethod string          `json:"payment_method"`
}

// PaymentService pays supplier invoices. Full and partial payments share one
// path that writes the payment row, the ledger expense and derives the status.
type PaymentService struct {
	txScope appshared.TransactionScope
	opts    appshared.Options
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope appshared.TransactionScope, opts appshared.Options) *PaymentService {
	return &PaymentService{
		txScope: txScope,
		opts:    opts.WithDefaults(),
	}
}

// PayInvoice pays the outstanding balance of a pending invoice
func (s *PaymentService) PayInvoice(ctx context.Context, id uuid.UUID, paidAt time.Time, method string) (*InvoiceBalance, error) {
	pm, err := finance.NormalizePaymentMethod(method, s.opts.DefaultPaymentMethod)
	if err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	var inv *trade.PurchaseInvoice
	var paid valueobject.Money
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != trade.InvoiceStatusPending {
			return trade.ErrAlreadyPaid
		}
		if len(inv.Lines) == 0 {
			return shared.NewDomainError(shared.ErrInvalidState.Code, "Invoice has no lines")
		}
		if inv.Total.IsNegative() {
			return shared.NewDomainError(shared.ErrInvalidState.Code, "Invoice total is negative")
		}

		paid = inv.Balance()
		if !paid.IsPositive() {
			inv.RefreshPaymentStatus(paidAt)
			return repos.InvoiceRepo().SaveStatus(ctx, inv)
		}
		return applyPayment(ctx, repos, inv, paid, paidAt, pm, "")
	})
	if err != nil {
		return nil, err
	}

	if paid.IsPositive() {
		s.opts.Metrics.InvoicePaymentRecorded(ctx, pm, paid.Amount(), true)
	}
	s.opts.Logger.Info("purchase invoice paid",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", paid.String()),
		zap.String("payment_method", pm.String()),
	)
	return toBalance(inv), nil
}

// AddInvoicePayment records one installment. Amounts above the balance are rejected.
func (s *PaymentService) AddInvoicePayment(ctx context.Context, id uuid.UUID, req AddPaymentRequest) (*InvoiceBalance, error) {
	pm, err := finance.NormalizePaymentMethod(req.PaymentMethod, s.opts.DefaultPaymentMethod)
	if err != nil {
		return nil, err
	}
	amount := valueobject.NewMoney(req.Amount).Round()
	if !amount.IsPositive() {
		return nil, finance.ErrInvalidAmount
	}
	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	var inv *trade.PurchaseInvoice
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == trade.InvoiceStatusPaid {
			return trade.ErrAlreadyPaid
		}
		if balance := inv.Balance(); amount.GreaterThan(balance) {
			return &finance.OverpaymentError{Amount: amount, Balance: balance}
		}
		return applyPayment(ctx, repos, inv, amount, paidAt, pm, req.Notes)
	})
	if err != nil {
		return nil, err
	}

	s.opts.Metrics.InvoicePaymentRecorded(ctx, pm, amount.Amount(), inv.Status == trade.InvoiceStatusPaid)
	s.opts.Logger.Info("purchase invoice installment recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("balance", inv.Balance().String()),
		zap.String("status", string(inv.Status)),
	)
	return toBalance(inv), nil
}

// GetInvoiceBalance reads the payment position without locking
func (s *PaymentService) GetInvoiceBalance(ctx context.Context, id uuid.UUID) (*InvoiceBalance, error) {
	var inv *trade.PurchaseInvoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toBalance(inv), nil
}

// applyPayment writes the payment and its ledger expense, then derives status
// and paid_at from the stored payments. The invoice must be locked.
func applyPayment(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	inv *trade.PurchaseInvoice,
	amount valueobject.Money,
	paidAt time.Time,
	method finance.PaymentMethod,
	notes string,
) error {
	payment := inv.AddPayment(amount, paidAt, method, notes)
	if err := repos.InvoiceRepo().CreatePayment(ctx, &payment); err != nil {
		return err
	}

	entry, err := finance.NewLedgerEntry(finance.EntryTypeExpense, amount, finance.CategorySupplierPayment,
		finance.ReferenceInvoicePayment, &inv.ID, method, "Payment of invoice "+inv.InvoiceNumber)
	if err != nil {
		return err
	}
	entry.OccurredAt = paidAt
	if err := repos.LedgerRepo().Create(ctx, entry); err != nil {
		return err
	}

	inv.RefreshPaymentStatus(paidAt)
	return repos.InvoiceRepo().SaveStatus(ctx, inv)
}

func toBalance(inv *trade.PurchaseInvoice) *InvoiceBalance {
	balance := inv.Balance()
	return &InvoiceBalance{
		InvoiceID:   inv.ID,
		Total:       inv.Total,
		TotalPaid:   inv.TotalPaid(),
		Balance:     balance,
		IsFullyPaid: !balance.IsPositive(),
		Status:      string(inv.Status),
	}
}
