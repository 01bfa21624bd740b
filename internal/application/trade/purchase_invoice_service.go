package trade

import (
	"context"
	"time"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseInvoiceService manages supplier invoices and the stock they bring in
type PurchaseInvoiceService struct {
	txScope appshared.TransactionScope
	opts    appshared.Options
}

// NewPurchaseInvoiceService creates a new PurchaseInvoiceService
func NewPurchaseInvoiceService(txScope appshared.TransactionScope, opts appshared.Options) *PurchaseInvoiceService {
	return &PurchaseInvoiceService{
		txScope: txScope,
		opts:    opts.WithDefaults(),
	}
}

// Create registers a pending invoice and receives its stock
func (s *PurchaseInvoiceService) Create(ctx context.Context, req InvoiceRequest) (*InvoiceResponse, error) {
	var inv *trade.PurchaseInvoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := ensureActiveSupplier(ctx, repos, req.SupplierID); err != nil {
			return err
		}
		lines, products, err := buildInvoiceLines(ctx, repos, req.Lines)
		if err != nil {
			return err
		}
		inv, err = trade.NewPurchaseInvoice(req.SupplierID, req.InvoiceNumber, req.InvoiceDate, req.DueDate, req.Notes, lines)
		if err != nil {
			return err
		}
		if err := ensureUniqueNumber(ctx, repos, inv, nil); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Create(ctx, inv); err != nil {
			return err
		}

		move, err := inventory.NewStockMove(inventory.MoveTypeIn, inventory.ReferenceInvoice, &inv.ID, invoiceNote(inv))
		if err != nil {
			return err
		}
		for _, l := range inv.Lines {
			cost := l.UnitCost.Amount()
			if err := move.AddLine(l.ProductID, l.Qty, products[l.ProductID].BaseUom, &cost); err != nil {
				return err
			}
		}
		return recordStock(ctx, appshared.StockLedger(repos), move, products)
	})
	if err != nil {
		return nil, err
	}

	s.opts.Logger.Info("purchase invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total", inv.Total.String()),
	)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Update replaces header and lines of a pending invoice. Stock receives one
// ADJUST move with the per-product quantity difference.
func (s *PurchaseInvoiceService) Update(ctx context.Context, id uuid.UUID, req InvoiceRequest) (*InvoiceResponse, error) {
	var inv *trade.PurchaseInvoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.EnsureEditable(); err != nil {
			return err
		}
		if req.SupplierID != inv.SupplierID {
			if err := ensureActiveSupplier(ctx, repos, req.SupplierID); err != nil {
				return err
			}
		}
		lines, _, err := buildInvoiceLines(ctx, repos, req.Lines)
		if err != nil {
			return err
		}

		before := inv.QtyByProduct()
		if err := inv.SetHeader(req.SupplierID, req.InvoiceNumber, req.InvoiceDate, req.DueDate, req.Notes); err != nil {
			return err
		}
		if err := ensureUniqueNumber(ctx, repos, inv, &inv.ID); err != nil {
			return err
		}
		if err := inv.ReplaceLines(lines); err != nil {
			return err
		}
		if inv.Total.LessThan(inv.TotalPaid()) {
			return shared.NewDomainError("INVALID_INPUT", "Invoice total cannot be lower than the amount already paid")
		}
		// An edit down to exactly the paid amount settles the invoice on its
		// latest installment.
		if last, ok := inv.LastPaymentAt(); ok {
			inv.RefreshPaymentStatus(last)
		}
		after := inv.QtyByProduct()

		move, err := inventory.NewStockMove(inventory.MoveTypeAdjust, inventory.ReferenceInvoice, &inv.ID, "Edit of "+invoiceNote(inv))
		if err != nil {
			return err
		}
		union := make([]uuid.UUID, 0, len(before)+len(after))
		for pid := range before {
			union = append(union, pid)
		}
		for pid := range after {
			union = append(union, pid)
		}
		union = shared.SortIDs(union)
		products, err := repos.ProductRepo().FindByIDs(ctx, union)
		if err != nil {
			return err
		}
		for _, pid := range union {
			delta := after[pid].Sub(before[pid])
			if delta.IsZero() {
				continue
			}
			if err := move.AddLine(pid, delta, uomOf(products, pid), nil); err != nil {
				return err
			}
		}
		if len(move.Lines) > 0 {
			if err := recordStock(ctx, appshared.StockLedger(repos), move, products); err != nil {
				return err
			}
		}
		return repos.InvoiceRepo().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.opts.Logger.Info("purchase invoice updated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("total", inv.Total.String()),
	)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Delete reverses the stock of a pending invoice without payments and removes it
func (s *PurchaseInvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.EnsureDeletable(); err != nil {
			return err
		}

		qty := inv.QtyByProduct()
		ids := make([]uuid.UUID, 0, len(qty))
		for pid := range qty {
			ids = append(ids, pid)
		}
		products, err := repos.ProductRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			move, err := inventory.NewStockMove(inventory.MoveTypeAdjust, inventory.ReferenceInvoice, &inv.ID, "Deletion of "+invoiceNote(inv))
			if err != nil {
				return err
			}
			for _, pid := range shared.SortIDs(ids) {
				if err := move.AddLine(pid, qty[pid].Neg(), uomOf(products, pid), nil); err != nil {
					return err
				}
			}
			if err := recordStock(ctx, appshared.StockLedger(repos), move, products); err != nil {
				return err
			}
		}
		return repos.InvoiceRepo().Delete(ctx, inv.ID)
	})
	if err != nil {
		return err
	}

	s.opts.Logger.Info("purchase invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// UpdateDueDate changes or clears the due date of a pending invoice
func (s *PurchaseInvoiceService) UpdateDueDate(ctx context.Context, id uuid.UUID, dueDate *time.Time) (*InvoiceResponse, error) {
	var inv *trade.PurchaseInvoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.SetDueDate(dueDate); err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID retrieves an invoice with lines and payments
func (s *PurchaseInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	var inv *trade.PurchaseInvoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// DayOf is the calendar day now falls on in the store's zone
func (s *PurchaseInvoiceService) DayOf(now time.Time) time.Time {
	return shared.CalendarDay(now, s.opts.Location)
}

// Alerts counts pending invoices due tomorrow and overdue as of the calendar
// day today
func (s *PurchaseInvoiceService) Alerts(ctx context.Context, today time.Time) (*InvoiceAlerts, error) {
	tomorrow := today.AddDate(0, 0, 1)
	var invoices []trade.PurchaseInvoice
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		invoices, err = repos.InvoiceRepo().FindPendingDueBy(ctx, tomorrow)
		return err
	})
	if err != nil {
		return nil, err
	}

	alerts := &InvoiceAlerts{}
	for i := range invoices {
		switch {
		case invoices[i].IsDueOn(tomorrow):
			alerts.DueTomorrow++
		case invoices[i].IsOverdue(today):
			alerts.Overdue++
		}
	}
	return alerts, nil
}

func ensureActiveSupplier(ctx context.Context, repos appshared.TransactionalRepositories, id uuid.UUID) error {
	supplier, err := repos.SupplierRepo().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !supplier.Active {
		return shared.NewDomainError("INVALID_INPUT", "Supplier \""+supplier.Name+"\" is inactive")
	}
	return nil
}

func ensureUniqueNumber(ctx context.Context, repos appshared.TransactionalRepositories, inv *trade.PurchaseInvoice, exclude *uuid.UUID) error {
	exists, err := repos.InvoiceRepo().ExistsNumber(ctx, inv.SupplierID, inv.InvoiceNumber, exclude)
	if err != nil {
		return err
	}
	if exists {
		return trade.ErrDuplicateInvoice
	}
	return nil
}

// buildInvoiceLines validates products and computes line amounts
func buildInvoiceLines(ctx context.Context, repos appshared.TransactionalRepositories, inputs []InvoiceLineInput) ([]trade.PurchaseInvoiceLine, map[uuid.UUID]*catalog.Product, error) {
	if len(inputs) == 0 {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "Invoice requires at least one line")
	}
	ids := make([]uuid.UUID, len(inputs))
	for i, in := range inputs {
		ids[i] = in.ProductID
	}
	products, err := loadSellableProducts(ctx, repos.ProductRepo(), ids)
	if err != nil {
		return nil, nil, err
	}
	lines := make([]trade.PurchaseInvoiceLine, len(inputs))
	for i, in := range inputs {
		lines[i], err = trade.NewPurchaseInvoiceLine(in.ProductID, in.Quantity, in.UnitCost, in.VatRate)
		if err != nil {
			return nil, nil, err
		}
	}
	return lines, products, nil
}

func uomOf(products map[uuid.UUID]*catalog.Product, id uuid.UUID) string {
	return baseUom(products, id, "")
}

func invoiceNote(inv *trade.PurchaseInvoice) string {
	return "Invoice " + inv.InvoiceNumber
}
