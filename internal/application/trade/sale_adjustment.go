package trade

import (
	"context"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdjustSale replaces the lines of a confirmed sale. Stock moves by the
// quantity difference and the ledger receives a compensating entry for the
// total difference.
func (s *SaleService) AdjustSale(ctx context.Context, id uuid.UUID, req AdjustSaleRequest) (*SaleResponse, error) {
	var (
		sale *trade.Sale
		diff decimal.Decimal
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := sale.EnsureAdjustable(); err != nil {
			return err
		}

		wanted, order, err := mergeAdjustLines(req.Lines)
		if err != nil {
			return err
		}

		var added []uuid.UUID
		for _, pid := range order {
			if _, ok := sale.LineFor(pid); !ok {
				added = append(added, pid)
			}
		}
		products, err := repos.ProductRepo().FindByIDs(ctx, append(sale.ProductIDs(), order...))
		if err != nil {
			return err
		}
		if err := ensureSellable(products, order); err != nil {
			return err
		}

		move, err := inventory.NewStockMove(inventory.MoveTypeAdjust, inventory.ReferenceSale, &sale.ID, "Adjustment of sale #"+sale.ID.String())
		if err != nil {
			return err
		}
		next := make([]trade.SaleLine, 0, len(order))
		for _, old := range sale.Lines {
			qty, keep := wanted[old.ProductID]
			if !keep {
				if err := move.AddLine(old.ProductID, old.BaseQty(), baseUom(products, old.ProductID, old.Uom), nil); err != nil {
					return err
				}
				continue
			}
			line, err := trade.NewSaleLine(old.ProductID, old.Uom, qty, old.ConversionToBase, old.UnitPrice)
			if err != nil {
				return err
			}
			if delta := old.BaseQty().Sub(line.BaseQty()); !delta.IsZero() {
				if err := move.AddLine(old.ProductID, delta, baseUom(products, old.ProductID, old.Uom), nil); err != nil {
					return err
				}
			}
			next = append(next, line)
		}
		for _, pid := range added {
			p := products[pid]
			price, err := p.PriceFor("")
			if err != nil {
				return err
			}
			line, err := trade.NewSaleLine(pid, price.Uom, wanted[pid], price.ConversionToBase, price.SalePrice)
			if err != nil {
				return err
			}
			if err := move.AddLine(pid, line.BaseQty().Neg(), p.BaseUom, nil); err != nil {
				return err
			}
			next = append(next, line)
		}

		if len(move.Lines) > 0 {
			if err := recordStock(ctx, appshared.StockLedger(repos), move, products); err != nil {
				return err
			}
		}

		oldTotal := sale.Total
		sale.ReplaceLines(next)
		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}

		diff = sale.Total.Subtract(oldTotal).Round().Amount()
		if diff.IsZero() {
			return nil
		}
		entryType := finance.EntryTypeIncome
		if diff.IsNegative() {
			entryType = finance.EntryTypeExpense
		}
		entry, err := finance.NewLedgerEntry(entryType, sale.Total.Subtract(oldTotal).Abs(), finance.CategorySaleAdjustment,
			finance.ReferenceManual, &sale.ID, sale.PaymentMethod, "Adjustment of sale #"+sale.ID.String())
		if err != nil {
			return err
		}
		return repos.LedgerRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.opts.Metrics.SaleAdjusted(ctx, diff)
	s.opts.Logger.Info("sale adjusted",
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.Total.String()),
		zap.String("difference", diff.StringFixed(2)),
	)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// mergeAdjustLines sums repeated products, keeping first-seen order
func mergeAdjustLines(lines []AdjustSaleLine) (map[uuid.UUID]decimal.Decimal, []uuid.UUID, error) {
	if len(lines) == 0 {
		return nil, nil, trade.ErrEmptyCart
	}
	wanted := make(map[uuid.UUID]decimal.Decimal, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if err := trade.CheckQuantity(l.Quantity); err != nil {
			return nil, nil, err
		}
		if _, seen := wanted[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		wanted[l.ProductID] = wanted[l.ProductID].Add(l.Quantity)
	}
	return wanted, order, nil
}

func baseUom(products map[uuid.UUID]*catalog.Product, id uuid.UUID, fallback string) string {
	if p, ok := products[id]; ok {
		return p.BaseUom
	}
	return fallback
}
