package trade

import (
	"context"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteService converts quotes into sales
type QuoteService struct {
	txScope appshared.TransactionScope
	opts    appshared.Options
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(txScope appshared.TransactionScope, opts appshared.Options) *QuoteService {
	return &QuoteService{
		txScope: txScope,
		opts:    opts.WithDefaults(),
	}
}

// ConvertQuoteToSale confirms a sale from the quote lines at current catalog
// prices and marks the quote accepted. Both happen in one transaction.
func (s *QuoteService) ConvertQuoteToSale(ctx context.Context, quoteID uuid.UUID) (uuid.UUID, error) {
	var sale *trade.Sale
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		quote, err := repos.QuoteRepo().FindByIDForUpdate(ctx, quoteID)
		if err != nil {
			return err
		}
		if err := quote.EnsureConvertible(); err != nil {
			return err
		}
		if len(quote.Lines) == 0 {
			return trade.ErrEmptyCart
		}

		req := ConfirmSaleRequest{
			Items:         make([]CartItem, len(quote.Lines)),
			PaymentMethod: quote.PaymentMethod,
		}
		for i, l := range quote.Lines {
			req.Items[i] = CartItem{ProductID: l.ProductID, Uom: l.Uom, Quantity: l.Qty}
		}
		sale, err = confirmSale(ctx, repos, req, s.opts.DefaultPaymentMethod)
		if err != nil {
			return err
		}

		if err := quote.MarkAccepted(sale.ID); err != nil {
			return err
		}
		if err := repos.QuoteRepo().Save(ctx, quote); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.opts.Metrics.SaleConfirmed(ctx, appshared.SaleSourceQuote, sale.PaymentMethod, sale.Total.Amount())
	s.opts.Logger.Info("quote converted to sale",
		zap.String("quote_id", quoteID.String()),
		zap.String("sale_id", sale.ID.String()),
	)
	return sale.ID, nil
}
