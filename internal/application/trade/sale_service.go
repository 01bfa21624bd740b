package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService confirms and adjusts sales. Stock, sale rows and the finance
// ledger are written in one transaction per call.
type SaleService struct {
	txScope appshared.TransactionScope
	opts    appshared.Options
}

// NewSaleService creates a new SaleService
func NewSaleService(txScope appshared.TransactionScope, opts appshared.Options) *SaleService {
	return &SaleService{
		txScope: txScope,
		opts:    opts.WithDefaults(),
	}
}

// ConfirmSale turns a cart into a confirmed sale
func (s *SaleService) ConfirmSale(ctx context.Context, req ConfirmSaleRequest) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		sale, err = confirmSale(ctx, repos, req, s.opts.DefaultPaymentMethod)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.opts.Metrics.SaleConfirmed(ctx, appshared.SaleSourceCart, sale.PaymentMethod, sale.Total.Amount())
	s.opts.Logger.Info("sale confirmed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.Total.String()),
		zap.String("payment_method", sale.PaymentMethod.String()),
		zap.Int("lines", len(sale.Lines)),
	)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetSale retrieves a sale by ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// resolvedItem is a cart item bound to its product and unit price row
type resolvedItem struct {
	product *catalog.Product
	price   catalog.ProductUomPrice
	qty     decimal.Decimal
}

// confirmSale runs the sale engine on the caller's transaction
func confirmSale(ctx context.Context, repos appshared.TransactionalRepositories, req ConfirmSaleRequest, fallback finance.PaymentMethod) (*trade.Sale, error) {
	if len(req.Items) == 0 {
		return nil, trade.ErrEmptyCart
	}
	for _, item := range req.Items {
		if err := trade.CheckQuantity(item.Quantity); err != nil {
			return nil, err
		}
	}
	method, err := finance.NormalizePaymentMethod(req.PaymentMethod, fallback)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}
	products, err := loadSellableProducts(ctx, repos.ProductRepo(), ids)
	if err != nil {
		return nil, err
	}

	items, err := mergeCart(req.Items, products)
	if err != nil {
		return nil, err
	}

	ledger := appshared.StockLedger(repos)
	locked, err := ledger.Lock(ctx, ids)
	if err != nil {
		return nil, err
	}
	var shortfalls []inventory.Shortfall
	for _, it := range items {
		need := it.price.ToBase(it.qty)
		stock := locked[it.product.ID]
		if !stock.CanCover(need) {
			shortfalls = append(shortfalls, inventory.Shortfall{
				ProductID:   it.product.ID,
				ProductName: it.product.Name,
				Requested:   need,
				Available:   stock.OnHandQty,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, &inventory.InsufficientStockError{Shortfalls: shortfalls}
	}

	lines := make([]trade.SaleLine, 0, len(items))
	for _, it := range items {
		line, err := trade.NewSaleLine(it.product.ID, it.price.Uom, it.qty, it.price.ConversionToBase, it.price.SalePrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	sale, err := trade.NewSale(lines, method)
	if err != nil {
		return nil, err
	}
	if err := repos.SaleRepo().Create(ctx, sale); err != nil {
		return nil, err
	}

	move, err := inventory.NewStockMove(inventory.MoveTypeOut, inventory.ReferenceSale, &sale.ID, saleNote(sale.ID))
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := move.AddLine(it.product.ID, it.price.ToBase(it.qty).Neg(), it.product.BaseUom, nil); err != nil {
			return nil, err
		}
	}
	if err := recordStock(ctx, ledger, move, products); err != nil {
		return nil, err
	}

	if sale.Total.IsPositive() {
		entry, err := finance.NewLedgerEntry(finance.EntryTypeIncome, sale.Total, finance.CategorySales,
			finance.ReferenceSale, &sale.ID, method, saleNote(sale.ID))
		if err != nil {
			return nil, err
		}
		if err := repos.LedgerRepo().Create(ctx, entry); err != nil {
			return nil, err
		}
	}
	return sale, nil
}

// mergeCart keys items by product. Repeats with the same unit are summed; a
// product requested in two different units is rejected.
func mergeCart(items []CartItem, products map[uuid.UUID]*catalog.Product) ([]resolvedItem, error) {
	order := make([]uuid.UUID, 0, len(items))
	merged := make(map[uuid.UUID]*resolvedItem, len(items))
	for _, item := range items {
		p := products[item.ProductID]
		price, err := p.PriceFor(item.Uom)
		if err != nil {
			return nil, shared.NewDomainError(catalog.ErrUnknownUom.Code,
				fmt.Sprintf("Unit %q is not configured for %q", strings.ToUpper(strings.TrimSpace(item.Uom)), p.Name))
		}
		if existing, ok := merged[p.ID]; ok {
			if existing.price.Uom != price.Uom {
				return nil, shared.NewDomainError("INVALID_INPUT",
					fmt.Sprintf("Product %q appears with units %s and %s", p.Name, existing.price.Uom, price.Uom))
			}
			existing.qty = existing.qty.Add(item.Quantity)
			continue
		}
		merged[p.ID] = &resolvedItem{product: p, price: price, qty: item.Quantity}
		order = append(order, p.ID)
	}
	out := make([]resolvedItem, len(order))
	for i, id := range order {
		out[i] = *merged[id]
	}
	return out, nil
}

// loadSellableProducts fetches every product and fails on the first missing or inactive one
func loadSellableProducts(ctx context.Context, repo catalog.ProductRepository, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := ensureSellable(products, ids); err != nil {
		return nil, err
	}
	return products, nil
}

func ensureSellable(products map[uuid.UUID]*catalog.Product, ids []uuid.UUID) error {
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			return shared.NewDomainError(catalog.ErrProductNotFound.Code, fmt.Sprintf("Product %s not found", id))
		}
		if err := p.EnsureSellable(); err != nil {
			return err
		}
	}
	return nil
}

// recordStock records the move and names short products in the error
func recordStock(ctx context.Context, ledger *inventory.StockLedger, move *inventory.StockMove, products map[uuid.UUID]*catalog.Product) error {
	err := ledger.Record(ctx, move)
	var ise *inventory.InsufficientStockError
	if errors.As(err, &ise) {
		names := make(map[uuid.UUID]string, len(products))
		for id, p := range products {
			names[id] = p.Name
		}
		return ise.WithNames(names)
	}
	return err
}

func saleNote(id uuid.UUID) string {
	return "Sale #" + id.String()
}
