package catalog

import (
	"context"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeletableResponse tells whether a product can be hard-deleted
type DeletableResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	Deletable      bool      `json:"deletable"`
	SaleLines      int64     `json:"sale_lines"`
	InvoiceLines   int64     `json:"invoice_lines"`
	StockMoveLines int64     `json:"stock_move_lines"`
}

// ProductService guards hard deletion of products referenced by the ledgers
type ProductService struct {
	txScope appshared.TransactionScope
	opts    appshared.Options
}

// NewProductService creates a new ProductService
func NewProductService(txScope appshared.TransactionScope, opts appshared.Options) *ProductService {
	return &ProductService{
		txScope: txScope,
		opts:    opts.WithDefaults(),
	}
}

// CanHardDelete reports whether no sale line, invoice line or stock move line references the product
func (s *ProductService) CanHardDelete(ctx context.Context, id uuid.UUID) (*DeletableResponse, error) {
	var refs catalog.ProductReferences
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, id); err != nil {
			return err
		}
		var err error
		refs, err = repos.ProductRepo().CountReferences(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &DeletableResponse{
		ProductID:      id,
		Deletable:      !refs.Any(),
		SaleLines:      refs.SaleLines,
		InvoiceLines:   refs.InvoiceLines,
		StockMoveLines: refs.StockMoveLines,
	}, nil
}

// Delete removes an unreferenced product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, id); err != nil {
			return err
		}
		refs, err := repos.ProductRepo().CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if refs.Any() {
			return catalog.ErrProductReferenced
		}
		return repos.ProductRepo().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.opts.Logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}
