package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence for products and their unit prices
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDs returns the products keyed by id; missing ids are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CountReferences counts sale lines, invoice lines and stock move lines pointing at the product
	CountReferences(ctx context.Context, id uuid.UUID) (ProductReferences, error)
}

// ProductReferences counts the rows that block a hard delete
type ProductReferences struct {
	SaleLines      int64
	InvoiceLines   int64
	StockMoveLines int64
}

// Any reports whether at least one reference exists
func (r ProductReferences) Any() bool {
	return r.SaleLines+r.InvoiceLines+r.StockMoveLines > 0
}
