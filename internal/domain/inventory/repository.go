package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ProductStockRepository persists on-hand quantities.
// Mutations go through StockLedger; nothing else writes these rows.
type ProductStockRepository interface {
	// LockForUpdate creates missing rows at zero, then locks every row with
	// SELECT ... FOR UPDATE in ascending product id order
	LockForUpdate(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*ProductStock, error)
	// Update writes the locked row back
	Update(ctx context.Context, stock *ProductStock) error
	// FindByProduct reads without locking
	FindByProduct(ctx context.Context, productID uuid.UUID) (*ProductStock, error)
	// Balances reads every stock row next to its move line total in one
	// statement, so both sides come from the same snapshot
	Balances(ctx context.Context) ([]StockBalance, error)
}

// StockMoveRepository is append-only
type StockMoveRepository interface {
	Create(ctx context.Context, move *StockMove) error
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]StockMove, error)
	// FindManualByProduct lists MANUAL adjustments touching the product, newest first
	FindManualByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]StockMove, error)
}
