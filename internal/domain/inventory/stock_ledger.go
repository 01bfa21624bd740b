package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockLedger is the only writer of product stock. Recording a move locks the
// stock rows it touches, applies every signed line delta and appends the move,
// all on the repositories of the caller's transaction.
type StockLedger struct {
	stocks ProductStockRepository
	moves  StockMoveRepository
}

// NewStockLedger creates a StockLedger bound to transaction-scoped repositories
func NewStockLedger(stocks ProductStockRepository, moves StockMoveRepository) *StockLedger {
	return &StockLedger{stocks: stocks, moves: moves}
}

// Lock acquires row locks on the stock of every product, in ascending id order.
// Callers that validate quantities before recording must lock first.
func (l *StockLedger) Lock(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*ProductStock, error) {
	ids := shared.SortIDs(productIDs)
	if len(ids) == 0 {
		return map[uuid.UUID]*ProductStock{}, nil
	}
	locked, err := l.stocks.LockForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock product stock: %w", err)
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("lock product stock: row for product %s missing after lock", id)
		}
	}
	return locked, nil
}

// Record applies the move to stock and appends it. Either every line is
// applied and the move stored, or an error is returned and the caller's
// transaction must roll back. A delta that would drive stock below zero
// fails with InsufficientStockError listing every short product.
func (l *StockLedger) Record(ctx context.Context, move *StockMove) error {
	if move == nil || len(move.Lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Stock move has no lines")
	}

	locked, err := l.Lock(ctx, move.ProductIDs())
	if err != nil {
		return err
	}

	var shortfalls []Shortfall
	net := move.NetByProduct()
	for _, id := range shared.SortIDs(move.ProductIDs()) {
		stock := locked[id]
		if err := stock.apply(net[id]); err != nil {
			var ise *InsufficientStockError
			if errors.As(err, &ise) {
				shortfalls = append(shortfalls, ise.Shortfalls...)
				continue
			}
			return err
		}
	}
	if len(shortfalls) > 0 {
		return &InsufficientStockError{Shortfalls: shortfalls}
	}

	for _, id := range shared.SortIDs(move.ProductIDs()) {
		if err := l.stocks.Update(ctx, locked[id]); err != nil {
			return fmt.Errorf("update product stock: %w", err)
		}
	}
	if err := l.moves.Create(ctx, move); err != nil {
		return fmt.Errorf("create stock move: %w", err)
	}
	return nil
}
