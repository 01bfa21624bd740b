package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultAdjustmentLimit bounds RecentManualAdjustments when no limit is given
const DefaultAdjustmentLimit = 20

// StockResponse is the on-hand quantity of a product
type StockResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	OnHandQty decimal.Decimal `json:"on_hand_qty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockMoveResponse represents a stock move line of one product
type StockMoveResponse struct {
	MoveID     uuid.UUID       `json:"move_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Uom        string          `json:"uom"`
	Notes      string          `json:"notes,omitempty"`
}

// Discrepancy is a product whose stock row disagrees with its move history
type Discrepancy struct {
	ProductID uuid.UUID       `json:"product_id"`
	OnHandQty decimal.Decimal `json:"on_hand_qty"`
	MovesSum  decimal.Decimal `json:"moves_sum"`
}

// StockService exposes manual adjustments and stock reads
type StockService struct {
	txScope appshared.TransactionScope
	opts    appshared.Options
}

// NewStockService creates a new StockService
func NewStockService(txScope appshared.TransactionScope, opts appshared.Options) *StockService {
	return &StockService{
		txScope: txScope,
		opts:    opts.WithDefaults(),
	}
}

// AdjustStockTo brings on-hand stock to target by recording the difference.
// A zero difference records nothing.
func (s *StockService) AdjustStockTo(ctx context.Context, productID uuid.UUID, target decimal.Decimal, notes string) (*StockResponse, error) {
	if target.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Target stock cannot be negative")
	}
	if !valueobject.HasAtMostPlaces(target, valueobject.QtyPlaces) {
		return nil, inventory.ErrQuantityScale
	}

	var (
		stock *inventory.ProductStock
		delta decimal.Decimal
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		ledger := appshared.StockLedger(repos)
		locked, err := ledger.Lock(ctx, []uuid.UUID{productID})
		if err != nil {
			return err
		}
		stock = locked[productID]
		delta = target.Sub(stock.OnHandQty)
		if delta.IsZero() {
			return nil
		}

		if strings.TrimSpace(notes) == "" {
			notes = fmt.Sprintf("Manual stock adjustment for %q", product.Name)
		}
		move, err := inventory.NewStockMove(inventory.MoveTypeAdjust, inventory.ReferenceManual, nil, notes)
		if err != nil {
			return err
		}
		if err := move.AddLine(productID, delta, product.BaseUom, nil); err != nil {
			return err
		}
		if err := ledger.Record(ctx, move); err != nil {
			return err
		}
		stock.OnHandQty = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		s.opts.Metrics.StockAdjusted(ctx, delta)
		s.opts.Logger.Info("stock adjusted",
			zap.String("product_id", productID.String()),
			zap.String("delta", delta.String()),
			zap.String("on_hand", stock.OnHandQty.String()),
		)
	}
	return toStockResponse(stock), nil
}

// GetStock reads the on-hand quantity without locking
func (s *StockService) GetStock(ctx context.Context, productID uuid.UUID) (*StockResponse, error) {
	var stock *inventory.ProductStock
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		stock, err = repos.StockRepo().FindByProduct(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

// RecentManualAdjustments lists the latest MANUAL moves of a product, newest first
func (s *StockService) RecentManualAdjustments(ctx context.Context, productID uuid.UUID, limit int) ([]StockMoveResponse, error) {
	if limit <= 0 {
		limit = DefaultAdjustmentLimit
	}
	var moves []inventory.StockMove
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		moves, err = repos.StockMoveRepo().FindManualByProduct(ctx, productID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := make([]StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		for _, l := range m.Lines {
			if l.ProductID != productID {
				continue
			}
			resp = append(resp, StockMoveResponse{
				MoveID:     m.ID,
				OccurredAt: m.OccurredAt,
				Type:       m.Type.String(),
				Quantity:   l.Qty,
				Uom:        l.Uom,
				Notes:      m.Notes,
			})
		}
	}
	return resp, nil
}

// VerifyConsistency compares every stock row with the sum of its move lines
func (s *StockService) VerifyConsistency(ctx context.Context) ([]Discrepancy, error) {
	var balances []inventory.StockBalance
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		balances, err = repos.StockRepo().Balances(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	var out []Discrepancy
	for _, b := range balances {
		if !b.Consistent() {
			out = append(out, Discrepancy{ProductID: b.ProductID, OnHandQty: b.OnHandQty, MovesSum: b.MovesSum})
		}
	}
	s.opts.Metrics.StockDiscrepancies(ctx, len(out))
	if len(out) > 0 {
		s.opts.Logger.Warn("stock ledger discrepancies found", zap.Int("count", len(out)))
	}
	return out, nil
}

func toStockResponse(s *inventory.ProductStock) *StockResponse {
	return &StockResponse{
		ProductID: s.ProductID,
		OnHandQty: s.OnHandQty,
		UpdatedAt: s.UpdatedAt,
	}
}
