package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductStockRepository implements ProductStockRepository using GORM
type GormProductStockRepository struct {
	db *gorm.DB
}

// NewGormProductStockRepository creates a new GormProductStockRepository
func NewGormProductStockRepository(db *gorm.DB) *GormProductStockRepository {
	return &GormProductStockRepository{db: db}
}

// LockForUpdate creates missing stock rows at zero and locks all requested
// rows in ascending product id order, so concurrent callers never deadlock
func (r *GormProductStockRepository) LockForUpdate(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*inventory.ProductStock, error) {
	out := make(map[uuid.UUID]*inventory.ProductStock, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	db := r.db.WithContext(ctx)

	now := time.Now()
	seed := make([]models.ProductStockModel, len(productIDs))
	for i, id := range productIDs {
		seed[i] = models.ProductStockModel{ProductID: id, OnHandQty: decimal.Zero, UpdatedAt: now}
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var rows []models.ProductStockModel
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id IN ?", productIDs).
		Order("product_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ProductID] = rows[i].ToDomain()
	}
	return out, nil
}

// Update writes the quantity of a locked row
func (r *GormProductStockRepository) Update(ctx context.Context, stock *inventory.ProductStock) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductStockModel{}).
		Where("product_id = ?", stock.ProductID).
		Updates(map[string]any{
			"on_hand_qty": stock.OnHandQty,
			"updated_at":  stock.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByProduct reads the stock of a product; a product never moved has zero stock
func (r *GormProductStockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.ProductStock, error) {
	var model models.ProductStockModel
	if err := r.db.WithContext(ctx).First(&model, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.NewProductStock(productID), nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// balancesQuery joins each stock row to its grouped line total. The second
// branch picks up products that have lines but no stock row.
const balancesQuery = `
SELECT s.product_id AS product_id, s.on_hand_qty AS on_hand_qty, COALESCE(m.total, 0) AS moves_sum
FROM product_stock s
LEFT JOIN (SELECT product_id, SUM(qty) AS total FROM stock_move_lines GROUP BY product_id) m
	ON m.product_id = s.product_id
UNION ALL
SELECT m.product_id, 0, m.total
FROM (SELECT product_id, SUM(qty) AS total FROM stock_move_lines GROUP BY product_id) m
WHERE NOT EXISTS (SELECT 1 FROM product_stock s WHERE s.product_id = m.product_id)
ORDER BY product_id`

type balanceRow struct {
	ProductID uuid.UUID
	OnHandQty decimal.Decimal
	MovesSum  decimal.Decimal
}

// Balances reads stock rows and per-product move totals in a single statement
func (r *GormProductStockRepository) Balances(ctx context.Context) ([]inventory.StockBalance, error) {
	var rows []balanceRow
	if err := r.db.WithContext(ctx).Raw(balancesQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.StockBalance, len(rows))
	for i, row := range rows {
		out[i] = inventory.StockBalance{
			ProductID: row.ProductID,
			OnHandQty: row.OnHandQty,
			MovesSum:  row.MovesSum.Round(valueobject.QtyPlaces),
		}
	}
	return out, nil
}

// GormStockMoveRepository implements StockMoveRepository using GORM
type GormStockMoveRepository struct {
	db *gorm.DB
}

// NewGormStockMoveRepository creates a new GormStockMoveRepository
func NewGormStockMoveRepository(db *gorm.DB) *GormStockMoveRepository {
	return &GormStockMoveRepository{db: db}
}

// Create appends a move with its lines
func (r *GormStockMoveRepository) Create(ctx context.Context, move *inventory.StockMove) error {
	return r.db.WithContext(ctx).Create(models.StockMoveFromDomain(move)).Error
}

// FindByReference lists the moves of a document, oldest first
func (r *GormStockMoveRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMove, error) {
	var rows []models.StockMoveModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("reference_type = ? AND reference_id = ?", refType.String(), refID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockMoves(rows), nil
}

// FindManualByProduct lists the latest MANUAL moves touching a product
func (r *GormStockMoveRepository) FindManualByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]inventory.StockMove, error) {
	db := r.db.WithContext(ctx)
	var rows []models.StockMoveModel
	if err := db.
		Preload("Lines", "product_id = ?", productID).
		Where("reference_type = ?", inventory.ReferenceManual.String()).
		Where("id IN (?)", db.Model(&models.StockMoveLineModel{}).Select("move_id").Where("product_id = ?", productID)).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockMoves(rows), nil
}

func toStockMoves(rows []models.StockMoveModel) []inventory.StockMove {
	out := make([]inventory.StockMove, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var (
	_ inventory.ProductStockRepository = (*GormProductStockRepository)(nil)
	_ inventory.StockMoveRepository    = (*GormStockMoveRepository)(nil)
)
