package models

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStockModel holds the on-hand quantity of one product.
type ProductStockModel struct {
	ProductID uuid.UUID       `gorm:"type:uuid;primary_key"`
	OnHandQty decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductStockModel) TableName() string {
	return "product_stock"
}

// ToDomain converts the persistence model to a domain ProductStock.
func (m *ProductStockModel) ToDomain() *inventory.ProductStock {
	return &inventory.ProductStock{
		ProductID: m.ProductID,
		OnHandQty: m.OnHandQty,
		UpdatedAt: m.UpdatedAt,
	}
}

// StockMoveModel is the header of an append-only stock move.
type StockMoveModel struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key"`
	OccurredAt    time.Time            `gorm:"not null;index"`
	Type          string               `gorm:"type:varchar(10);not null"`
	ReferenceType string               `gorm:"type:varchar(20);not null;index:idx_stock_move_reference,priority:1"`
	ReferenceID   *uuid.UUID           `gorm:"type:uuid;index:idx_stock_move_reference,priority:2"`
	Notes         string               `gorm:"type:text"`
	Lines         []StockMoveLineModel `gorm:"foreignKey:MoveID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (StockMoveModel) TableName() string {
	return "stock_moves"
}

// ToDomain converts the persistence model to a domain StockMove.
func (m *StockMoveModel) ToDomain() *inventory.StockMove {
	move := &inventory.StockMove{
		ID:            m.ID,
		OccurredAt:    m.OccurredAt,
		Type:          inventory.MoveType(m.Type),
		ReferenceType: inventory.ReferenceType(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		Lines:         make([]inventory.StockMoveLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		move.Lines[i] = inventory.StockMoveLine{
			ID:        l.ID,
			MoveID:    l.MoveID,
			ProductID: l.ProductID,
			Qty:       l.Qty,
			Uom:       l.Uom,
			UnitCost:  l.UnitCost,
		}
	}
	return move
}

// StockMoveFromDomain creates a persistence model from a domain StockMove.
func StockMoveFromDomain(move *inventory.StockMove) *StockMoveModel {
	m := &StockMoveModel{
		ID:            move.ID,
		OccurredAt:    move.OccurredAt,
		Type:          move.Type.String(),
		ReferenceType: move.ReferenceType.String(),
		ReferenceID:   move.ReferenceID,
		Notes:         move.Notes,
		Lines:         make([]StockMoveLineModel, len(move.Lines)),
	}
	for i, l := range move.Lines {
		m.Lines[i] = StockMoveLineModel{
			ID:        l.ID,
			MoveID:    move.ID,
			ProductID: l.ProductID,
			Qty:       l.Qty,
			Uom:       l.Uom,
			UnitCost:  l.UnitCost,
		}
	}
	return m
}

// StockMoveLineModel is one signed product delta of a stock move.
type StockMoveLineModel struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key"`
	MoveID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Qty       decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	Uom       string           `gorm:"type:varchar(20);not null"`
	UnitCost  *decimal.Decimal `gorm:"type:decimal(14,2)"`
}

// TableName returns the table name for GORM
func (StockMoveLineModel) TableName() string {
	return "stock_move_lines"
}
