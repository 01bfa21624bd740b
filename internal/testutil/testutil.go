// Package testutil provides fixtures shared by the ferreteria backend tests:
// an in-memory SQLite schema, seeders and HTTP helpers.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/partner"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory database with the full schema.
// One connection is kept open so every transaction sees the same data and
// concurrent transactions are serialized.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Dec parses a decimal literal and panics on bad input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ProductOption customizes a seeded product
type ProductOption func(t testing.TB, p *catalog.Product)

// WithUom adds an alternate unit of sale
func WithUom(uom, price, conversion string) ProductOption {
	return func(t testing.TB, p *catalog.Product) {
		require.NoError(t, p.AddUomPrice(uom, valueobject.MustMoney(price), Dec(conversion)))
	}
}

// Inactive seeds the product deactivated
func Inactive() ProductOption {
	return func(_ testing.TB, p *catalog.Product) {
		p.Deactivate()
	}
}

// SeedProduct inserts an active product sold by the unit ("U") at price
func SeedProduct(t testing.TB, db *gorm.DB, name, price string, opts ...ProductOption) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(name, "U", valueobject.MustMoney(price))
	require.NoError(t, err)
	for _, opt := range opts {
		opt(t, p)
	}
	require.NoError(t, db.Create(models.ProductFromDomain(p)).Error)
	return p
}

// SeedSupplier inserts an active supplier
func SeedSupplier(t testing.TB, db *gorm.DB, name string) *partner.Supplier {
	t.Helper()

	s, err := partner.NewSupplier(name, "")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.SupplierFromDomain(s)).Error)
	return s
}

// SeedStock records a manual adjustment of qty base units and moves the
// on-hand quantity with it, keeping stock equal to the sum of its moves.
func SeedStock(t testing.TB, db *gorm.DB, productID uuid.UUID, qty string) {
	t.Helper()

	move, err := inventory.NewStockMove(inventory.MoveTypeAdjust, inventory.ReferenceManual, nil, "Opening stock")
	require.NoError(t, err)
	require.NoError(t, move.AddLine(productID, Dec(qty), "U", nil))

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.StockMoveFromDomain(move)).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"on_hand_qty": gorm.Expr("product_stock.on_hand_qty + ?", Dec(qty)),
				"updated_at":  time.Now(),
			}),
		}).Create(&models.ProductStockModel{ProductID: productID, OnHandQty: Dec(qty), UpdatedAt: time.Now()}).Error
	})
	require.NoError(t, err)
}

// QuoteLine describes one line of a seeded quote
type QuoteLine struct {
	ProductID uuid.UUID
	Uom       string
	Qty       string
	UnitPrice string
}

// SeedQuote inserts a quote in the given status
func SeedQuote(t testing.TB, db *gorm.DB, number string, status trade.QuoteStatus, lines ...QuoteLine) *trade.Quote {
	t.Helper()

	q := trade.NewQuote(number, "Mostrador", finance.PaymentMethodCash)
	q.Status = status
	for _, l := range lines {
		require.NoError(t, q.AddLine(l.ProductID, l.Uom, Dec(l.Qty), valueobject.MustMoney(l.UnitPrice)))
	}
	require.NoError(t, db.Create(models.QuoteFromDomain(q)).Error)
	return q
}

// OnHand reads the stored on-hand quantity of a product, zero when absent
func OnHand(t testing.TB, db *gorm.DB, productID uuid.UUID) decimal.Decimal {
	t.Helper()

	var row models.ProductStockModel
	err := db.Where("product_id = ?", productID).Limit(1).Find(&row).Error
	require.NoError(t, err)
	return row.OnHandQty
}

// MovesSum adds every stock move line of a product
func MovesSum(t testing.TB, db *gorm.DB, productID uuid.UUID) decimal.Decimal {
	t.Helper()

	var lines []models.StockMoveLineModel
	require.NoError(t, db.Where("product_id = ?", productID).Find(&lines).Error)
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Qty)
	}
	return sum
}

// LedgerEntries lists ledger rows referencing id, soft deleted ones included
func LedgerEntries(t testing.TB, db *gorm.DB, referenceID uuid.UUID) []models.FinanceLedgerModel {
	t.Helper()

	var rows []models.FinanceLedgerModel
	require.NoError(t, db.Unscoped().Where("reference_id = ?", referenceID).Order("occurred_at").Find(&rows).Error)
	return rows
}
