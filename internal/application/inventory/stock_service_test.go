package inventory

import (
	"context"
	"testing"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/infrastructure/persistence"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/ferreteria/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func newStockService(t *testing.T) (*StockService, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return NewStockService(persistence.NewGormTransactionScope(db), appshared.Options{Logger: zap.NewNop()}), db
}

func TestStockService_AdjustStockTo(t *testing.T) {
	ctx := context.Background()
	svc, db := newStockService(t)
	p := testutil.SeedProduct(t, db, "Cable 2.5mm", "1200")
	testutil.SeedStock(t, db, p.ID, "40")

	t.Run("records the difference", func(t *testing.T) {
		stock, err := svc.AdjustStockTo(ctx, p.ID, testutil.Dec("37.5"), "Conteo mensual")
		require.NoError(t, err)
		assert.True(t, stock.OnHandQty.Equal(testutil.Dec("37.5")))

		assert.True(t, testutil.OnHand(t, db, p.ID).Equal(testutil.Dec("37.5")))
		assert.True(t, testutil.MovesSum(t, db, p.ID).Equal(testutil.Dec("37.5")))
	})

	t.Run("zero difference records nothing", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&models.StockMoveModel{}).Count(&before).Error)

		stock, err := svc.AdjustStockTo(ctx, p.ID, testutil.Dec("37.50"), "")
		require.NoError(t, err)
		assert.True(t, stock.OnHandQty.Equal(testutil.Dec("37.5")))

		var after int64
		require.NoError(t, db.Model(&models.StockMoveModel{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})

	t.Run("default notes name the product", func(t *testing.T) {
		_, err := svc.AdjustStockTo(ctx, p.ID, testutil.Dec("0"), "  ")
		require.NoError(t, err)

		moves, err := svc.RecentManualAdjustments(ctx, p.ID, 1)
		require.NoError(t, err)
		require.Len(t, moves, 1)
		assert.Equal(t, `Manual stock adjustment for "Cable 2.5mm"`, moves[0].Notes)
		assert.True(t, moves[0].Quantity.Equal(testutil.Dec("-37.5")))
		assert.Equal(t, "U", moves[0].Uom)
		assert.True(t, testutil.OnHand(t, db, p.ID).IsZero())
	})

	t.Run("product without stock row starts at zero", func(t *testing.T) {
		fresh := testutil.SeedProduct(t, db, "Tarugo 8mm", "15")
		stock, err := svc.AdjustStockTo(ctx, fresh.ID, testutil.Dec("100"), "")
		require.NoError(t, err)
		assert.True(t, stock.OnHandQty.Equal(testutil.Dec("100")))
		assert.True(t, testutil.MovesSum(t, db, fresh.ID).Equal(testutil.Dec("100")))
	})

	t.Run("rejects negative targets and unknown products", func(t *testing.T) {
		_, err := svc.AdjustStockTo(ctx, p.ID, testutil.Dec("-1"), "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = svc.AdjustStockTo(ctx, uuid.New(), testutil.Dec("1"), "")
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})

	t.Run("rejects targets finer than the stored scale", func(t *testing.T) {
		before := testutil.OnHand(t, db, p.ID)

		_, err := svc.AdjustStockTo(ctx, p.ID, testutil.Dec("12.0004"), "")
		require.ErrorIs(t, err, inventory.ErrQuantityScale)
		assert.True(t, testutil.OnHand(t, db, p.ID).Equal(before))
		assert.True(t, testutil.MovesSum(t, db, p.ID).Equal(before))
	})
}

func TestStockService_GetStock(t *testing.T) {
	ctx := context.Background()
	svc, db := newStockService(t)
	p := testutil.SeedProduct(t, db, "Lija 120", "300")

	stock, err := svc.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stock.OnHandQty.IsZero())

	testutil.SeedStock(t, db, p.ID, "12")
	stock, err = svc.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stock.OnHandQty.Equal(testutil.Dec("12")))
}

func TestStockService_RecentManualAdjustments(t *testing.T) {
	ctx := context.Background()
	svc, db := newStockService(t)
	p := testutil.SeedProduct(t, db, "Pintura latex 4L", "18000")
	other := testutil.SeedProduct(t, db, "Rodillo", "4500")
	testutil.SeedStock(t, db, p.ID, "10")
	testutil.SeedStock(t, db, other.ID, "3")

	for _, target := range []string{"8", "9", "6"} {
		_, err := svc.AdjustStockTo(ctx, p.ID, testutil.Dec(target), "")
		require.NoError(t, err)
	}

	moves, err := svc.RecentManualAdjustments(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.True(t, moves[0].Quantity.Equal(testutil.Dec("-3")))
	assert.True(t, moves[1].Quantity.Equal(testutil.Dec("1")))
	assert.True(t, !moves[0].OccurredAt.Before(moves[1].OccurredAt))

	all, err := svc.RecentManualAdjustments(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for _, m := range all {
		assert.Equal(t, "ADJUST", m.Type)
	}
}

func TestStockService_VerifyConsistency(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	core, recorded := observer.New(zapcore.WarnLevel)
	svc := NewStockService(persistence.NewGormTransactionScope(db), appshared.Options{Logger: zap.New(core)})

	p := testutil.SeedProduct(t, db, "Clavos 2\"", "50")
	q := testutil.SeedProduct(t, db, "Tornillos", "30")
	testutil.SeedStock(t, db, p.ID, "100")
	testutil.SeedStock(t, db, q.ID, "20")

	found, err := svc.VerifyConsistency(ctx)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, recorded.All())

	require.NoError(t, db.Model(&models.ProductStockModel{}).
		Where("product_id = ?", q.ID).Update("on_hand_qty", testutil.Dec("25")).Error)

	found, err = svc.VerifyConsistency(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, q.ID, found[0].ProductID)
	assert.True(t, found[0].OnHandQty.Equal(testutil.Dec("25")))
	assert.True(t, found[0].MovesSum.Equal(testutil.Dec("20")))
	require.Len(t, recorded.All(), 1)

	t.Run("moves without a stock row are reported", func(t *testing.T) {
		require.NoError(t, db.Where("product_id = ?", p.ID).Delete(&models.ProductStockModel{}).Error)

		found, err := svc.VerifyConsistency(ctx)
		require.NoError(t, err)
		require.Len(t, found, 2)
		byProduct := map[uuid.UUID]Discrepancy{}
		for _, d := range found {
			byProduct[d.ProductID] = d
		}
		assert.True(t, byProduct[p.ID].OnHandQty.IsZero())
		assert.True(t, byProduct[p.ID].MovesSum.Equal(testutil.Dec("100")))
	})

	t.Run("fractional histories sum to the stored quantity", func(t *testing.T) {
		r := testutil.SeedProduct(t, db, "Cable", "900")
		testutil.SeedStock(t, db, r.ID, "10")
		for _, target := range []string{"9.666", "9.333", "8.999"} {
			_, err := svc.AdjustStockTo(ctx, r.ID, testutil.Dec(target), "Conteo")
			require.NoError(t, err)
		}

		found, err := svc.VerifyConsistency(ctx)
		require.NoError(t, err)
		for _, d := range found {
			assert.NotEqual(t, r.ID, d.ProductID)
		}
	})
}
