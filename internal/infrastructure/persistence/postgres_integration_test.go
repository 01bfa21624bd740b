//go:build integration

package persistence_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	financeapp "github.com/ferreteria/backend/internal/application/finance"
	appshared "github.com/ferreteria/backend/internal/application/shared"
	tradeapp "github.com/ferreteria/backend/internal/application/trade"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/ferreteria/backend/internal/infrastructure/migration"
	"github.com/ferreteria/backend/internal/infrastructure/persistence"
	"github.com/ferreteria/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a PostgreSQL container and applies the migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ferreteria_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrationsPath(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func migrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, "migrations")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("migrations directory not found")
	return ""
}

func TestPostgres_ConcurrentSalesNeverOversell(t *testing.T) {
	db := newPostgresDB(t)
	scope := persistence.NewGormTransactionScope(db, persistence.WithMaxRetries(5))
	sales := tradeapp.NewSaleService(scope, appshared.Options{})

	hammer := testutil.SeedProduct(t, db, "Martillo", "100")
	nails := testutil.SeedProduct(t, db, "Clavos", "10")
	testutil.SeedStock(t, db, hammer.ID, "6")
	testutil.SeedStock(t, db, nails.ID, "6")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		short     int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// alternate product order so lock ordering is exercised
			items := []tradeapp.CartItem{
				{ProductID: hammer.ID, Quantity: testutil.Dec("1")},
				{ProductID: nails.ID, Quantity: testutil.Dec("1")},
			}
			if i%2 == 1 {
				items[0], items[1] = items[1], items[0]
			}
			_, err := sales.ConfirmSale(context.Background(), tradeapp.ConfirmSaleRequest{Items: items})

			mu.Lock()
			defer mu.Unlock()
			var ise *inventory.InsufficientStockError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &ise):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)
	assert.Equal(t, 14, short)
	for _, id := range []uuid.UUID{hammer.ID, nails.ID} {
		assert.True(t, testutil.OnHand(t, db, id).IsZero())
		assert.True(t, testutil.MovesSum(t, db, id).IsZero())
	}
}

func TestPostgres_ConcurrentInstallmentsNeverOverpay(t *testing.T) {
	db := newPostgresDB(t)
	scope := persistence.NewGormTransactionScope(db)
	invoices := tradeapp.NewPurchaseInvoiceService(scope, appshared.Options{})
	payments := financeapp.NewPaymentService(scope, appshared.Options{})

	supplier := testutil.SeedSupplier(t, db, "Distribuidora Norte")
	p := testutil.SeedProduct(t, db, "Cemento", "9000")
	inv, err := invoices.Create(context.Background(), tradeapp.InvoiceRequest{
		SupplierID:    supplier.ID,
		InvoiceNumber: "0001-00000042",
		InvoiceDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Lines: []tradeapp.InvoiceLineInput{
			{ProductID: p.ID, Quantity: testutil.Dec("10"), UnitCost: testutil.Dec("100")},
		},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = payments.AddInvoicePayment(context.Background(), inv.ID, financeapp.AddPaymentRequest{Amount: testutil.Dec("300")})
		}()
	}
	wg.Wait()

	bal, err := payments.GetInvoiceBalance(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "900.00", bal.TotalPaid.String())
	assert.Equal(t, "100.00", bal.Balance.String())
	assert.Len(t, testutil.LedgerEntries(t, db, inv.ID), 3)
}

func TestPostgres_DuplicateInvoiceNumber(t *testing.T) {
	db := newPostgresDB(t)
	invoices := tradeapp.NewPurchaseInvoiceService(persistence.NewGormTransactionScope(db), appshared.Options{})

	supplier := testutil.SeedSupplier(t, db, "Sanitarios SRL")
	p := testutil.SeedProduct(t, db, "Caño PVC", "3500")
	req := tradeapp.InvoiceRequest{
		SupplierID:    supplier.ID,
		InvoiceNumber: "B-100",
		InvoiceDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Lines: []tradeapp.InvoiceLineInput{
			{ProductID: p.ID, Quantity: testutil.Dec("2"), UnitCost: testutil.Dec("1500")},
		},
	}
	_, err := invoices.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = invoices.Create(context.Background(), req)
	assert.ErrorIs(t, err, trade.ErrDuplicateInvoice)
	assert.True(t, testutil.OnHand(t, db, p.ID).Equal(testutil.Dec("2")))
}
