package router

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	catalogapp "github.com/ferreteria/backend/internal/application/catalog"
	financeapp "github.com/ferreteria/backend/internal/application/finance"
	inventoryapp "github.com/ferreteria/backend/internal/application/inventory"
	appshared "github.com/ferreteria/backend/internal/application/shared"
	tradeapp "github.com/ferreteria/backend/internal/application/trade"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/ferreteria/backend/internal/infrastructure/cache"
	"github.com/ferreteria/backend/internal/infrastructure/persistence"
	"github.com/ferreteria/backend/internal/interfaces/http/handler"
	"github.com/ferreteria/backend/internal/interfaces/http/middleware"
	"github.com/ferreteria/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error {
	return p.err
}

type apiFixture struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	opts := appshared.Options{Logger: zap.NewNop()}

	handlers := Handlers{
		Sale: handler.NewSaleHandler(
			tradeapp.NewSaleService(scope, opts),
			tradeapp.NewQuoteService(scope, opts),
		),
		PurchaseInvoice: handler.NewPurchaseInvoiceHandler(
			tradeapp.NewPurchaseInvoiceService(scope, opts),
			financeapp.NewPaymentService(scope, opts),
		),
		Stock:   handler.NewStockHandler(inventoryapp.NewStockService(scope, opts)),
		Product: handler.NewProductHandler(catalogapp.NewProductService(scope, opts)),
		Finance: handler.NewFinanceHandler(financeapp.NewLedgerService(scope, opts)),
	}

	engine := NewEngine(EngineConfig{
		Logger:             zap.NewNop(),
		Handlers:           handlers,
		Health:             handler.NewHealthHandler(fakePinger{}, "test"),
		Idempotency:        cache.NewMemoryStore(0),
		IdempotencyTTL:     time.Hour,
		CORS:               middleware.DefaultCORSConfig(),
		MaxBodySize:        1 << 20,
		TracingServiceName: "ferreteria-test",
		Profiling:          true,
	})
	return &apiFixture{db: db, engine: engine}
}

type saleView struct {
	ID            string `json:"id"`
	Total         string `json:"total"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
}

type invoiceView struct {
	ID        string `json:"id"`
	Total     string `json:"total"`
	TotalPaid string `json:"total_paid"`
	Balance   string `json:"balance"`
	Status    string `json:"status"`
}

type balanceView struct {
	Total       string `json:"total"`
	TotalPaid   string `json:"total_paid"`
	Balance     string `json:"balance"`
	IsFullyPaid bool   `json:"is_fully_paid"`
	Status      string `json:"status"`
}

func TestAPI_ConfirmSale(t *testing.T) {
	api := newAPI(t)
	product := testutil.SeedProduct(t, api.db, "Tornillo 6mm", "100")
	testutil.SeedStock(t, api.db, product.ID, "5")

	cart := func(qty string) gin.H {
		return gin.H{"items": []gin.H{{"product_id": product.ID.String(), "quantity": qty}}}
	}

	t.Run("records the sale and decrements stock", func(t *testing.T) {
		w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/sales", cart("2"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		sale := testutil.DecodeData[saleView](t, w)
		assert.Equal(t, "200.00", sale.Total)
		assert.Equal(t, "CONFIRMED", sale.Status)
		assert.Equal(t, "CASH", sale.PaymentMethod)
		assert.True(t, testutil.OnHand(t, api.db, product.ID).Equal(testutil.Dec("3")))
		assert.True(t, testutil.MovesSum(t, api.db, product.ID).Equal(testutil.Dec("3")))

		got := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/sales/"+sale.ID, nil)
		require.Equal(t, http.StatusOK, got.Code)
		assert.Equal(t, sale.ID, testutil.DecodeData[saleView](t, got).ID)
	})

	t.Run("rejects overselling with the shortfall", func(t *testing.T) {
		w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/sales", cart("10"))
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		errInfo := testutil.DecodeError(t, w)
		assert.Equal(t, "INSUFFICIENT_STOCK", errInfo.Code)
		details, ok := errInfo.Details.([]any)
		require.True(t, ok, "details should list shortfalls")
		require.Len(t, details, 1)
		shortfall := details[0].(map[string]any)
		assert.Equal(t, product.ID.String(), shortfall["product_id"])
		assert.Equal(t, "Tornillo 6mm", shortfall["product_name"])
		assert.True(t, testutil.OnHand(t, api.db, product.ID).Equal(testutil.Dec("3")))
	})

	t.Run("reports malformed quantities per field", func(t *testing.T) {
		w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/sales", cart("dos"))
		require.Equal(t, http.StatusBadRequest, w.Code)

		errInfo := testutil.DecodeError(t, w)
		assert.Equal(t, "VALIDATION_ERROR", errInfo.Code)
		require.Len(t, errInfo.Fields, 1)
		assert.Equal(t, "items[0].quantity", errInfo.Fields[0].Field)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/sales", gin.H{"items": []gin.H{}})
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "EMPTY_CART", testutil.DecodeError(t, w).Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/sales", `{"items": [`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_JSON", testutil.DecodeError(t, w).Code)
	})

	t.Run("replayed idempotency key is refused", func(t *testing.T) {
		first := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/sales", cart("1"), "Idempotency-Key", "ticket-77")
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

		replay := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/sales", cart("1"), "Idempotency-Key", "ticket-77")
		require.Equal(t, http.StatusConflict, replay.Code)
		assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", testutil.DecodeError(t, replay).Code)
		assert.True(t, testutil.OnHand(t, api.db, product.ID).Equal(testutil.Dec("2")))
	})
}

func TestAPI_ConvertQuote(t *testing.T) {
	api := newAPI(t)
	product := testutil.SeedProduct(t, api.db, "Pintura latex", "1500", testutil.WithUom("BALDE", "5500", "4"))
	testutil.SeedStock(t, api.db, product.ID, "10")
	quote := testutil.SeedQuote(t, api.db, "P-0001", trade.QuoteStatusSent,
		testutil.QuoteLine{ProductID: product.ID, Uom: "BALDE", Qty: "2", UnitPrice: "5000"})

	w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/quotes/"+quote.ID.String()+"/convert", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	converted := testutil.DecodeData[handler.ConvertQuoteResponse](t, w)
	assert.Equal(t, quote.ID.String(), converted.QuoteID)
	assert.True(t, testutil.OnHand(t, api.db, product.ID).Equal(testutil.Dec("2")))

	sale := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/sales/"+converted.SaleID, nil)
	require.Equal(t, http.StatusOK, sale.Code)
	assert.Equal(t, "11000.00", testutil.DecodeData[saleView](t, sale).Total)

	again := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/quotes/"+quote.ID.String()+"/convert", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, again.Code)
	assert.Equal(t, "QUOTE_NOT_CONVERTIBLE", testutil.DecodeError(t, again).Code)
}

func TestAPI_PurchaseInvoiceLifecycle(t *testing.T) {
	api := newAPI(t)
	product := testutil.SeedProduct(t, api.db, "Cemento 50kg", "9000")
	supplier := testutil.SeedSupplier(t, api.db, "Corralon Norte")

	invoice := gin.H{
		"supplier_id":    supplier.ID.String(),
		"invoice_number": "A-0001-00001234",
		"invoice_date":   "2026-03-02",
		"due_date":       "2026-04-01",
		"lines": []gin.H{{
			"product_id": product.ID.String(),
			"quantity":   "10",
			"unit_cost":  "50,00",
			"vat_rate":   "21",
		}},
	}

	w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/purchase-invoices", invoice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.DecodeData[invoiceView](t, w)
	assert.Equal(t, "605.00", created.Total)
	assert.Equal(t, "PENDING", created.Status)
	assert.True(t, testutil.OnHand(t, api.db, product.ID).Equal(testutil.Dec("10")))

	t.Run("duplicate invoice number conflicts", func(t *testing.T) {
		dup := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/purchase-invoices", invoice)
		require.Equal(t, http.StatusConflict, dup.Code, dup.Body.String())
		assert.Equal(t, "DUPLICATE_INVOICE_NUMBER", testutil.DecodeError(t, dup).Code)
		assert.True(t, testutil.OnHand(t, api.db, product.ID).Equal(testutil.Dec("10")))
	})

	base := "/api/v1/purchase-invoices/" + created.ID

	t.Run("overpayment is rejected with the balance", func(t *testing.T) {
		over := testutil.DoJSON(t, api.engine, http.MethodPost, base+"/payments", gin.H{"amount": "700,00"})
		require.Equal(t, http.StatusUnprocessableEntity, over.Code, over.Body.String())

		errInfo := testutil.DecodeError(t, over)
		assert.Equal(t, "OVERPAYMENT_REJECTED", errInfo.Code)
		details := errInfo.Details.(map[string]any)
		assert.Equal(t, "700.00", details["amount"])
		assert.Equal(t, "605.00", details["balance"])
	})

	t.Run("installment reduces the balance", func(t *testing.T) {
		paid := testutil.DoJSON(t, api.engine, http.MethodPost, base+"/payments", gin.H{"amount": "105,00", "paid_at": "2026-03-10"})
		require.Equal(t, http.StatusCreated, paid.Code, paid.Body.String())

		bal := testutil.DoJSON(t, api.engine, http.MethodGet, base+"/balance", nil)
		require.Equal(t, http.StatusOK, bal.Code)
		view := testutil.DecodeData[balanceView](t, bal)
		assert.Equal(t, "105.00", view.TotalPaid)
		assert.Equal(t, "500.00", view.Balance)
		assert.False(t, view.IsFullyPaid)
	})

	t.Run("pay settles the remainder once", func(t *testing.T) {
		pay := testutil.DoJSON(t, api.engine, http.MethodPost, base+"/pay", nil)
		require.Equal(t, http.StatusOK, pay.Code, pay.Body.String())
		view := testutil.DecodeData[balanceView](t, pay)
		assert.Equal(t, "0.00", view.Balance)
		assert.True(t, view.IsFullyPaid)
		assert.Equal(t, "PAID", view.Status)

		again := testutil.DoJSON(t, api.engine, http.MethodPost, base+"/pay", nil)
		require.Equal(t, http.StatusUnprocessableEntity, again.Code)
		assert.Equal(t, "ALREADY_PAID", testutil.DecodeError(t, again).Code)

		entries := testutil.LedgerEntries(t, api.db, uuid.MustParse(created.ID))
		require.Len(t, entries, 2)
		sum := decimal.Zero
		for _, e := range entries {
			assert.Equal(t, "EXPENSE", e.Type)
			sum = sum.Add(e.Amount)
		}
		assert.True(t, sum.Equal(testutil.Dec("605")), "expense total %s", sum)
	})

	t.Run("paid invoice can no longer be edited", func(t *testing.T) {
		edit := testutil.DoJSON(t, api.engine, http.MethodPut, base, invoice)
		require.Equal(t, http.StatusUnprocessableEntity, edit.Code)
		assert.Equal(t, "INVOICE_NOT_EDITABLE", testutil.DecodeError(t, edit).Code)
	})
}

func TestAPI_PurchaseInvoiceValidation(t *testing.T) {
	api := newAPI(t)

	w := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/purchase-invoices", gin.H{
		"supplier_id":    "not-a-uuid",
		"invoice_number": "X-1",
		"invoice_date":   "02/03/2026",
		"lines":          []gin.H{{"product_id": testUUID, "quantity": "1", "unit_cost": "10,00"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	errInfo := testutil.DecodeError(t, w)
	fields := make([]string, len(errInfo.Fields))
	for i, f := range errInfo.Fields {
		fields[i] = f.Field
	}
	assert.ElementsMatch(t, []string{"supplier_id", "invoice_date"}, fields)

	missing := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/purchase-invoices", gin.H{"invoice_number": "X-1"})
	require.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutil.DecodeError(t, missing).Code)
}

func TestAPI_StockAdjustAndConsistency(t *testing.T) {
	api := newAPI(t)
	product := testutil.SeedProduct(t, api.db, "Cable 2.5mm", "800")
	testutil.SeedStock(t, api.db, product.ID, "40")
	path := "/api/v1/stock/" + product.ID.String()

	w := testutil.DoJSON(t, api.engine, http.MethodPost, path+"/adjust", gin.H{"quantity": "37,5", "notes": "recuento"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, testutil.OnHand(t, api.db, product.ID).Equal(testutil.Dec("37.5")))

	adj := testutil.DoJSON(t, api.engine, http.MethodGet, path+"/adjustments?limit=5", nil)
	require.Equal(t, http.StatusOK, adj.Code)
	moves := testutil.DecodeData[[]inventoryapp.StockMoveResponse](t, adj)
	require.NotEmpty(t, moves)
	assert.True(t, moves[0].Quantity.Equal(testutil.Dec("-2.5")), "latest adjustment %s", moves[0].Quantity)

	bad := testutil.DoJSON(t, api.engine, http.MethodGet, path+"/adjustments?limit=0", nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, "limit", testutil.DecodeError(t, bad).Fields[0].Field)

	consistent := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/stock/consistency", nil)
	require.Equal(t, http.StatusOK, consistent.Code)
	assert.Empty(t, testutil.DecodeData[[]inventoryapp.Discrepancy](t, consistent))

	require.NoError(t, api.db.Exec("UPDATE product_stock SET on_hand_qty = 99 WHERE product_id = ?", product.ID).Error)
	drifted := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/stock/consistency", nil)
	found := testutil.DecodeData[[]inventoryapp.Discrepancy](t, drifted)
	require.Len(t, found, 1)
	assert.Equal(t, product.ID, found[0].ProductID)
	assert.True(t, found[0].MovesSum.Equal(testutil.Dec("37.5")))
}

func TestAPI_ProductDeletion(t *testing.T) {
	api := newAPI(t)
	unused := testutil.SeedProduct(t, api.db, "Lija 120", "300")
	stocked := testutil.SeedProduct(t, api.db, "Lija 80", "300")
	testutil.SeedStock(t, api.db, stocked.ID, "1")

	w := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/products/"+stocked.ID.String()+"/deletable", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeData[catalogapp.DeletableResponse](t, w)
	assert.False(t, resp.Deletable)
	assert.EqualValues(t, 1, resp.StockMoveLines)

	blocked := testutil.DoJSON(t, api.engine, http.MethodDelete, "/api/v1/products/"+stocked.ID.String(), nil)
	require.Equal(t, http.StatusConflict, blocked.Code)
	assert.Equal(t, "PRODUCT_REFERENCED", testutil.DecodeError(t, blocked).Code)

	deleted := testutil.DoJSON(t, api.engine, http.MethodDelete, "/api/v1/products/"+unused.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	gone := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/products/"+unused.ID.String()+"/deletable", nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", testutil.DecodeError(t, gone).Code)
}

func TestAPI_FinanceEntries(t *testing.T) {
	api := newAPI(t)

	income := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/finance/entries", gin.H{
		"type": "INCOME", "amount": "1.500,00", "category": "Otros", "occurred_at": "2026-05-04",
	})
	require.Equal(t, http.StatusCreated, income.Code, income.Body.String())

	expense := testutil.DoJSON(t, api.engine, http.MethodPost, "/api/v1/finance/entries", gin.H{
		"type": "EXPENSE", "amount": "400,00", "category": "Luz", "payment_method": "TRANSFER", "occurred_at": "2026-05-20",
	})
	require.Equal(t, http.StatusCreated, expense.Code, expense.Body.String())
	expenseEntry := testutil.DecodeData[financeapp.LedgerEntryResponse](t, expense)

	summary := func(query string) financeapp.TotalsResponse {
		w := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/finance/summary?"+query, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return testutil.DecodeData[financeapp.TotalsResponse](t, w)
	}

	totals := summary("from=2026-05-01&to=2026-05-31")
	assert.Equal(t, "1500.00", totals.Income.String())
	assert.Equal(t, "400.00", totals.Expense.String())
	assert.Equal(t, "1100.00", totals.Net.String())

	cash := summary("from=2026-05-01&to=2026-05-31&payment_method=CASH")
	assert.Equal(t, "0.00", cash.Expense.String())

	first := summary("from=2026-05-01&to=2026-05-04")
	assert.Equal(t, "1500.00", first.Income.String())

	reversed := testutil.DoJSON(t, api.engine, http.MethodGet, "/api/v1/finance/summary?from=2026-05-31&to=2026-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, reversed.Code)

	del := testutil.DoJSON(t, api.engine, http.MethodDelete, "/api/v1/finance/entries/"+expenseEntry.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, del.Code, del.Body.String())
	assert.Equal(t, "0.00", summary("from=2026-05-01&to=2026-05-31").Expense.String())
}

func TestAPI_NotFoundAndBadIDs(t *testing.T) {
	api := newAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{"unknown sale", http.MethodGet, "/sales/" + testUUID, http.StatusNotFound, "SALE_NOT_FOUND"},
		{"unknown invoice", http.MethodGet, "/purchase-invoices/" + testUUID, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{"unknown quote", http.MethodPost, "/quotes/" + testUUID + "/convert", http.StatusNotFound, "QUOTE_NOT_FOUND"},
		{"malformed id", http.MethodGet, "/sales/abc", http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoJSON(t, api.engine, tt.method, "/api/v1"+tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, testutil.DecodeError(t, w).Code)
		})
	}
}

func TestAPI_Health(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		api := newAPI(t)
		w := testutil.DoJSON(t, api.engine, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","database":"up","version":"test"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("database down", func(t *testing.T) {
		engine := NewEngine(EngineConfig{
			Logger: zap.NewNop(),
			Health: handler.NewHealthHandler(fakePinger{err: errors.New("connection refused")}, "test"),
		})
		w := testutil.DoJSON(t, engine, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"degraded","database":"down","version":"test"}`, w.Body.String())
	})
}

const testUUID = "6f1c2d7e-9a4b-4c1e-8f2a-0b3c4d5e6f70"
