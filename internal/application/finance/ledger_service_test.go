package finance

import (
	"context"
	"testing"
	"time"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/infrastructure/persistence"
	"github.com/ferreteria/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func newLedgerService(t *testing.T) *LedgerService {
	t.Helper()
	scope := persistence.NewGormTransactionScope(testutil.NewSQLiteDB(t))
	return NewLedgerService(scope, appshared.Options{Logger: zap.NewNop()})
}

func TestLedgerService_RecordManualEntry(t *testing.T) {
	ctx := context.Background()
	svc := newLedgerService(t)

	t.Run("normalizes type and method", func(t *testing.T) {
		entry, err := svc.RecordManualEntry(ctx, ManualEntryRequest{
			Type:          " income ",
			Amount:        testutil.Dec("1500"),
			Category:      "Aporte",
			PaymentMethod: "transfer",
			OccurredAt:    at(2026, 5, 4),
		})
		require.NoError(t, err)

		assert.Equal(t, "INCOME", entry.Type)
		assert.Equal(t, "TRANSFER", entry.PaymentMethod)
		assert.Equal(t, string(finance.ReferenceManual), entry.ReferenceType)
		assert.Nil(t, entry.ReferenceID)
		assert.Equal(t, "1500.00", entry.Amount.String())
	})

	t.Run("defaults method and date", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		entry, err := svc.RecordManualEntry(ctx, ManualEntryRequest{Type: "EXPENSE", Amount: testutil.Dec("80")})
		require.NoError(t, err)
		assert.Equal(t, "CASH", entry.PaymentMethod)
		assert.True(t, entry.OccurredAt.After(before))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		tests := []struct {
			name string
			req  ManualEntryRequest
			want error
		}{
			{"unknown type", ManualEntryRequest{Type: "TRANSFER", Amount: testutil.Dec("1")}, shared.ErrInvalidInput},
			{"zero amount", ManualEntryRequest{Type: "INCOME", Amount: testutil.Dec("0")}, finance.ErrInvalidAmount},
			{"negative amount", ManualEntryRequest{Type: "EXPENSE", Amount: testutil.Dec("-3")}, finance.ErrInvalidAmount},
			{"unknown method", ManualEntryRequest{Type: "INCOME", Amount: testutil.Dec("1"), PaymentMethod: "CHEQUE"}, finance.ErrInvalidPaymentMethod},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.RecordManualEntry(ctx, tt.req)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})
}

func TestLedgerService_DeleteManualEntry(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	svc := NewLedgerService(scope, appshared.Options{})

	entry, err := svc.RecordManualEntry(ctx, ManualEntryRequest{Type: "EXPENSE", Amount: testutil.Dec("400"), OccurredAt: at(2026, 5, 20)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteManualEntry(ctx, entry.ID))
	assert.ErrorIs(t, svc.DeleteManualEntry(ctx, entry.ID), finance.ErrLedgerEntryNotFound)
	assert.ErrorIs(t, svc.DeleteManualEntry(ctx, uuid.New()), finance.ErrLedgerEntryNotFound)

	t.Run("document entries cannot be deleted", func(t *testing.T) {
		saleID := uuid.New()
		doc, err := finance.NewLedgerEntry(finance.EntryTypeIncome, valueobject.NewMoney(testutil.Dec("300")), finance.CategorySales,
			finance.ReferenceSale, &saleID, finance.PaymentMethodCash, "")
		require.NoError(t, err)
		require.NoError(t, scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			return repos.LedgerRepo().Create(ctx, doc)
		}))

		err = svc.DeleteManualEntry(ctx, doc.ID)
		assert.ErrorIs(t, err, finance.ErrEntryNotManual)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		rows := testutil.LedgerEntries(t, db, saleID)
		require.Len(t, rows, 1)
		assert.False(t, rows[0].DeletedAt.Valid)
	})
}

func TestLedgerService_SummaryAndSeries(t *testing.T) {
	ctx := context.Background()
	svc := newLedgerService(t)

	for _, req := range []ManualEntryRequest{
		{Type: "INCOME", Amount: testutil.Dec("1000"), OccurredAt: at(2026, 1, 10)},
		{Type: "INCOME", Amount: testutil.Dec("500"), OccurredAt: at(2026, 1, 10), PaymentMethod: "TRANSFER"},
		{Type: "EXPENSE", Amount: testutil.Dec("300"), OccurredAt: at(2026, 1, 25)},
		{Type: "EXPENSE", Amount: testutil.Dec("200"), OccurredAt: at(2026, 2, 3), PaymentMethod: "TRANSFER"},
		{Type: "INCOME", Amount: testutil.Dec("50"), OccurredAt: at(2027, 1, 1)},
	} {
		_, err := svc.RecordManualEntry(ctx, req)
		require.NoError(t, err)
	}
	deleted, err := svc.RecordManualEntry(ctx, ManualEntryRequest{Type: "INCOME", Amount: testutil.Dec("9999"), OccurredAt: at(2026, 1, 10)})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteManualEntry(ctx, deleted.ID))

	t.Run("summary over everything skips deleted entries", func(t *testing.T) {
		totals, err := svc.Summary(ctx, LedgerQuery{})
		require.NoError(t, err)
		assert.Equal(t, "1550.00", totals.Income.String())
		assert.Equal(t, "500.00", totals.Expense.String())
		assert.Equal(t, "1050.00", totals.Net.String())
	})

	t.Run("summary by period and method", func(t *testing.T) {
		totals, err := svc.Summary(ctx, LedgerQuery{
			From:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			To:            time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			PaymentMethod: "cash",
		})
		require.NoError(t, err)
		assert.Equal(t, "1000.00", totals.Income.String())
		assert.Equal(t, "300.00", totals.Expense.String())
		assert.Equal(t, "700.00", totals.Net.String())
	})

	t.Run("empty period is all zeros", func(t *testing.T) {
		totals, err := svc.Summary(ctx, LedgerQuery{
			From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "0.00", totals.Net.String())
	})

	t.Run("daily series", func(t *testing.T) {
		points, err := svc.Series(ctx, LedgerQuery{To: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, "1500.00", points[0].Income.String())
		assert.Equal(t, "-300.00", points[1].Net.String())
		assert.Equal(t, "200.00", points[2].Expense.String())
	})

	t.Run("monthly and yearly series", func(t *testing.T) {
		monthly, err := svc.Series(ctx, LedgerQuery{Granularity: "month"})
		require.NoError(t, err)
		require.Len(t, monthly, 3)
		assert.Equal(t, time.January, monthly[0].Period.Month())
		assert.Equal(t, "1200.00", monthly[0].Net.String())
		assert.Equal(t, "-200.00", monthly[1].Net.String())

		yearly, err := svc.Series(ctx, LedgerQuery{Granularity: "year"})
		require.NoError(t, err)
		require.Len(t, yearly, 2)
		assert.Equal(t, 2026, yearly[0].Period.Year())
		assert.Equal(t, "1000.00", yearly[0].Net.String())
		assert.Equal(t, "50.00", yearly[1].Income.String())
	})

	t.Run("rejects unknown granularity and method", func(t *testing.T) {
		_, err := svc.Series(ctx, LedgerQuery{Granularity: "week"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = svc.Summary(ctx, LedgerQuery{PaymentMethod: "CHEQUE"})
		assert.ErrorIs(t, err, finance.ErrInvalidPaymentMethod)
	})
}

func TestLedgerService_StoreTimezone(t *testing.T) {
	ctx := context.Background()
	loc, err := appshared.LoadLocation("")
	require.NoError(t, err)
	scope := persistence.NewGormTransactionScope(testutil.NewSQLiteDB(t))
	svc := NewLedgerService(scope, appshared.Options{Location: loc})

	// 23:30 on Jan 30 in Buenos Aires, already Jan 31 in UTC
	lateSale := time.Date(2026, 1, 31, 2, 30, 0, 0, time.UTC)
	for _, req := range []ManualEntryRequest{
		{Type: "INCOME", Amount: testutil.Dec("700"), OccurredAt: lateSale},
		{Type: "INCOME", Amount: testutil.Dec("300"), OccurredAt: at(2026, 1, 31)},
	} {
		_, err := svc.RecordManualEntry(ctx, req)
		require.NoError(t, err)
	}

	t.Run("daily buckets follow the local date", func(t *testing.T) {
		points, err := svc.Series(ctx, LedgerQuery{})
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.True(t, points[0].Period.Equal(time.Date(2026, 1, 30, 0, 0, 0, 0, loc)))
		assert.Equal(t, "700.00", points[0].Income.String())
		assert.True(t, points[1].Period.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, loc)))
		assert.Equal(t, "300.00", points[1].Income.String())
	})

	t.Run("period bounds are local calendar days", func(t *testing.T) {
		totals, err := svc.Summary(ctx, LedgerQuery{
			From: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "300.00", totals.Income.String())
	})
}
