package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func manualEntry() *finance.LedgerEntry {
	return &finance.LedgerEntry{ID: uuid.New(), ReferenceType: finance.ReferenceManual}
}

func markDeleted(ctx context.Context, entry *finance.LedgerEntry) func(appshared.TransactionalRepositories) error {
	return func(repos appshared.TransactionalRepositories) error {
		return repos.LedgerRepo().MarkDeleted(ctx, entry)
	}
}

func TestGormTransactionScope_Retry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries serialization failures", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		core, recorded := observer.New(zapcore.WarnLevel)
		scope := NewGormTransactionScope(db.DB, WithRetryBackoff(time.Millisecond), WithScopeLogger(zap.New(core)))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "finance_ledger" SET "deleted_at"`).
			WillReturnError(&pgconn.PgError{Code: pgSerializationFailure})
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "finance_ledger" SET "deleted_at"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, scope.Execute(ctx, markDeleted(ctx, manualEntry())))
		assert.NoError(t, mock.ExpectationsWereMet())
		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "retrying transaction", recorded.All()[0].Message)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(db.DB, WithMaxRetries(1), WithRetryBackoff(time.Millisecond))

		for i := 0; i < 2; i++ {
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "finance_ledger"`).
				WillReturnError(&pgconn.PgError{Code: pgDeadlockDetected})
			mock.ExpectRollback()
		}

		err := scope.Execute(ctx, markDeleted(ctx, manualEntry()))
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, pgDeadlockDetected, pgErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("domain errors are not retried", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(db.DB)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "finance_ledger"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := scope.Execute(ctx, markDeleted(ctx, manualEntry()))
		assert.ErrorIs(t, err, finance.ErrLedgerEntryNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops waiting when the context is cancelled", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(db.DB, WithRetryBackoff(time.Hour))
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "finance_ledger"`).
			WillReturnError(&pgconn.PgError{Code: pgSerializationFailure})
		mock.ExpectRollback()

		err := scope.Execute(cctx, markDeleted(cctx, manualEntry()))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestGormPurchaseInvoiceRepository_FindByIDForUpdate(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	mock.MatchExpectationsInOrder(false)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "purchase_invoices" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_number", "status", "total"}).
			AddRow(id, "A-1", "PENDING", "121.00"))
	mock.ExpectQuery(`SELECT \* FROM "purchase_invoice_lines"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id"}))
	mock.ExpectQuery(`SELECT \* FROM "purchase_invoice_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id"}))

	inv, err := NewGormPurchaseInvoiceRepository(db.DB).FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "A-1", inv.InvoiceNumber)
	assert.Equal(t, trade.InvoiceStatusPending, inv.Status)
	assert.Equal(t, "121.00", inv.Total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPurchaseInvoiceRepository_NotFound(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "purchase_invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewGormPurchaseInvoiceRepository(db.DB).FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, trade.ErrInvoiceNotFound)
}

func TestErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation}
	tests := []struct {
		name      string
		err       error
		unique    bool
		retryable bool
	}{
		{"translated duplicate", gorm.ErrDuplicatedKey, true, false},
		{"raw unique violation", unique, true, false},
		{"wrapped unique violation", fmt.Errorf("create invoice: %w", unique), true, false},
		{"serialization failure", &pgconn.PgError{Code: pgSerializationFailure}, false, true},
		{"wrapped deadlock", fmt.Errorf("lock: %w", &pgconn.PgError{Code: pgDeadlockDetected}), false, true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false, false},
		{"plain error", errors.New("connection reset"), false, false},
		{"nil", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, isUniqueViolation(tt.err))
			assert.Equal(t, tt.retryable, isRetryable(tt.err))
		})
	}
}
