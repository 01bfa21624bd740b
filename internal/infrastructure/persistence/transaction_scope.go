package persistence

import (
	"context"
	"time"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/partner"
	"github.com/ferreteria/backend/internal/domain/trade"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every call to Execute is one database transaction; serialization failures
// and deadlocks re-run the whole function.
type GormTransactionScope struct {
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// ScopeOption configures a GormTransactionScope
type ScopeOption func(*GormTransactionScope)

// WithMaxRetries sets how many times a transaction lost to a serialization
// failure or deadlock is retried
func WithMaxRetries(n int) ScopeOption {
	return func(s *GormTransactionScope) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the base wait between retries
func WithRetryBackoff(d time.Duration) ScopeOption {
	return func(s *GormTransactionScope) {
		s.backoff = d
	}
}

// WithScopeLogger sets the logger used to report retries
func WithScopeLogger(l *zap.Logger) ScopeOption {
	return func(s *GormTransactionScope) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, opts ...ScopeOption) *GormTransactionScope {
	s := &GormTransactionScope{
		db:         db,
		maxRetries: 3,
		backoff:    20 * time.Millisecond,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormTransactionalRepositories{tx: tx})
		})
		if err == nil || !isRetryable(err) || attempt >= s.maxRetries {
			return err
		}

		wait := s.backoff * time.Duration(attempt+1)
		s.logger.Warn("retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// SupplierRepo returns the supplier repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SupplierRepo() partner.SupplierRepository {
	return supplierRepository{db: r.tx}
}

// StockRepo returns the product stock repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockRepo() inventory.ProductStockRepository {
	return NewGormProductStockRepository(r.tx)
}

// StockMoveRepo returns the stock move repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockMoveRepo() inventory.StockMoveRepository {
	return NewGormStockMoveRepository(r.tx)
}

// SaleRepo returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SaleRepo() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// QuoteRepo returns the quote repository scoped to the current transaction.
func (r *gormTransactionalRepositories) QuoteRepo() trade.QuoteRepository {
	return NewGormQuoteRepository(r.tx)
}

// InvoiceRepo returns the purchase invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InvoiceRepo() trade.PurchaseInvoiceRepository {
	return NewGormPurchaseInvoiceRepository(r.tx)
}

// LedgerRepo returns the finance ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LedgerRepo() finance.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
