package shared

import (
	"context"

	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/partner"
	"github.com/ferreteria/backend/internal/domain/trade"
)

// TransactionScope runs engine operations atomically.
// Every repository handed to fn shares one database transaction; if fn returns
// an error the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
//
// Stock rows are only written through StockLedger(), which binds the stock and
// move repositories of the same transaction.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	SupplierRepo() partner.SupplierRepository
	StockRepo() inventory.ProductStockRepository
	StockMoveRepo() inventory.StockMoveRepository
	SaleRepo() trade.SaleRepository
	QuoteRepo() trade.QuoteRepository
	InvoiceRepo() trade.PurchaseInvoiceRepository
	LedgerRepo() finance.LedgerRepository
}

// StockLedger returns the stock primitive bound to the transaction's repositories
func StockLedger(repos TransactionalRepositories) *inventory.StockLedger {
	return inventory.NewStockLedger(repos.StockRepo(), repos.StockMoveRepo())
}

// Repositories is a plain holder of repository implementations
type Repositories struct {
	Products  catalog.ProductRepository
	Suppliers partner.SupplierRepository
	Stocks    inventory.ProductStockRepository
	Moves     inventory.StockMoveRepository
	Sales     trade.SaleRepository
	Quotes    trade.QuoteRepository
	Invoices  trade.PurchaseInvoiceRepository
	Ledger    finance.LedgerRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It is useful for unit tests with mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository       { return s.repos.Products }
func (s *NoOpTransactionScope) SupplierRepo() partner.SupplierRepository     { return s.repos.Suppliers }
func (s *NoOpTransactionScope) StockRepo() inventory.ProductStockRepository  { return s.repos.Stocks }
func (s *NoOpTransactionScope) StockMoveRepo() inventory.StockMoveRepository { return s.repos.Moves }
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository               { return s.repos.Sales }
func (s *NoOpTransactionScope) QuoteRepo() trade.QuoteRepository             { return s.repos.Quotes }
func (s *NoOpTransactionScope) InvoiceRepo() trade.PurchaseInvoiceRepository { return s.repos.Invoices }
func (s *NoOpTransactionScope) LedgerRepo() finance.LedgerRepository         { return s.repos.Ledger }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
