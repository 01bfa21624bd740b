package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerFilter narrows ledger queries. Zero values mean "no bound".
type LedgerFilter struct {
	From          time.Time
	To            time.Time
	PaymentMethod PaymentMethod
}

// LedgerRepository persists ledger entries. Entries are never updated except
// for soft deletion of manual ones.
type LedgerRepository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]LedgerEntry, error)
	// FindActive lists non-deleted entries matching the filter, oldest first
	FindActive(ctx context.Context, filter LedgerFilter) ([]LedgerEntry, error)
	MarkDeleted(ctx context.Context, entry *LedgerEntry) error
}
