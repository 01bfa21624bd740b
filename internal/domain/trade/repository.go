package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRepository persists sales with their lines
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindByIDForUpdate locks the sale header row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	// Save updates the header and replaces all lines
	Save(ctx context.Context, sale *Sale) error
}

// QuoteRepository persists quotes with their lines
type QuoteRepository interface {
	Create(ctx context.Context, quote *Quote) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Quote, error)
	Save(ctx context.Context, quote *Quote) error
}

// PurchaseInvoiceRepository persists invoices with lines and payments
type PurchaseInvoiceRepository interface {
	Create(ctx context.Context, inv *PurchaseInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseInvoice, error)
	// FindByIDForUpdate locks the invoice header row and loads lines and payments
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseInvoice, error)
	// Save updates the header and replaces all lines
	Save(ctx context.Context, inv *PurchaseInvoice) error
	// SaveStatus updates status and paid_at only
	SaveStatus(ctx context.Context, inv *PurchaseInvoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsNumber checks (supplier, number) uniqueness, ignoring excludeID when set
	ExistsNumber(ctx context.Context, supplierID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)
	CreatePayment(ctx context.Context, payment *PurchaseInvoicePayment) error
	// FindPendingDueBy lists pending invoices whose due date is on or before the given day
	FindPendingDueBy(ctx context.Context, day time.Time) ([]PurchaseInvoice, error)
}
