package partner

import (
	"context"
	"strings"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrSupplierNotFound is returned when a supplier id does not resolve
var ErrSupplierNotFound = shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")

// Supplier issues purchase invoices
type Supplier struct {
	shared.BaseEntity
	Name   string
	TaxID  string
	Active bool
}

// NewSupplier creates an active supplier
func NewSupplier(name, taxID string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name cannot be empty")
	}
	return &Supplier{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		TaxID:      strings.TrimSpace(taxID),
		Active:     true,
	}, nil
}

// SupplierRepository looks up the supplier of a purchase invoice
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
}
