package persistence

import (
	"context"
	"errors"

	"github.com/ferreteria/backend/internal/domain/partner"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// supplierRepository only reads: suppliers are maintained outside the ledger
// engine and are looked up when an invoice is registered.
type supplierRepository struct {
	db *gorm.DB
}

var _ partner.SupplierRepository = supplierRepository{}

func (r supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	err := r.db.WithContext(ctx).Take(&model, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, partner.ErrSupplierNotFound
	case err != nil:
		return nil, err
	}
	return model.ToDomain(), nil
}
