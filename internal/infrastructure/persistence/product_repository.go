package persistence

import (
	"context"
	"errors"

	"github.com/ferreteria/backend/internal/domain/catalog"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product with its unit prices
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("UomPrices").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads products keyed by id
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	out := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Preload("UomPrices").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// Save upserts the product and replaces its unit prices
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductFromDomain(product)
	prices := model.UomPrices
	model.UomPrices = nil

	db := r.db.WithContext(ctx)
	if err := db.Save(model).Error; err != nil {
		return err
	}
	if err := db.Where("product_id = ?", product.ID).Delete(&models.ProductUomPriceModel{}).Error; err != nil {
		return err
	}
	if len(prices) == 0 {
		return nil
	}
	return db.Create(&prices).Error
}

// Delete hard-deletes a product and its unit prices
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.ProductUomPriceModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// CountReferences counts ledger rows pointing at the product
func (r *GormProductRepository) CountReferences(ctx context.Context, id uuid.UUID) (catalog.ProductReferences, error) {
	var refs catalog.ProductReferences
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.SaleLineModel{}).Where("product_id = ?", id).Count(&refs.SaleLines).Error; err != nil {
		return refs, err
	}
	if err := db.Model(&models.PurchaseInvoiceLineModel{}).Where("product_id = ?", id).Count(&refs.InvoiceLines).Error; err != nil {
		return refs, err
	}
	if err := db.Model(&models.StockMoveLineModel{}).Where("product_id = ?", id).Count(&refs.StockMoveLines).Error; err != nil {
		return refs, err
	}
	return refs, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
