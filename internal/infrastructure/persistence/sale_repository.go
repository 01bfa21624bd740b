package persistence

import (
	"context"
	"errors"

	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts the sale header and its lines
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Create(models.SaleFromDomain(sale)).Error
}

// FindByID finds a sale with its lines
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate locks the sale row and loads its lines
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormSaleRepository) find(db *gorm.DB, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrSaleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save updates the header and replaces the lines
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	model := models.SaleFromDomain(sale)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.SaleModel{}).Where("id = ?", sale.ID).Updates(map[string]any{
		"total":          model.Total,
		"status":         model.Status,
		"payment_method": model.PaymentMethod,
		"updated_at":     model.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrSaleNotFound
	}
	if err := db.Where("sale_id = ?", sale.ID).Delete(&models.SaleLineModel{}).Error; err != nil {
		return err
	}
	if len(model.Lines) == 0 {
		return nil
	}
	return db.Create(&model.Lines).Error
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
