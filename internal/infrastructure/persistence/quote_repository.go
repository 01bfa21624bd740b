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

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// Create inserts the quote and its lines
func (r *GormQuoteRepository) Create(ctx context.Context, quote *trade.Quote) error {
	err := r.db.WithContext(ctx).Create(models.QuoteFromDomain(quote)).Error
	if isUniqueViolation(err) {
		return trade.ErrDuplicateQuote
	}
	return err
}

// FindByIDForUpdate locks the quote row and loads its lines
func (r *GormQuoteRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Quote, error) {
	var model models.QuoteModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrQuoteNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save updates the quote header. Lines of a quote are fixed once created.
func (r *GormQuoteRepository) Save(ctx context.Context, quote *trade.Quote) error {
	result := r.db.WithContext(ctx).Model(&models.QuoteModel{}).Where("id = ?", quote.ID).Updates(map[string]any{
		"customer_name":  quote.CustomerName,
		"payment_method": quote.PaymentMethod,
		"status":         string(quote.Status),
		"valid_until":    quote.ValidUntil,
		"sale_id":        quote.SaleID,
		"updated_at":     quote.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrQuoteNotFound
	}
	return nil
}

// Ensure GormQuoteRepository implements QuoteRepository
var _ trade.QuoteRepository = (*GormQuoteRepository)(nil)
