package persistence

import (
	"context"
	"errors"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements LedgerRepository using GORM.
// Queries skip soft-deleted rows through gorm.DeletedAt.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Create appends an entry
func (r *GormLedgerRepository) Create(ctx context.Context, entry *finance.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(models.LedgerEntryFromDomain(entry)).Error
}

// FindByID finds an active entry
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.LedgerEntry, error) {
	var model models.FinanceLedgerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, finance.ErrLedgerEntryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference lists active entries written for a document
func (r *GormLedgerRepository) FindByReference(ctx context.Context, refType finance.ReferenceType, refID uuid.UUID) ([]finance.LedgerEntry, error) {
	var rows []models.FinanceLedgerModel
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", string(refType), refID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(rows), nil
}

// FindActive lists active entries in [From, To), optionally of one payment method
func (r *GormLedgerRepository) FindActive(ctx context.Context, filter finance.LedgerFilter) ([]finance.LedgerEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.FinanceLedgerModel{})
	if !filter.From.IsZero() {
		query = query.Where("occurred_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("occurred_at < ?", filter.To)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod.String())
	}
	var rows []models.FinanceLedgerModel
	if err := query.Order("occurred_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(rows), nil
}

// MarkDeleted soft-deletes the entry
func (r *GormLedgerRepository) MarkDeleted(ctx context.Context, entry *finance.LedgerEntry) error {
	result := r.db.WithContext(ctx).Delete(&models.FinanceLedgerModel{}, "id = ?", entry.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return finance.ErrLedgerEntryNotFound
	}
	return nil
}

func toLedgerEntries(rows []models.FinanceLedgerModel) []finance.LedgerEntry {
	out := make([]finance.LedgerEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormLedgerRepository implements LedgerRepository
var _ finance.LedgerRepository = (*GormLedgerRepository)(nil)
