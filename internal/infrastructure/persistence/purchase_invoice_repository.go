package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/ferreteria/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseInvoiceRepository implements PurchaseInvoiceRepository using GORM
type GormPurchaseInvoiceRepository struct {
	db *gorm.DB
}

// NewGormPurchaseInvoiceRepository creates a new GormPurchaseInvoiceRepository
func NewGormPurchaseInvoiceRepository(db *gorm.DB) *GormPurchaseInvoiceRepository {
	return &GormPurchaseInvoiceRepository{db: db}
}

// Create inserts the invoice with its lines. A second invoice with the same
// supplier and number is rejected by the unique index.
func (r *GormPurchaseInvoiceRepository) Create(ctx context.Context, inv *trade.PurchaseInvoice) error {
	err := r.db.WithContext(ctx).Omit("Payments").Create(models.PurchaseInvoiceFromDomain(inv)).Error
	if isUniqueViolation(err) {
		return trade.ErrDuplicateInvoice
	}
	return err
}

// FindByID finds an invoice with lines and payments
func (r *GormPurchaseInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate locks the invoice row and loads lines and payments
func (r *GormPurchaseInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPurchaseInvoiceRepository) find(db *gorm.DB, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	var model models.PurchaseInvoiceModel
	if err := db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at, created_at") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrInvoiceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save updates the header and replaces the lines
func (r *GormPurchaseInvoiceRepository) Save(ctx context.Context, inv *trade.PurchaseInvoice) error {
	model := models.PurchaseInvoiceFromDomain(inv)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.PurchaseInvoiceModel{}).Where("id = ?", inv.ID).Updates(map[string]any{
		"supplier_id":    model.SupplierID,
		"invoice_number": model.InvoiceNumber,
		"invoice_date":   model.InvoiceDate,
		"due_date":       model.DueDate,
		"total":          model.Total,
		"status":         model.Status,
		"paid_at":        model.PaidAt,
		"notes":          model.Notes,
		"updated_at":     model.UpdatedAt,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return trade.ErrDuplicateInvoice
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrInvoiceNotFound
	}
	if err := db.Where("invoice_id = ?", inv.ID).Delete(&models.PurchaseInvoiceLineModel{}).Error; err != nil {
		return err
	}
	if len(model.Lines) == 0 {
		return nil
	}
	return db.Create(&model.Lines).Error
}

// SaveStatus updates status and paid_at only
func (r *GormPurchaseInvoiceRepository) SaveStatus(ctx context.Context, inv *trade.PurchaseInvoice) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseInvoiceModel{}).Where("id = ?", inv.ID).Updates(map[string]any{
		"status":     string(inv.Status),
		"paid_at":    inv.PaidAt,
		"updated_at": inv.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrInvoiceNotFound
	}
	return nil
}

// Delete removes the invoice with its lines and payments
func (r *GormPurchaseInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("invoice_id = ?", id).Delete(&models.PurchaseInvoicePaymentModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", id).Delete(&models.PurchaseInvoiceLineModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.PurchaseInvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrInvoiceNotFound
	}
	return nil
}

// ExistsNumber checks whether the supplier already has an invoice with this number
func (r *GormPurchaseInvoiceRepository) ExistsNumber(ctx context.Context, supplierID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseInvoiceModel{}).
		Where("supplier_id = ? AND invoice_number = ?", supplierID, number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreatePayment inserts one installment
func (r *GormPurchaseInvoiceRepository) CreatePayment(ctx context.Context, payment *trade.PurchaseInvoicePayment) error {
	return r.db.WithContext(ctx).Create(models.PaymentFromDomain(payment)).Error
}

// FindPendingDueBy lists pending invoices due on or before the given day
func (r *GormPurchaseInvoiceRepository) FindPendingDueBy(ctx context.Context, day time.Time) ([]trade.PurchaseInvoice, error) {
	end := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).AddDate(0, 0, 1)
	var rows []models.PurchaseInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", string(trade.InvoiceStatusPending), end).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]trade.PurchaseInvoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Ensure GormPurchaseInvoiceRepository implements PurchaseInvoiceRepository
var _ trade.PurchaseInvoiceRepository = (*GormPurchaseInvoiceRepository)(nil)
