package models

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinanceLedgerModel is one money movement. Manual rows are soft-deleted.
type FinanceLedgerModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OccurredAt    time.Time       `gorm:"not null;index"`
	Type          string          `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Category      string          `gorm:"type:varchar(100)"`
	ReferenceType string          `gorm:"type:varchar(20);not null;index:idx_ledger_reference,priority:1"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index:idx_ledger_reference,priority:2"`
	PaymentMethod string          `gorm:"type:varchar(10);not null"`
	Notes         string          `gorm:"type:text"`
	DeletedAt     gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (FinanceLedgerModel) TableName() string {
	return "finance_ledger"
}

// ToDomain converts the persistence model to a domain LedgerEntry.
func (m *FinanceLedgerModel) ToDomain() *finance.LedgerEntry {
	e := &finance.LedgerEntry{
		ID:            m.ID,
		OccurredAt:    m.OccurredAt,
		Type:          finance.EntryType(m.Type),
		Amount:        valueobject.NewMoney(m.Amount),
		Category:      m.Category,
		ReferenceType: finance.ReferenceType(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		PaymentMethod: finance.PaymentMethod(m.PaymentMethod),
		Notes:         m.Notes,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		e.DeletedAt = &t
	}
	return e
}

// LedgerEntryFromDomain creates a persistence model from a domain LedgerEntry.
func LedgerEntryFromDomain(e *finance.LedgerEntry) *FinanceLedgerModel {
	m := &FinanceLedgerModel{
		ID:            e.ID,
		OccurredAt:    e.OccurredAt,
		Type:          string(e.Type),
		Amount:        e.Amount.Amount(),
		Category:      e.Category,
		ReferenceType: string(e.ReferenceType),
		ReferenceID:   e.ReferenceID,
		PaymentMethod: e.PaymentMethod.String(),
		Notes:         e.Notes,
	}
	if e.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}
	return m
}
