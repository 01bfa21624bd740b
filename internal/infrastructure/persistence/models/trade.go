package models

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate.
type SaleModel struct {
	BaseModel
	SoldAt        time.Time       `gorm:"not null;index"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null"`
	PaymentMethod string          `gorm:"type:varchar(10);not null"`
	Lines         []SaleLineModel `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleLineModel snapshots unit and price of one sold product.
type SaleLineModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo           int             `gorm:"not null"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Uom              string          `gorm:"type:varchar(20);not null"`
	Qty              decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	ConversionToBase decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (SaleLineModel) TableName() string {
	return "sale_lines"
}

// ToDomain converts the persistence model to a domain Sale.
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoldAt:        m.SoldAt,
		Total:         valueobject.NewMoney(m.Total),
		Status:        trade.SaleStatus(m.Status),
		PaymentMethod: finance.PaymentMethod(m.PaymentMethod),
		Lines:         make([]trade.SaleLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		s.Lines[i] = trade.SaleLine{
			ID:               l.ID,
			SaleID:           l.SaleID,
			ProductID:        l.ProductID,
			Uom:              l.Uom,
			Qty:              l.Qty,
			ConversionToBase: l.ConversionToBase,
			UnitPrice:        valueobject.NewMoney(l.UnitPrice),
			LineTotal:        valueobject.NewMoney(l.LineTotal),
		}
	}
	return s
}

// SaleFromDomain creates a persistence model from a domain Sale.
func SaleFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{
		SoldAt:        s.SoldAt,
		Total:         s.Total.Amount(),
		Status:        s.Status.String(),
		PaymentMethod: s.PaymentMethod.String(),
		Lines:         make([]SaleLineModel, len(s.Lines)),
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	for i, l := range s.Lines {
		m.Lines[i] = SaleLineModel{
			ID:               l.ID,
			SaleID:           s.ID,
			LineNo:           i + 1,
			ProductID:        l.ProductID,
			Uom:              l.Uom,
			Qty:              l.Qty,
			ConversionToBase: l.ConversionToBase,
			UnitPrice:        l.UnitPrice.Amount(),
			LineTotal:        l.LineTotal.Amount(),
		}
	}
	return m
}

// QuoteModel is the persistence model for the Quote aggregate.
type QuoteModel struct {
	BaseModel
	Number        string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName  string           `gorm:"type:varchar(200)"`
	PaymentMethod string           `gorm:"type:varchar(10)"`
	Status        string           `gorm:"type:varchar(20);not null"`
	ValidUntil    *time.Time       `gorm:"type:date"`
	SaleID        *uuid.UUID       `gorm:"type:uuid"`
	Lines         []QuoteLineModel `gorm:"foreignKey:QuoteID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// QuoteLineModel is one quoted product.
type QuoteLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	QuoteID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Uom       string          `gorm:"type:varchar(20)"`
	Qty       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (QuoteLineModel) TableName() string {
	return "quote_lines"
}

// ToDomain converts the persistence model to a domain Quote.
func (m *QuoteModel) ToDomain() *trade.Quote {
	q := &trade.Quote{
		BaseEntity:    m.BaseModel.ToDomain(),
		Number:        m.Number,
		CustomerName:  m.CustomerName,
		PaymentMethod: m.PaymentMethod,
		Status:        trade.QuoteStatus(m.Status),
		ValidUntil:    m.ValidUntil,
		SaleID:        m.SaleID,
		Lines:         make([]trade.QuoteLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		q.Lines[i] = trade.QuoteLine{
			ID:        l.ID,
			QuoteID:   l.QuoteID,
			ProductID: l.ProductID,
			Uom:       l.Uom,
			Qty:       l.Qty,
			UnitPrice: valueobject.NewMoney(l.UnitPrice),
		}
	}
	return q
}

// QuoteFromDomain creates a persistence model from a domain Quote.
func QuoteFromDomain(q *trade.Quote) *QuoteModel {
	m := &QuoteModel{
		Number:        q.Number,
		CustomerName:  q.CustomerName,
		PaymentMethod: q.PaymentMethod,
		Status:        string(q.Status),
		ValidUntil:    q.ValidUntil,
		SaleID:        q.SaleID,
		Lines:         make([]QuoteLineModel, len(q.Lines)),
	}
	m.FromDomainBaseEntity(q.BaseEntity)
	for i, l := range q.Lines {
		m.Lines[i] = QuoteLineModel{
			ID:        l.ID,
			QuoteID:   q.ID,
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Uom:       l.Uom,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice.Amount(),
		}
	}
	return m
}

// PurchaseInvoiceModel is the persistence model for the PurchaseInvoice aggregate.
// (supplier_id, invoice_number) is unique.
type PurchaseInvoiceModel struct {
	BaseModel
	SupplierID    uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_supplier_number,priority:1"`
	InvoiceNumber string                        `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_supplier_number,priority:2"`
	InvoiceDate   time.Time                     `gorm:"type:date;not null"`
	DueDate       *time.Time                    `gorm:"type:date;index"`
	Total         decimal.Decimal               `gorm:"type:decimal(14,2);not null"`
	Status        string                        `gorm:"type:varchar(20);not null;index"`
	PaidAt        *time.Time                    `gorm:"type:date"`
	Notes         string                        `gorm:"type:text"`
	Lines         []PurchaseInvoiceLineModel    `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
	Payments      []PurchaseInvoicePaymentModel `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseInvoiceModel) TableName() string {
	return "purchase_invoices"
}

// PurchaseInvoiceLineModel is one received product.
type PurchaseInvoiceLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Qty       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	VatRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	NetAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	VatAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseInvoiceLineModel) TableName() string {
	return "purchase_invoice_lines"
}

// PurchaseInvoicePaymentModel is one installment against an invoice.
type PurchaseInvoicePaymentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaidAt        time.Time       `gorm:"type:date;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Notes         string          `gorm:"type:text"`
	PaymentMethod string          `gorm:"type:varchar(10);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseInvoicePaymentModel) TableName() string {
	return "purchase_invoice_payments"
}

// ToDomain converts the persistence model to a domain PurchaseInvoice.
func (m *PurchaseInvoiceModel) ToDomain() *trade.PurchaseInvoice {
	inv := &trade.PurchaseInvoice{
		BaseEntity:    m.BaseModel.ToDomain(),
		SupplierID:    m.SupplierID,
		InvoiceNumber: m.InvoiceNumber,
		InvoiceDate:   m.InvoiceDate,
		DueDate:       m.DueDate,
		Total:         valueobject.NewMoney(m.Total),
		Status:        trade.InvoiceStatus(m.Status),
		PaidAt:        m.PaidAt,
		Notes:         m.Notes,
		Lines:         make([]trade.PurchaseInvoiceLine, len(m.Lines)),
		Payments:      make([]trade.PurchaseInvoicePayment, len(m.Payments)),
	}
	for i, l := range m.Lines {
		inv.Lines[i] = trade.PurchaseInvoiceLine{
			ID:        l.ID,
			InvoiceID: l.InvoiceID,
			ProductID: l.ProductID,
			Qty:       l.Qty,
			UnitCost:  valueobject.NewMoney(l.UnitCost),
			VatRate:   l.VatRate,
			NetAmount: valueobject.NewMoney(l.NetAmount),
			VatAmount: valueobject.NewMoney(l.VatAmount),
			LineTotal: valueobject.NewMoney(l.LineTotal),
		}
	}
	for i, p := range m.Payments {
		inv.Payments[i] = trade.PurchaseInvoicePayment{
			ID:            p.ID,
			InvoiceID:     p.InvoiceID,
			PaidAt:        p.PaidAt,
			Amount:        valueobject.NewMoney(p.Amount),
			Notes:         p.Notes,
			PaymentMethod: finance.PaymentMethod(p.PaymentMethod),
		}
	}
	return inv
}

// PurchaseInvoiceFromDomain creates a persistence model from a domain
// PurchaseInvoice. Payments are written separately and are not mapped.
func PurchaseInvoiceFromDomain(inv *trade.PurchaseInvoice) *PurchaseInvoiceModel {
	m := &PurchaseInvoiceModel{
		SupplierID:    inv.SupplierID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Total:         inv.Total.Amount(),
		Status:        string(inv.Status),
		PaidAt:        inv.PaidAt,
		Notes:         inv.Notes,
		Lines:         make([]PurchaseInvoiceLineModel, len(inv.Lines)),
	}
	m.FromDomainBaseEntity(inv.BaseEntity)
	for i, l := range inv.Lines {
		m.Lines[i] = PurchaseInvoiceLineModel{
			ID:        l.ID,
			InvoiceID: inv.ID,
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Qty:       l.Qty,
			UnitCost:  l.UnitCost.Amount(),
			VatRate:   l.VatRate,
			NetAmount: l.NetAmount.Amount(),
			VatAmount: l.VatAmount.Amount(),
			LineTotal: l.LineTotal.Amount(),
		}
	}
	return m
}

// PaymentFromDomain creates a persistence model from a domain payment.
func PaymentFromDomain(p *trade.PurchaseInvoicePayment) *PurchaseInvoicePaymentModel {
	return &PurchaseInvoicePaymentModel{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		PaidAt:        p.PaidAt,
		Amount:        p.Amount.Amount(),
		Notes:         p.Notes,
		PaymentMethod: p.PaymentMethod.String(),
	}
}
