package trade

import (
	"time"

	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sale DTOs ====================

// CartItem is one product in a cart. An empty Uom selects the base unit.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Uom       string          `json:"uom"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ConfirmSaleRequest is a validated cart handed to the sale engine
type ConfirmSaleRequest struct {
	Items         []CartItem `json:"items"`
	PaymentMethod string     `json:"payment_method"`
}

// AdjustSaleLine is the desired quantity of a product on a sale
type AdjustSaleLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// AdjustSaleRequest replaces the line set of a confirmed sale
type AdjustSaleRequest struct {
	Lines []AdjustSaleLine `json:"lines"`
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	ProductID        uuid.UUID         `json:"product_id"`
	Uom              string            `json:"uom"`
	Quantity         decimal.Decimal   `json:"quantity"`
	ConversionToBase decimal.Decimal   `json:"conversion_to_base"`
	UnitPrice        valueobject.Money `json:"unit_price"`
	LineTotal        valueobject.Money `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	SoldAt        time.Time          `json:"sold_at"`
	Total         valueobject.Money  `json:"total"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Lines         []SaleLineResponse `json:"lines"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	lines := make([]SaleLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = SaleLineResponse{
			ProductID:        l.ProductID,
			Uom:              l.Uom,
			Quantity:         l.Qty,
			ConversionToBase: l.ConversionToBase,
			UnitPrice:        l.UnitPrice,
			LineTotal:        l.LineTotal,
		}
	}
	return SaleResponse{
		ID:            s.ID,
		SoldAt:        s.SoldAt,
		Total:         s.Total,
		Status:        s.Status.String(),
		PaymentMethod: s.PaymentMethod.String(),
		Lines:         lines,
	}
}

// ==================== Purchase Invoice DTOs ====================

// InvoiceLineInput is one line of an invoice request. VatRate defaults to zero.
type InvoiceLineInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	VatRate   decimal.Decimal `json:"vat_rate"`
}

// InvoiceRequest creates or replaces a purchase invoice
type InvoiceRequest struct {
	SupplierID    uuid.UUID          `json:"supplier_id"`
	InvoiceNumber string             `json:"invoice_number"`
	InvoiceDate   time.Time          `json:"invoice_date"`
	DueDate       *time.Time         `json:"due_date"`
	Notes         string             `json:"notes"`
	Lines         []InvoiceLineInput `json:"lines"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ProductID uuid.UUID         `json:"product_id"`
	Quantity  decimal.Decimal   `json:"quantity"`
	UnitCost  valueobject.Money `json:"unit_cost"`
	VatRate   decimal.Decimal   `json:"vat_rate"`
	NetAmount valueobject.Money `json:"net_amount"`
	VatAmount valueobject.Money `json:"vat_amount"`
	LineTotal valueobject.Money `json:"line_total"`
}

// InvoicePaymentResponse represents an installment in API responses
type InvoicePaymentResponse struct {
	ID            uuid.UUID         `json:"id"`
	PaidAt        time.Time         `json:"paid_at"`
	Amount        valueobject.Money `json:"amount"`
	PaymentMethod string            `json:"payment_method"`
	Notes         string            `json:"notes,omitempty"`
}

// InvoiceResponse represents a purchase invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID                `json:"id"`
	SupplierID    uuid.UUID                `json:"supplier_id"`
	InvoiceNumber string                   `json:"invoice_number"`
	InvoiceDate   time.Time                `json:"invoice_date"`
	DueDate       *time.Time               `json:"due_date,omitempty"`
	Total         valueobject.Money        `json:"total"`
	TotalPaid     valueobject.Money        `json:"total_paid"`
	Balance       valueobject.Money        `json:"balance"`
	Status        string                   `json:"status"`
	PaidAt        *time.Time               `json:"paid_at,omitempty"`
	Notes         string                   `json:"notes,omitempty"`
	Lines         []InvoiceLineResponse    `json:"lines"`
	Payments      []InvoicePaymentResponse `json:"payments"`
}

// ToInvoiceResponse converts a domain PurchaseInvoice to InvoiceResponse
func ToInvoiceResponse(inv *trade.PurchaseInvoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Qty,
			UnitCost:  l.UnitCost,
			VatRate:   l.VatRate,
			NetAmount: l.NetAmount,
			VatAmount: l.VatAmount,
			LineTotal: l.LineTotal,
		}
	}
	payments := make([]InvoicePaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = InvoicePaymentResponse{
			ID:            p.ID,
			PaidAt:        p.PaidAt,
			Amount:        p.Amount,
			PaymentMethod: p.PaymentMethod.String(),
			Notes:         p.Notes,
		}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		SupplierID:    inv.SupplierID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Total:         inv.Total,
		TotalPaid:     inv.TotalPaid(),
		Balance:       inv.Balance(),
		Status:        string(inv.Status),
		PaidAt:        inv.PaidAt,
		Notes:         inv.Notes,
		Lines:         lines,
		Payments:      payments,
	}
}

// InvoiceAlerts counts pending invoices needing attention
type InvoiceAlerts struct {
	DueTomorrow int `json:"due_tomorrow"`
	Overdue     int `json:"overdue"`
}
