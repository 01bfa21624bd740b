package handler

import (
	"fmt"
	"time"

	financeapp "github.com/ferreteria/backend/internal/application/finance"
	tradeapp "github.com/ferreteria/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// PurchaseInvoiceHandler handles supplier invoices and their payments
type PurchaseInvoiceHandler struct {
	BaseHandler
	invoiceService *tradeapp.PurchaseInvoiceService
	paymentService *financeapp.PaymentService
}

// NewPurchaseInvoiceHandler creates a new PurchaseInvoiceHandler
func NewPurchaseInvoiceHandler(invoiceService *tradeapp.PurchaseInvoiceService, paymentService *financeapp.PaymentService) *PurchaseInvoiceHandler {
	return &PurchaseInvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// InvoiceLineRequest is one purchased product. UnitCost uses the 1.234,56
// money format; Quantity and VatRate are locale decimals.
type InvoiceLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
	UnitCost  string `json:"unit_cost" binding:"required"`
	VatRate   string `json:"vat_rate"`
}

// InvoiceRequest is the body of POST and PUT /purchase-invoices
type InvoiceRequest struct {
	SupplierID    string               `json:"supplier_id" binding:"required"`
	InvoiceNumber string               `json:"invoice_number" binding:"required,max=50"`
	InvoiceDate   string               `json:"invoice_date" binding:"required"`
	DueDate       *string              `json:"due_date"`
	Notes         string               `json:"notes" binding:"max=2000"`
	Lines         []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// DueDateRequest sets or clears the due date
type DueDateRequest struct {
	DueDate *string `json:"due_date"`
}

// PayInvoiceRequest settles the whole balance
type PayInvoiceRequest struct {
	PaidAt        string `json:"paid_at"`
	PaymentMethod string `json:"payment_method" binding:"max=16"`
}

// AddPaymentRequest records one installment
type AddPaymentRequest struct {
	PaidAt        string `json:"paid_at"`
	Amount        string `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"max=16"`
	Notes         string `json:"notes" binding:"max=500"`
}

func (r InvoiceRequest) toApp() (tradeapp.InvoiceRequest, fieldErrors) {
	var errs fieldErrors
	req := tradeapp.InvoiceRequest{
		SupplierID:    errs.uuid("supplier_id", r.SupplierID),
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   errs.date("invoice_date", r.InvoiceDate),
		DueDate:       errs.optionalDate("due_date", r.DueDate),
		Notes:         r.Notes,
		Lines:         make([]tradeapp.InvoiceLineInput, len(r.Lines)),
	}
	for i, l := range r.Lines {
		req.Lines[i] = tradeapp.InvoiceLineInput{
			ProductID: errs.uuid(fmt.Sprintf("lines[%d].product_id", i), l.ProductID),
			Quantity:  errs.quantity(fmt.Sprintf("lines[%d].quantity", i), l.Quantity),
			UnitCost:  errs.money(fmt.Sprintf("lines[%d].unit_cost", i), l.UnitCost),
			VatRate:   errs.rate(fmt.Sprintf("lines[%d].vat_rate", i), l.VatRate),
		}
	}
	return req, errs
}

// Create records a pending invoice and brings its goods into stock
// POST /api/v1/purchase-invoices
func (h *PurchaseInvoiceHandler) Create(c *gin.Context) {
	var body InvoiceRequest
	if !h.bindJSON(c, &body) {
		return
	}
	req, errs := body.toApp()
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get returns an invoice with lines and payments
// GET /api/v1/purchase-invoices/:id
func (h *PurchaseInvoiceHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Update replaces a pending, unpaid invoice
// PUT /api/v1/purchase-invoices/:id
func (h *PurchaseInvoiceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body InvoiceRequest
	if !h.bindJSON(c, &body) {
		return
	}
	req, errs := body.toApp()
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete removes an invoice without payments and reverses its stock
// DELETE /api/v1/purchase-invoices/:id
func (h *PurchaseInvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateDueDate sets or clears the due date
// PATCH /api/v1/purchase-invoices/:id/due-date
func (h *PurchaseInvoiceHandler) UpdateDueDate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body DueDateRequest
	if !h.bindJSON(c, &body) {
		return
	}
	var errs fieldErrors
	due := errs.optionalDate("due_date", body.DueDate)
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	inv, err := h.invoiceService.UpdateDueDate(c.Request.Context(), id, due)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Pay settles the outstanding balance in one payment
// POST /api/v1/purchase-invoices/:id/pay
func (h *PurchaseInvoiceHandler) Pay(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body PayInvoiceRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &body) {
		return
	}
	var errs fieldErrors
	paidAt := errs.instant("paid_at", body.PaidAt, time.Now())
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	balance, err := h.paymentService.PayInvoice(c.Request.Context(), id, paidAt, body.PaymentMethod)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// AddPayment records an installment against the balance
// POST /api/v1/purchase-invoices/:id/payments
func (h *PurchaseInvoiceHandler) AddPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body AddPaymentRequest
	if !h.bindJSON(c, &body) {
		return
	}
	var errs fieldErrors
	req := financeapp.AddPaymentRequest{
		PaidAt:        errs.instant("paid_at", body.PaidAt, time.Now()),
		Amount:        errs.money("amount", body.Amount),
		Notes:         body.Notes,
		PaymentMethod: body.PaymentMethod,
	}
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	balance, err := h.paymentService.AddInvoicePayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, balance)
}

// Balance returns total, paid and outstanding amounts
// GET /api/v1/purchase-invoices/:id/balance
func (h *PurchaseInvoiceHandler) Balance(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	balance, err := h.paymentService.GetInvoiceBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Alerts counts pending invoices due tomorrow and overdue. The optional
// "today" query parameter (YYYY-MM-DD) replaces the store's current date.
// GET /api/v1/purchase-invoices/alerts
func (h *PurchaseInvoiceHandler) Alerts(c *gin.Context) {
	day := h.invoiceService.DayOf(time.Now())
	if raw := c.Query("today"); raw != "" {
		var errs fieldErrors
		day = errs.date("today", raw)
		if len(errs) > 0 {
			h.InvalidFields(c, errs)
			return
		}
	}

	alerts, err := h.invoiceService.Alerts(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}
