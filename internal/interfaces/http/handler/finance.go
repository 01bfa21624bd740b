package handler

import (
	"time"

	financeapp "github.com/ferreteria/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// FinanceHandler handles the finance ledger
type FinanceHandler struct {
	BaseHandler
	ledgerService *financeapp.LedgerService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(ledgerService *financeapp.LedgerService) *FinanceHandler {
	return &FinanceHandler{ledgerService: ledgerService}
}

// ManualEntryRequest is the body of POST /finance/entries
type ManualEntryRequest struct {
	Type          string `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount        string `json:"amount" binding:"required"`
	Category      string `json:"category" binding:"max=100"`
	PaymentMethod string `json:"payment_method" binding:"max=16"`
	OccurredAt    string `json:"occurred_at"`
	Notes         string `json:"notes" binding:"max=500"`
}

// ledgerQuery reads from, to (both inclusive dates), payment_method and
// granularity from the query string
func (h *FinanceHandler) ledgerQuery(c *gin.Context) (financeapp.LedgerQuery, bool) {
	var errs fieldErrors
	q := financeapp.LedgerQuery{
		PaymentMethod: c.Query("payment_method"),
		Granularity:   c.Query("granularity"),
	}
	if raw := c.Query("from"); raw != "" {
		q.From = errs.date("from", raw)
	}
	if raw := c.Query("to"); raw != "" {
		q.To = errs.date("to", raw).AddDate(0, 0, 1)
	}
	if len(errs) == 0 && !q.From.IsZero() && !q.To.IsZero() && !q.From.Before(q.To) {
		errs.add("to", "Must not be before from")
	}
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return q, false
	}
	return q, true
}

// Summary totals income, expense and net for a period
// GET /api/v1/finance/summary?from=2024-01-01&to=2024-01-31&payment_method=CASH
func (h *FinanceHandler) Summary(c *gin.Context) {
	q, ok := h.ledgerQuery(c)
	if !ok {
		return
	}

	totals, err := h.ledgerService.Summary(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// Series buckets the ledger by day, month or year
// GET /api/v1/finance/series?granularity=month
func (h *FinanceHandler) Series(c *gin.Context) {
	q, ok := h.ledgerQuery(c)
	if !ok {
		return
	}

	points, err := h.ledgerService.Series(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// RecordEntry records a manual income or expense
// POST /api/v1/finance/entries
func (h *FinanceHandler) RecordEntry(c *gin.Context) {
	var body ManualEntryRequest
	if !h.bindJSON(c, &body) {
		return
	}
	var errs fieldErrors
	req := financeapp.ManualEntryRequest{
		Type:          body.Type,
		Amount:        errs.money("amount", body.Amount),
		Category:      body.Category,
		PaymentMethod: body.PaymentMethod,
		OccurredAt:    errs.instant("occurred_at", body.OccurredAt, time.Now()),
		Notes:         body.Notes,
	}
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	entry, err := h.ledgerService.RecordManualEntry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// DeleteEntry soft deletes a manual entry
// DELETE /api/v1/finance/entries/:id
func (h *FinanceHandler) DeleteEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteManualEntry(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
