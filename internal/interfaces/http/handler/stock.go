package handler

import (
	"strconv"

	inventoryapp "github.com/ferreteria/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// StockHandler handles on-hand stock queries and manual adjustments
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// AdjustStockRequest sets the counted quantity of a product
type AdjustStockRequest struct {
	Quantity string `json:"quantity" binding:"required"`
	Notes    string `json:"notes" binding:"max=500"`
}

// Get returns the on-hand quantity of a product
// GET /api/v1/stock/:product_id
func (h *StockHandler) Get(c *gin.Context) {
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}

	stock, err := h.stockService.GetStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Adjust brings on-hand stock to the counted quantity
// POST /api/v1/stock/:product_id/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}
	var body AdjustStockRequest
	if !h.bindJSON(c, &body) {
		return
	}
	var errs fieldErrors
	target := errs.quantity("quantity", body.Quantity)
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	stock, err := h.stockService.AdjustStockTo(c.Request.Context(), productID, target, body.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Adjustments lists the latest manual adjustments of a product
// GET /api/v1/stock/:product_id/adjustments?limit=20
func (h *StockHandler) Adjustments(c *gin.Context) {
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			h.InvalidFields(c, fieldErrors{{Field: "limit", Message: "Must be a number between 1 and 200"}})
			return
		}
		limit = n
	}

	moves, err := h.stockService.RecentManualAdjustments(c.Request.Context(), productID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, moves)
}

// Consistency lists products whose on-hand quantity differs from the sum
// of their stock moves. An empty list means the ledger is consistent.
// GET /api/v1/stock/consistency
func (h *StockHandler) Consistency(c *gin.Context) {
	discrepancies, err := h.stockService.VerifyConsistency(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, discrepancies)
}
