package handler

import (
	"fmt"

	tradeapp "github.com/ferreteria/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sale and quote conversion endpoints
type SaleHandler struct {
	BaseHandler
	saleService  *tradeapp.SaleService
	quoteService *tradeapp.QuoteService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService, quoteService *tradeapp.QuoteService) *SaleHandler {
	return &SaleHandler{
		saleService:  saleService,
		quoteService: quoteService,
	}
}

// CartItemRequest is one cart line. Quantity is a locale decimal string.
type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Uom       string `json:"uom" binding:"max=20"`
	Quantity  string `json:"quantity" binding:"required"`
}

// ConfirmSaleRequest is the body of POST /sales
type ConfirmSaleRequest struct {
	Items         []CartItemRequest `json:"items" binding:"required,dive"`
	PaymentMethod string            `json:"payment_method" binding:"max=16"`
}

// AdjustSaleLineRequest is the desired quantity of a product
type AdjustSaleLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
}

// AdjustSaleRequest is the body of PUT /sales/:id/lines
type AdjustSaleRequest struct {
	Lines []AdjustSaleLineRequest `json:"lines" binding:"required,dive"`
}

// ConvertQuoteResponse reports the sale created from a quote
type ConvertQuoteResponse struct {
	QuoteID string `json:"quote_id"`
	SaleID  string `json:"sale_id"`
}

// Confirm records a cart as a confirmed sale
// POST /api/v1/sales
func (h *SaleHandler) Confirm(c *gin.Context) {
	var req ConfirmSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	var errs fieldErrors
	appReq := tradeapp.ConfirmSaleRequest{
		Items:         make([]tradeapp.CartItem, len(req.Items)),
		PaymentMethod: req.PaymentMethod,
	}
	for i, item := range req.Items {
		appReq.Items[i] = tradeapp.CartItem{
			ProductID: errs.uuid(fmt.Sprintf("items[%d].product_id", i), item.ProductID),
			Uom:       item.Uom,
			Quantity:  errs.quantity(fmt.Sprintf("items[%d].quantity", i), item.Quantity),
		}
	}
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	sale, err := h.saleService.ConfirmSale(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Get returns a sale with its lines
// GET /api/v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Adjust replaces the lines of a confirmed sale
// PUT /api/v1/sales/:id/lines
func (h *SaleHandler) Adjust(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AdjustSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	var errs fieldErrors
	appReq := tradeapp.AdjustSaleRequest{Lines: make([]tradeapp.AdjustSaleLine, len(req.Lines))}
	for i, line := range req.Lines {
		appReq.Lines[i] = tradeapp.AdjustSaleLine{
			ProductID: errs.uuid(fmt.Sprintf("lines[%d].product_id", i), line.ProductID),
			Quantity:  errs.quantity(fmt.Sprintf("lines[%d].quantity", i), line.Quantity),
		}
	}
	if len(errs) > 0 {
		h.InvalidFields(c, errs)
		return
	}

	sale, err := h.saleService.AdjustSale(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// ConvertQuote turns a draft or sent quote into a sale
// POST /api/v1/quotes/:id/convert
func (h *SaleHandler) ConvertQuote(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	saleID, err := h.quoteService.ConvertQuoteToSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ConvertQuoteResponse{QuoteID: id.String(), SaleID: saleID.String()})
}
