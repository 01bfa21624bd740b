package router

import (
	"github.com/ferreteria/backend/internal/interfaces/http/handler"
)

// Handlers groups every API handler
type Handlers struct {
	Sale            *handler.SaleHandler
	PurchaseInvoice *handler.PurchaseInvoiceHandler
	Stock           *handler.StockHandler
	Product         *handler.ProductHandler
	Finance         *handler.FinanceHandler
}

// DomainGroups builds the route groups of the API. Static segments such as
// /alerts and /consistency are registered before their :id siblings.
func DomainGroups(h Handlers) []*DomainGroup {
	sales := NewDomainGroup("sales", "/sales").
		POST("", h.Sale.Confirm).
		GET("/:id", h.Sale.Get).
		PUT("/:id/lines", h.Sale.Adjust)

	quotes := NewDomainGroup("quotes", "/quotes").
		POST("/:id/convert", h.Sale.ConvertQuote)

	invoices := NewDomainGroup("purchase-invoices", "/purchase-invoices").
		POST("", h.PurchaseInvoice.Create).
		GET("/alerts", h.PurchaseInvoice.Alerts).
		GET("/:id", h.PurchaseInvoice.Get).
		PUT("/:id", h.PurchaseInvoice.Update).
		DELETE("/:id", h.PurchaseInvoice.Delete).
		PATCH("/:id/due-date", h.PurchaseInvoice.UpdateDueDate).
		POST("/:id/pay", h.PurchaseInvoice.Pay).
		POST("/:id/payments", h.PurchaseInvoice.AddPayment).
		GET("/:id/balance", h.PurchaseInvoice.Balance)

	stock := NewDomainGroup("stock", "/stock").
		GET("/consistency", h.Stock.Consistency).
		GET("/:product_id", h.Stock.Get).
		POST("/:product_id/adjust", h.Stock.Adjust).
		GET("/:product_id/adjustments", h.Stock.Adjustments)

	products := NewDomainGroup("products", "/products").
		DELETE("/:id", h.Product.Delete).
		GET("/:id/deletable", h.Product.Deletable)

	finance := NewDomainGroup("finance", "/finance").
		GET("/summary", h.Finance.Summary).
		GET("/series", h.Finance.Series).
		POST("/entries", h.Finance.RecordEntry).
		DELETE("/entries/:id", h.Finance.DeleteEntry)

	return []*DomainGroup{sales, quotes, invoices, stock, products, finance}
}
