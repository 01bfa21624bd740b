package dto

import "net/http"

// Transport error codes. Domain codes (PRODUCT_NOT_FOUND, INSUFFICIENT_STOCK,
// ...) are sent unchanged; these cover failures that never reach a service.
const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeRequestTooLarge   = "REQUEST_TOO_LARGE"
	ErrCodeIdempotencyReplay = "IDEMPOTENCY_KEY_REUSED"

	ErrCodeIdempotencyUnavailable = "IDEMPOTENCY_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeInvalidJSON:       http.StatusBadRequest,
	ErrCodeRequestTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeIdempotencyReplay: http.StatusConflict,

	ErrCodeIdempotencyUnavailable: http.StatusServiceUnavailable,

	// Input errors -> 400
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"EMPTY_CART":       http.StatusBadRequest,

	// Missing resources -> 404
	"NOT_FOUND":              http.StatusNotFound,
	"PRODUCT_NOT_FOUND":      http.StatusNotFound,
	"SUPPLIER_NOT_FOUND":     http.StatusNotFound,
	"SALE_NOT_FOUND":         http.StatusNotFound,
	"QUOTE_NOT_FOUND":        http.StatusNotFound,
	"INVOICE_NOT_FOUND":      http.StatusNotFound,
	"LEDGER_ENTRY_NOT_FOUND": http.StatusNotFound,

	// Conflicts with existing data -> 409
	"ALREADY_EXISTS":           http.StatusConflict,
	"DUPLICATE_INVOICE_NUMBER": http.StatusConflict,
	"CONCURRENCY_CONFLICT":     http.StatusConflict,
	"PRODUCT_REFERENCED":       http.StatusConflict,

	// Business rules -> 422
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":    http.StatusUnprocessableEntity,
	"OVERPAYMENT_REJECTED":  http.StatusUnprocessableEntity,
	"ALREADY_PAID":          http.StatusUnprocessableEntity,
	"PRODUCT_INACTIVE":      http.StatusUnprocessableEntity,
	"INVOICE_NOT_EDITABLE":  http.StatusUnprocessableEntity,
	"INVOICE_NOT_DELETABLE": http.StatusUnprocessableEntity,
	"SALE_NOT_ADJUSTABLE":   http.StatusUnprocessableEntity,
	"QUOTE_NOT_CONVERTIBLE": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
