package handler

import (
	"errors"
	"net/http"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/inventory"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/infrastructure/logger"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/ferreteria/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InvalidFields sends a 400 listing the request fields that could not be converted
func (h *BaseHandler) InvalidFields(c *gin.Context, fields fieldErrors) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", middleware.GetRequestID(c), fields))
}

// HandleError converts an application error into a response. Domain errors
// keep their code; stock shortfalls and overpayments carry their figures in
// details. Anything else is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	requestID := middleware.GetRequestID(c)

	var stockErr *inventory.InsufficientStockError
	var overErr *finance.OverpaymentError
	var domainErr *shared.DomainError

	switch {
	case errors.As(err, &stockErr):
		resp := dto.NewErrorResponseWithRequestID(shared.ErrInsufficientStock.Code, stockErr.Error(), requestID)
		details := make([]dto.ShortfallDetail, len(stockErr.Shortfalls))
		for i, s := range stockErr.Shortfalls {
			details[i] = dto.ShortfallDetail{
				ProductID:   s.ProductID.String(),
				ProductName: s.ProductName,
				Requested:   s.Requested.String(),
				Available:   s.Available.String(),
			}
		}
		resp.Error.Details = details
		c.JSON(dto.GetHTTPStatus(resp.Error.Code), resp)

	case errors.As(err, &overErr):
		resp := dto.NewErrorResponseWithRequestID(finance.ErrOverpayment.Code, overErr.Error(), requestID)
		resp.Error.Details = dto.OverpaymentDetail{
			Amount:  overErr.Amount.String(),
			Balance: overErr.Balance.String(),
		}
		c.JSON(dto.GetHTTPStatus(resp.Error.Code), resp)

	case errors.As(err, &domainErr):
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))

	default:
		logger.L(c.Request.Context()).Error("request failed", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An internal error occurred")
	}
}

// bindJSON decodes the body into obj and runs its binding rules.
// It writes the error response and returns false when that fails.
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &validationErrs):
		middleware.HandleValidationError(c, err)
	case errors.As(err, &tooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	}
	return false
}

// pathID parses a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.InvalidFields(c, fieldErrors{{Field: name, Message: "Invalid UUID format"}})
		return uuid.Nil, false
	}
	return id, true
}
