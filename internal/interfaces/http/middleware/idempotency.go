package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/ferreteria/backend/internal/infrastructure/logger"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader names the client supplied key of a mutating request
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 200

// IdempotencyStore claims request keys for a limited time
type IdempotencyStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency rejects a mutating request whose Idempotency-Key was already
// claimed with 409. Keys are scoped by method and path. A request that
// fails (status >= 400) releases its key so the client can retry it.
// Requests without the header pass through unchanged.
func Idempotency(store IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyKeyHeader)
		if header == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		if len(header) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		key := c.Request.Method + " " + c.Request.URL.Path + ":" + header

		ctx, reqLog := logger.WithIdempotencyKey(c.Request.Context(), logger.GetGinLogger(c), header)
		c.Request = c.Request.WithContext(ctx)

		claimed, err := store.Claim(ctx, key, ttl)
		if err != nil {
			reqLog.Error("idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyUnavailable, "Request could not be deduplicated, try again", GetRequestID(c)))
			return
		}
		if !claimed {
			reqLog.Warn("replayed idempotency key rejected")
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyReplay, "A request with this Idempotency-Key was already processed", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				reqLog.Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
