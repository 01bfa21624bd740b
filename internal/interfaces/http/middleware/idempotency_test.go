package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ferreteria/backend/internal/infrastructure/cache"
	"github.com/ferreteria/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newIdempotentRouter(store IdempotencyStore, status *int, seenKey *string) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Idempotency(store, time.Hour))
	handler := func(c *gin.Context) {
		if seenKey != nil {
			*seenKey = logger.GetIdempotencyKey(c.Request.Context())
		}
		c.Status(*status)
	}
	router.POST("/sales", handler)
	router.GET("/sales", handler)
	return router
}

func post(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("rejects a replayed key", func(t *testing.T) {
		store := cache.NewMemoryStore(0)
		status := http.StatusCreated
		var seen string
		router := newIdempotentRouter(store, &status, &seen)

		first := post(router, "sale-1")
		second := post(router, "sale-1")

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, "sale-1", seen)
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Contains(t, second.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	})

	t.Run("different keys both pass", func(t *testing.T) {
		store := cache.NewMemoryStore(0)
		status := http.StatusCreated
		router := newIdempotentRouter(store, &status, nil)

		assert.Equal(t, http.StatusCreated, post(router, "sale-1").Code)
		assert.Equal(t, http.StatusCreated, post(router, "sale-2").Code)
	})

	t.Run("failed request releases the key", func(t *testing.T) {
		store := cache.NewMemoryStore(0)
		status := http.StatusUnprocessableEntity
		router := newIdempotentRouter(store, &status, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, post(router, "sale-1").Code)

		status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, post(router, "sale-1").Code)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("requests without a key pass through", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		status := http.StatusCreated
		router := newIdempotentRouter(store, &status, nil)

		assert.Equal(t, http.StatusCreated, post(router, "").Code)
		assert.Equal(t, http.StatusCreated, post(router, "").Code)
		store.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reads are not deduplicated", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		status := http.StatusOK
		router := newIdempotentRouter(store, &status, nil)

		req := httptest.NewRequest(http.MethodGet, "/sales", nil)
		req.Header.Set(IdempotencyKeyHeader, "sale-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		store.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure answers 503", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("Claim", mock.Anything, "POST /sales:sale-1", time.Hour).Return(false, errors.New("connection refused"))
		status := http.StatusCreated
		router := newIdempotentRouter(store, &status, nil)

		w := post(router, "sale-1")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "IDEMPOTENCY_UNAVAILABLE")
		store.AssertExpectations(t)
	})
}
