package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_LabelsRequestContext(t *testing.T) {
	labels := map[string]string{}

	router := gin.New()
	router.Use(Profiling())
	router.POST("/api/v1/purchase-invoices/:id/payments", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels[key] = value
			return true
		})
		c.Status(http.StatusCreated)
	})
	router.GET("/health", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels["health."+key] = value
			return true
		})
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/purchase-invoices/7/payments", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/purchase-invoices/:id/payments", labels["route"])
	assert.Equal(t, http.MethodPost, labels["method"])
	assert.Equal(t, "purchase-invoices", labels["resource"])

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	for key := range labels {
		assert.NotContains(t, key, "health.")
	}
}

func TestResourceOf(t *testing.T) {
	tests := map[string]string{
		"/api/v1/sales/:id/lines": "sales",
		"/api/v2/finance/summary": "finance",
		"/stock/:product_id":      "stock",
		"/api/v1/:id":             "",
		"/api/version/items":      "version",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceOf(route), route)
	}
}
