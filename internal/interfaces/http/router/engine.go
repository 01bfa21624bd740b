package router

import (
	"time"

	"github.com/ferreteria/backend/internal/infrastructure/logger"
	"github.com/ferreteria/backend/internal/interfaces/http/handler"
	"github.com/ferreteria/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds everything NewEngine needs to serve the API
type EngineConfig struct {
	Logger             *zap.Logger
	Handlers           Handlers
	Health             *handler.HealthHandler
	Idempotency        middleware.IdempotencyStore
	IdempotencyTTL     time.Duration
	CORS               middleware.CORSConfig
	MaxBodySize        int64
	// TracingServiceName enables OpenTelemetry request spans when set
	TracingServiceName string
	Profiling          bool
}

// NewEngine builds the gin engine. Middleware runs in this order: request
// id, tracing, panic recovery, access log, profiling labels, security
// headers, CORS, body limit and, on API routes only, Idempotency-Key
// deduplication.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	if cfg.TracingServiceName != "" {
		engine.Use(middleware.Tracing(cfg.TracingServiceName)...)
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Profiling {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if cfg.Health != nil {
		engine.GET("/health", cfg.Health.Check)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	if cfg.Idempotency != nil {
		r.Use(middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL))
	}
	for _, group := range DomainGroups(cfg.Handlers) {
		r.Register(group)
		log.Debug("API routes registered", zap.String("group", group.Name()), zap.Int("routes", len(group.routes)))
	}
	r.Setup()

	return engine
}
