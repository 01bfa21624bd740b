package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/ferreteria/backend/internal/application/catalog"
	financeapp "github.com/ferreteria/backend/internal/application/finance"
	inventoryapp "github.com/ferreteria/backend/internal/application/inventory"
	appshared "github.com/ferreteria/backend/internal/application/shared"
	tradeapp "github.com/ferreteria/backend/internal/application/trade"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/infrastructure/cache"
	"github.com/ferreteria/backend/internal/infrastructure/config"
	"github.com/ferreteria/backend/internal/infrastructure/logger"
	"github.com/ferreteria/backend/internal/infrastructure/persistence"
	"github.com/ferreteria/backend/internal/infrastructure/scheduler"
	"github.com/ferreteria/backend/internal/infrastructure/telemetry"
	"github.com/ferreteria/backend/internal/interfaces/http/handler"
	"github.com/ferreteria/backend/internal/interfaces/http/middleware"
	"github.com/ferreteria/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewFromSettings(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	providers, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		ExportLogs:        cfg.Telemetry.ExportLogs,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = providers.Shutdown(context.Background())
	}()
	log = providers.BridgeLogger(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Telemetry.LogLevel))

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiler.BasicAuthUser,
		BasicAuthPassword: cfg.Profiler.BasicAuthPassword,
		ProfileTypes:      cfg.Profiler.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.Running() {
		providers.EnableSpanProfiles()
	}

	log.Info("Starting ferreteria backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentGorm(db.DB, telemetry.GormConfig{
			DBName:        cfg.Database.DBName,
			WithVariables: cfg.Telemetry.DBLogFullSQL,
		}); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}

	metrics, err := telemetry.NewLedgerMetrics(providers.Meter())
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	txScope := persistence.NewGormTransactionScope(db.DB,
		persistence.WithMaxRetries(cfg.Engine.TxMaxRetries),
		persistence.WithRetryBackoff(cfg.Engine.TxRetryBackoff),
		persistence.WithScopeLogger(log.Named("tx")),
	)
	storeZone, err := appshared.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal("Failed to load store time zone", zap.Error(err))
	}
	opts := appshared.Options{
		DefaultPaymentMethod: finance.PaymentMethod(cfg.Engine.DefaultPaymentMethod),
		Logger:               log,
		Metrics:              metrics,
		Location:             storeZone,
	}

	stockService := inventoryapp.NewStockService(txScope, opts)
	checkCfg := scheduler.DefaultConsistencyCheckConfig()
	checkCfg.Enabled = cfg.Engine.ConsistencyCheckEnabled
	checkCfg.Interval = cfg.Engine.ConsistencyCheckInterval
	checker, err := scheduler.NewConsistencyChecker(checkCfg, stockService, log.Named("consistency"))
	if err != nil {
		log.Fatal("Failed to create consistency checker", zap.Error(err))
	}

	handlers := router.Handlers{
		Sale: handler.NewSaleHandler(
			tradeapp.NewSaleService(txScope, opts),
			tradeapp.NewQuoteService(txScope, opts),
		),
		PurchaseInvoice: handler.NewPurchaseInvoiceHandler(
			tradeapp.NewPurchaseInvoiceService(txScope, opts),
			financeapp.NewPaymentService(txScope, opts),
		),
		Stock:   handler.NewStockHandler(stockService),
		Product: handler.NewProductHandler(catalogapp.NewProductService(txScope, opts)),
		Finance: handler.NewFinanceHandler(financeapp.NewLedgerService(txScope, opts)),
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	idempotency, err := cache.NewIdempotencyStore(startCtx, cfg.Redis,
		cache.WithLogger(log),
		cache.WithMemoryFallback(cfg.App.Env != "production"),
	)
	cancelStart()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engineCfg := router.EngineConfig{
		Logger:         log,
		Handlers:       handlers,
		Health:         handler.NewHealthHandler(db, version),
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Engine.IdempotencyTTL,
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Profiling:      profiler.Running(),
	}
	if providers.Enabled() {
		engineCfg.TracingServiceName = cfg.Telemetry.ServiceName
	}
	engine := router.NewEngine(engineCfg)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	if err := checker.Start(context.Background()); err != nil {
		log.Fatal("Failed to start consistency checker", zap.Error(err))
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	if err := checker.Stop(ctx); err != nil {
		log.Error("Error stopping consistency checker", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
