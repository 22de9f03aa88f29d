package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/infrastructure/cache"
	"github.com/erp/zidsync/internal/infrastructure/config"
	"github.com/erp/zidsync/internal/infrastructure/localerp"
	"github.com/erp/zidsync/internal/infrastructure/logger"
	"github.com/erp/zidsync/internal/infrastructure/persistence"
	"github.com/erp/zidsync/internal/infrastructure/scheduler"
	"github.com/erp/zidsync/internal/infrastructure/zid"
	"github.com/erp/zidsync/internal/interfaces/http/handler"
	"github.com/erp/zidsync/internal/interfaces/http/middleware"
	"github.com/erp/zidsync/internal/interfaces/http/router"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

//	@title			Zid Sync API
//	@version		1.0
//	@description	Synchronization connector between a local ERP and the Zid e-commerce platform.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Zid Sync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	connectorRepo := persistence.NewGormConnectorRepository(db.DB)
	queueRepo := persistence.NewGormQueueRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	attributeRepo := persistence.NewGormAttributeRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	mirrorCustomerRepo := persistence.NewGormMirrorCustomerRepository(db.DB)
	reverseReasonRepo := persistence.NewGormReverseReasonRepository(db.DB)
	cartRepo := persistence.NewGormAbandonedCartRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	webhookSubRepo := persistence.NewGormWebhookSubscriptionRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	reverseRepo := persistence.NewGormReverseRepository(db.DB)
	mappingRepo := persistence.NewGormMappingRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)

	// Local ERP adapters share the connection with the mirror tables
	erpCatalog := localerp.NewCatalog(db.DB)
	erpDirectory := localerp.NewCustomerDirectory(db.DB)
	erpOrderDesk := localerp.NewOrderDesk(db.DB)
	erpStockLedger := localerp.NewStockLedger(db.DB)

	// Zid API client; credentials come from each connector per call
	zidClient := zid.NewClient(zid.Config{
		Timeout:  cfg.Zid.RequestTimeout,
		MaxPages: cfg.Zid.MaxPages,
	}, log.Named("zid"))

	// Webhook dedup store: Redis when configured, in-memory otherwise
	dedupeStore, err := cache.NewIdempotencyStore(cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize webhook dedup store", zap.Error(err))
	}
	defer func() {
		if err := dedupeStore.Close(); err != nil {
			log.Error("Error closing dedup store", zap.Error(err))
		}
	}()

	// Initialize application services
	connectorService := appsync.NewConnectorService(connectorRepo, zidClient, log.Named("connector"))
	importService := appsync.NewImportService(connectorRepo, queueRepo, zidClient, log.Named("import"))
	orderService := appsync.NewOrderService(
		connectorRepo, orderRepo, productRepo,
		erpCatalog, erpDirectory, erpOrderDesk,
		zidClient, log.Named("order"))
	reverseService := appsync.NewReverseService(
		connectorRepo, orderRepo, reverseRepo, reverseReasonRepo,
		zidClient, log.Named("reverse"))
	stockService := appsync.NewStockSyncService(
		connectorRepo, mappingRepo, syncLogRepo, productRepo, locationRepo,
		erpStockLedger, zidClient, log.Named("stock"))
	catalogSyncService := appsync.NewCatalogSyncService(
		connectorRepo, categoryRepo, attributeRepo, locationRepo,
		reverseReasonRepo, cartRepo, payoutRepo,
		zidClient, log.Named("catalog"))
	webhookService := appsync.NewWebhookService(
		connectorRepo, webhookSubRepo, productRepo,
		importService, orderService,
		dedupeStore, zidClient, log.Named("webhook"))
	webhookService.SetDedupeTTL(cfg.Webhook.DedupTTL)

	// Queue line handlers, one per model type
	registry := queue.NewHandlerRegistry()
	registry.Register(appsync.NewProductLineHandler(productRepo, variantRepo, log.Named("product_lines")))
	registry.Register(appsync.NewCustomerLineHandler(mirrorCustomerRepo, log.Named("customer_lines")))
	registry.Register(appsync.NewOrderLineHandler(orderService, log.Named("order_lines")))
	processor := appsync.NewQueueProcessor(queueRepo, connectorRepo, registry, log.Named("queues"))

	// Background sync jobs
	schedCfg := scheduler.DefaultSyncSchedulerConfig()
	schedCfg.Enabled = cfg.Scheduler.Enabled
	schedCfg.QueueInterval = cfg.Scheduler.QueueInterval
	schedCfg.QueueBatchLimit = cfg.Scheduler.QueuesPerRun
	schedCfg.ImportInterval = cfg.Scheduler.ImportInterval
	schedCfg.CatalogInterval = cfg.Scheduler.CatalogInterval
	schedCfg.JanitorInterval = cfg.Scheduler.CleanupInterval
	schedCfg.LockTimeout = cfg.Zid.LockTimeout
	schedCfg.EmptyQueueAge = cfg.Scheduler.EmptyQueueRetention
	schedCfg.CompletedQueueAge = cfg.Scheduler.DoneQueueRetention
	schedCfg.StockLogAge = cfg.Scheduler.SyncLogRetention

	var syncScheduler *scheduler.SyncScheduler
	if schedCfg.Enabled {
		syncScheduler, err = scheduler.NewSyncScheduler(
			schedCfg, connectorRepo, importService, processor,
			catalogSyncService, connectorService, stockService,
			log.Named("scheduler"))
		if err != nil {
			log.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
	} else {
		log.Info("Sync scheduler disabled")
	}

	// Initialize HTTP handlers
	connectorHandler := handler.NewConnectorHandler(connectorService, webhookService, cfg.Webhook.BaseURL)
	importHandler := handler.NewImportHandler(importService, processor, queueRepo)
	orderHandler := handler.NewOrderHandler(orderService, connectorService)
	reverseOrderHandler := handler.NewReverseOrderHandler(reverseService)
	stockHandler := handler.NewStockHandler(stockService)
	mirrorHandler := handler.NewMirrorHandler(
		productRepo, variantRepo, categoryRepo, attributeRepo, locationRepo,
		mirrorCustomerRepo, reverseReasonRepo, cartRepo, payoutRepo,
		catalogSyncService)
	systemHandler := handler.NewSystemHandler(version)
	webhookHandler := handler.NewWebhookHandler(webhookService, log.Named("webhook_http"))

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Separate rate limit budgets: one for the management API, a
	// stricter one for the public webhook receiver so delivery bursts
	// cannot crowd out operators.
	apiLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	webhookLimiter := middleware.NewRateLimiter(cfg.HTTP.WebhookRateLimitRequests, cfg.HTTP.WebhookRateLimitWindow)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.RateLimit(apiLimiter))
	r.UsePublic(middleware.WebhookRateLimit(webhookLimiter))

	r.Register(systemHandler)
	r.Register(connectorHandler)
	r.Register(importHandler)
	r.Register(mirrorHandler)
	r.Register(orderHandler)
	r.Register(reverseOrderHandler)
	r.Register(stockHandler)
	r.RegisterPublic(webhookHandler)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if syncScheduler != nil {
		if err := syncScheduler.Stop(ctx); err != nil {
			log.Error("Sync scheduler shutdown incomplete", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
