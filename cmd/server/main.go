package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billingapp "github.com/wastebill/backend/internal/application/billing"
	partnerapp "github.com/wastebill/backend/internal/application/partner"
	"github.com/wastebill/backend/internal/domain/shared"
	"github.com/wastebill/backend/internal/infrastructure/cache"
	"github.com/wastebill/backend/internal/infrastructure/config"
	"github.com/wastebill/backend/internal/infrastructure/logger"
	"github.com/wastebill/backend/internal/infrastructure/persistence"
	"github.com/wastebill/backend/internal/infrastructure/scheduler"
	"github.com/wastebill/backend/internal/interfaces/http/handler"
	"github.com/wastebill/backend/internal/interfaces/http/middleware"
	"github.com/wastebill/backend/internal/interfaces/http/router"
)

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

	log.Info("Starting Wastebill Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	collectorRepo := persistence.NewGormCollectorRepository(db.DB)
	itemRepo := persistence.NewGormBillingItemRepository(db.DB)
	summaryRepo := persistence.NewGormBillingSummaryRepository(db.DB)
	ruleRepo := persistence.NewGormCommissionRuleRepository(db.DB)
	invoiceRepo := persistence.NewGormTenantInvoiceRepository(db.DB)

	// Run lock: Redis when configured, single-instance in-memory fallback
	var runLock shared.RunLock
	if cfg.Redis.Host != "" {
		redisLock, err := cache.NewRedisRunLock(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		runLock = redisLock
		log.Info("Using Redis run lock", zap.String("addr", cfg.Redis.Addr()))
	} else {
		runLock = cache.NewInMemoryRunLock()
		log.Warn("Redis not configured, using in-memory run lock; do not run multiple instances")
	}

	// Billing settings
	if cfg.Billing.DefaultTaxRate > 0 {
		billingapp.DefaultTaxRate = decimal.NewFromFloat(cfg.Billing.DefaultTaxRate)
	}
	if cfg.Billing.RunLockTTL > 0 {
		billingapp.RunLockTTL = cfg.Billing.RunLockTTL
	}

	// Initialize application services
	orgService := partnerapp.NewOrganizationService(orgRepo, log)
	collectorService := partnerapp.NewCollectorService(orgRepo, collectorRepo, log)
	itemService := billingapp.NewItemService(collectorRepo, itemRepo, log)
	summaryService := billingapp.NewSummaryService(orgRepo, collectorRepo, itemRepo, summaryRepo, runLock, log)
	workflowService := billingapp.NewSummaryWorkflowService(summaryRepo, log)
	ruleService := billingapp.NewRuleService(ruleRepo, log)
	invoiceService := billingapp.NewInvoiceService(orgRepo, collectorRepo, summaryRepo, ruleRepo, invoiceRepo, runLock, log)

	// Monthly summary batch trigger
	trigger, err := scheduler.NewBillingCronTrigger(
		scheduler.BillingCronTriggerConfig{
			Enabled:             cfg.Scheduler.Enabled,
			MonthlyCronSchedule: cfg.Scheduler.MonthlyCronSchedule,
			JobTimeout:          cfg.Scheduler.JobTimeout,
		},
		summaryService,
		orgRepo,
		log,
	)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	if err := trigger.Start(context.Background()); err != nil {
		log.Fatal("Failed to start billing trigger", zap.Error(err))
	}

	// Initialize handlers
	billingHandler := handler.NewBillingHandler(itemService, summaryService, workflowService, invoiceService, ruleService)
	partnerHandler := handler.NewPartnerHandler(orgService, collectorService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

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

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/healthz", systemHandler.Health)

	// Setup API routes
	r := router.NewRouter(engine)
	r.Register(billingHandler)
	r.Register(partnerHandler)
	r.Register(systemHandler)
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

	if err := trigger.Stop(ctx); err != nil {
		log.Error("Error stopping billing trigger", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
