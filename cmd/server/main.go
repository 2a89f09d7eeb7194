package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/pesobook/backend/internal/application/ledger"
	"github.com/pesobook/backend/internal/application/registry"
	"github.com/pesobook/backend/internal/infrastructure/config"
	"github.com/pesobook/backend/internal/infrastructure/logger"
	"github.com/pesobook/backend/internal/infrastructure/persistence"
	"github.com/pesobook/backend/internal/interfaces/http/handler"
	"github.com/pesobook/backend/internal/interfaces/http/middleware"
	"github.com/pesobook/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
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

	log.Info("Starting PesoBook Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
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
	log.Info("Database connected successfully")

	// Initialize repositories
	entityRepo := persistence.NewGormEntityRepository(db.DB)
	walletRepo := persistence.NewGormWalletAccountRepository(db.DB)
	envelopeRepo := persistence.NewGormBudgetEnvelopeRepository(db.DB)
	creditAccountRepo := persistence.NewGormCreditAccountRepository(db.DB)
	loanRepo := persistence.NewGormLoanRecordRepository(db.DB)
	incomeStreamRepo := persistence.NewGormIncomeStreamRepository(db.DB)
	transactionRepo := persistence.NewGormFinanceTransactionRepository(db.DB)

	// Transaction scope binds posting operations into a single database transaction
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	postingService := ledgerapp.NewPostingService(txScope)
	reversalService := ledgerapp.NewReversalService(txScope)
	queryService := ledgerapp.NewTransactionQueryService(transactionRepo)

	entityService := registry.NewEntityService(entityRepo)
	walletService := registry.NewWalletService(txScope, walletRepo, postingService)
	envelopeService := registry.NewEnvelopeService(envelopeRepo)
	creditAccountService := registry.NewCreditAccountService(creditAccountRepo, walletRepo)
	loanService := registry.NewLoanService(loanRepo)
	incomeStreamService := registry.NewIncomeStreamService(incomeStreamRepo)

	// Initialize HTTP handlers
	transactionHandler := handler.NewTransactionHandler(postingService, reversalService, queryService)
	walletHandler := handler.NewWalletHandler(walletService)
	envelopeHandler := handler.NewEnvelopeHandler(envelopeService, queryService)
	entityHandler := handler.NewEntityHandler(entityService)
	creditAccountHandler := handler.NewCreditAccountHandler(creditAccountService)
	loanHandler := handler.NewLoanHandler(loanService)
	incomeStreamHandler := handler.NewIncomeStreamHandler(incomeStreamService, queryService)
	systemHandler := handler.NewSystemHandler()

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

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply owner scope middleware to API routes.
	// Configure skip paths for public endpoints.
	authConfig := middleware.AuthContextConfig{
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
	}
	r.Use(middleware.AuthContextWithConfig(authConfig))

	// Register domain route groups
	r.Register(entityHandler).
		Register(walletHandler).
		Register(envelopeHandler).
		Register(creditAccountHandler).
		Register(loanHandler).
		Register(incomeStreamHandler).
		Register(transactionHandler).
		Register(systemHandler)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
