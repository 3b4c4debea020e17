package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/nextstock/backend/internal/application/catalog"
	identityapp "github.com/nextstock/backend/internal/application/identity"
	inventoryapp "github.com/nextstock/backend/internal/application/inventory"
	partnerapp "github.com/nextstock/backend/internal/application/partner"
	printingapp "github.com/nextstock/backend/internal/application/printing"
	registerapp "github.com/nextstock/backend/internal/application/register"
	reportapp "github.com/nextstock/backend/internal/application/report"
	salesapp "github.com/nextstock/backend/internal/application/sales"
	settingsapp "github.com/nextstock/backend/internal/application/settings"
	syncapp "github.com/nextstock/backend/internal/application/sync"
	syncdomain "github.com/nextstock/backend/internal/domain/sync"
	"github.com/nextstock/backend/internal/infrastructure/auth"
	"github.com/nextstock/backend/internal/infrastructure/cache"
	"github.com/nextstock/backend/internal/infrastructure/config"
	"github.com/nextstock/backend/internal/infrastructure/event"
	"github.com/nextstock/backend/internal/infrastructure/logger"
	"github.com/nextstock/backend/internal/infrastructure/persistence"
	"github.com/nextstock/backend/internal/infrastructure/printing"
	"github.com/nextstock/backend/internal/infrastructure/realtime"
	"github.com/nextstock/backend/internal/infrastructure/scheduler"
	"github.com/nextstock/backend/internal/infrastructure/storage"
	"github.com/nextstock/backend/internal/infrastructure/telemetry"
	"github.com/nextstock/backend/internal/interfaces/http/handler"
	"github.com/nextstock/backend/internal/interfaces/http/middleware"
	"github.com/nextstock/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			NextStock POS Backend API
//	@version		1.0
//	@description	Point-of-sale and inventory backend: catalog, per-store stock, checkout, proformas, cash sessions and offline sync.

//	@contact.name	API Support
//	@contact.url	https://github.com/nextstock/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is stamped at build time via -ldflags "-X main.version=..."
var version = "dev"

// settingsCacheTTL bounds how stale a cached store configuration can get
const settingsCacheTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting NextStock backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Database with zap-backed GORM logging
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// OpenTelemetry: traces, metrics, logs and continuous profiling
	var posMetrics *telemetry.POSMetrics
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer shutdownProvider(tracerProvider.Shutdown, log, "tracer")

		meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			log.Fatal("Failed to initialize metrics", zap.Error(err))
		}
		defer shutdownProvider(meterProvider.Shutdown, log, "meter")

		loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			log.Fatal("Failed to initialize log export", zap.Error(err))
		}
		defer shutdownProvider(loggerProvider.Shutdown, log, "logger")
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return loggerProvider.WrapZapCore(core, cfg.App.Name)
		}))

		profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
		if err != nil {
			log.Warn("Profiler unavailable", zap.Error(err))
		} else if profiler.IsEnabled() {
			tracerProvider.EnableSpanProfiles()
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Warn("Failed to stop profiler", zap.Error(err))
				}
			}()
		}

		if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}

		meter := meterProvider.Meter("github.com/nextstock/backend")
		if sqlDB, err := db.DB.DB(); err == nil {
			poolMetrics, err := telemetry.NewDBPoolMetrics(meter, sqlDB, log)
			if err != nil {
				log.Warn("Failed to create pool metrics", zap.Error(err))
			} else {
				poolMetrics.Start(ctx)
				defer poolMetrics.Stop()
			}
		}

		posMetrics, err = telemetry.NewPOSMetrics(meter, telemetry.POSMetricsConfig{
			Provider: persistence.NewHealthStats(db.DB),
			Logger:   log,
		})
		if err != nil {
			log.Warn("Failed to create business metrics", zap.Error(err))
		} else {
			posMetrics.StartCollection(ctx)
			defer posMetrics.StopCollection()
		}
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	stockItemRepo := persistence.NewGormStockItemRepository(db.DB)
	stockMovementRepo := persistence.NewGormStockMovementRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	proformaRepo := persistence.NewGormProformaRepository(db.DB)
	cashSessionRepo := persistence.NewGormCashSessionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	storeSettingsRepo := persistence.NewGormStoreSettingsRepository(db.DB)
	changeLogRepo := persistence.NewGormChangeLogRepository(db.DB)
	printJobRepo := persistence.NewGormPrintJobRepository(db.DB)
	salesReportRepo := persistence.NewGormSalesReportRepository(db.DB)
	inventoryReportRepo := persistence.NewGormInventoryReportRepository(db.DB)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Redis backs the settings cache, sync idempotency and token revocation;
	// single-node deployments fall back to in-process equivalents.
	var (
		settingsCache    settingsapp.SettingsCache
		idempotencyStore syncdomain.IdempotencyStore
		tokenBlacklist   auth.TokenBlacklist
	)
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory fallbacks", zap.Error(err))
		settingsCache = cache.NewInMemorySettingsCache(settingsCacheTTL)
		idempotencyStore = cache.NewInMemoryIdempotencyStore(cfg.Sync.IdempotencyTTL)
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		defer func() {
			_ = redisClient.Close()
		}()
		settingsCache = cache.NewRedisSettingsCache(redisClient, settingsCacheTTL)
		idempotencyStore = cache.NewRedisIdempotencyStore(redisClient, cfg.Sync.IdempotencyTTL)
		tokenBlacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	}

	// Application services
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	productImportService := catalogapp.NewImportService(productRepo, categoryRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	customerService := partnerapp.NewCustomerService(customerRepo)
	storeService := partnerapp.NewStoreService(storeRepo)
	stockService := inventoryapp.NewStockService(stockItemRepo, stockMovementRepo)
	settingsService := settingsapp.NewSettingsService(storeSettingsRepo, log)
	settingsService.SetCache(settingsCache)
	sessionService := registerapp.NewSessionService(cashSessionRepo, storeSettingsRepo)
	approvalService := identityapp.NewApprovalService(userRepo, roleRepo, identityapp.ApprovalServiceConfig{
		MaxPinAttempts:  cfg.Register.PinMaxAttempts,
		PinLockDuration: cfg.Register.PinLockDuration,
	}, log)
	sessionService.SetApprovalVerifier(approvalService)
	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, tokenBlacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Register.LoginMaxAttempts,
		LockDuration:     cfg.Register.LoginLockDuration,
	}, log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	roleService := identityapp.NewRoleService(roleRepo, log)
	saleService := salesapp.NewSaleService(saleRepo, productRepo, customerRepo, cashSessionRepo, storeSettingsRepo, stockService)
	saleService.SetApprovalVerifier(approvalService)
	proformaService := salesapp.NewProformaService(proformaRepo, saleRepo, productRepo, customerRepo, cashSessionRepo, storeSettingsRepo, stockService, log)
	reportService := reportapp.NewReportService(salesReportRepo, inventoryReportRepo)
	syncService := syncapp.NewSyncService(changeLogRepo, idempotencyStore, saleService, stockService, log)

	var printService *printingapp.PrintService
	if cfg.Printing.Enabled {
		composer, err := printing.NewHTMLComposer()
		if err != nil {
			log.Fatal("Failed to load print templates", zap.Error(err))
		}
		renderer := printing.NewChromeRenderer(cfg.Printing, log)
		archive, err := storage.NewS3Archive(cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to configure document archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("Could not ensure archive bucket", zap.Error(err))
		}
		printService = printingapp.NewPrintService(printJobRepo, saleRepo, proformaRepo, storeRepo, settingsService, composer, renderer, archive, log)
	} else {
		log.Info("PDF printing disabled")
	}

	// Event bus wires the bounded contexts: sales drive stock deduction and
	// session totals, stock changes feed the live stream and the change log.
	eventBus := event.NewInMemoryEventBus(log)
	hub := realtime.NewHub(cfg.Realtime, log)
	eventBus.Subscribe(inventoryapp.NewSaleStockHandler(stockService, log))
	eventBus.Subscribe(inventoryapp.NewProformaStockHandler(stockService, log))
	eventBus.Subscribe(registerapp.NewSaleTotalsHandler(sessionService, log))
	eventBus.Subscribe(syncapp.NewChangeRecorder(changeLogRepo, log))
	eventBus.Subscribe(hub)
	if posMetrics != nil {
		eventBus.Subscribe(telemetry.NewPOSEventRecorder(posMetrics))
	}

	productService.SetEventPublisher(eventBus)
	categoryService.SetEventPublisher(eventBus)
	customerService.SetEventPublisher(eventBus)
	storeService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)
	settingsService.SetEventPublisher(eventBus)
	sessionService.SetEventPublisher(eventBus)
	saleService.SetEventPublisher(eventBus)
	proformaService.SetEventPublisher(eventBus)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	if err := hub.Start(); err != nil {
		log.Fatal("Failed to start stream hub", zap.Error(err))
	}
	defer hub.Stop()

	// Background maintenance: proforma expiry sweep and change-log pruning
	if cfg.Scheduler.Enabled {
		maintenance := scheduler.NewMaintenance(cfg.Scheduler, cfg.Proforma, cfg.Sync, proformaService, syncService, log)
		if err := maintenance.Start(ctx); err != nil {
			log.Fatal("Failed to start maintenance jobs", zap.Error(err))
		}
		defer func() {
			_ = maintenance.Stop(context.Background())
		}()
	}

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(db, version)
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService, productImportService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	customerHandler := handler.NewCustomerHandler(customerService)
	storeHandler := handler.NewStoreHandler(storeService)
	inventoryHandler := handler.NewInventoryHandler(stockService)
	saleHandler := handler.NewSaleHandler(saleService)
	proformaHandler := handler.NewProformaHandler(proformaService)
	sessionHandler := handler.NewSessionHandler(sessionService, userService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	reportHandler := handler.NewReportHandler(reportService)
	syncHandler := handler.NewSyncHandler(syncService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	streamHandler := handler.NewStreamHandler(hub)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/health", systemHandler.Health)
	engine.GET("/ping", systemHandler.Ping)

	if cfg.Swagger.Enabled {
		swaggerCfg := middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(swaggerCfg, middleware.JWTAuthMiddleware(jwtService)),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtService, middleware.JWTAuthConfig{
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		TokenBlacklist: tokenBlacklist,
	}))

	// Identity: public login/refresh plus the authenticated account routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		byClientIP := func(c *gin.Context) string { return c.ClientIP() }
		authRoutes.POST("/login", middleware.RateLimitByKey(authLimiter, byClientIP), authHandler.Login)
		authRoutes.POST("/refresh", middleware.RateLimitByKey(authLimiter, byClientIP), authHandler.Refresh)
	} else {
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
	}
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Catalog: products and categories
	catalogRoutes := router.NewDomainGroup("catalog", "")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.POST("/products/import", productHandler.Import)
	catalogRoutes.GET("/products/lookup", productHandler.Lookup)
	catalogRoutes.GET("/products/stats", productHandler.Stats)
	catalogRoutes.GET("/products/:id", productHandler.Get)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.PUT("/products/:id/sku", productHandler.UpdateSKU)
	catalogRoutes.POST("/products/:id/activate", productHandler.Activate)
	catalogRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)
	catalogRoutes.POST("/products/:id/discontinue", productHandler.Discontinue)
	catalogRoutes.POST("/categories", categoryHandler.Create)
	catalogRoutes.GET("/categories/tree", categoryHandler.Tree)
	catalogRoutes.GET("/categories/:id", categoryHandler.Get)
	catalogRoutes.GET("/categories/:id/children", categoryHandler.Children)
	catalogRoutes.PUT("/categories/:id", categoryHandler.Update)
	catalogRoutes.DELETE("/categories/:id", categoryHandler.Delete)

	// Partner: customers and stores
	partnerRoutes := router.NewDomainGroup("partner", "")
	partnerRoutes.POST("/customers", customerHandler.Create)
	partnerRoutes.GET("/customers", customerHandler.List)
	partnerRoutes.GET("/customers/:id", customerHandler.Get)
	partnerRoutes.PUT("/customers/:id", customerHandler.Update)
	partnerRoutes.POST("/customers/:id/loyalty/add", customerHandler.AddLoyaltyPoints)
	partnerRoutes.POST("/customers/:id/loyalty/redeem", customerHandler.RedeemLoyaltyPoints)
	partnerRoutes.POST("/customers/:id/activate", customerHandler.Activate)
	partnerRoutes.POST("/customers/:id/deactivate", customerHandler.Deactivate)
	partnerRoutes.POST("/stores", storeHandler.Create)
	partnerRoutes.GET("/stores", storeHandler.List)
	partnerRoutes.GET("/stores/default", storeHandler.GetDefault)
	partnerRoutes.GET("/stores/:id", storeHandler.Get)
	partnerRoutes.PUT("/stores/:id", storeHandler.Update)
	partnerRoutes.POST("/stores/:id/default", storeHandler.SetDefault)
	partnerRoutes.POST("/stores/:id/enable", storeHandler.Enable)
	partnerRoutes.POST("/stores/:id/disable", storeHandler.Disable)

	// Inventory: per-store stock levels and the movement ledger
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("", inventoryHandler.List)
	inventoryRoutes.GET("/low-stock", inventoryHandler.LowStock)
	inventoryRoutes.GET("/movements", inventoryHandler.Movements)
	inventoryRoutes.POST("/receive", middleware.RequirePermission("inventory:receive"), inventoryHandler.Receive)
	inventoryRoutes.POST("/adjust", middleware.RequirePermission("inventory:adjust"), inventoryHandler.Adjust)
	inventoryRoutes.GET("/:product_id", inventoryHandler.GetStock)
	inventoryRoutes.PUT("/:product_id/thresholds", middleware.RequirePermission("inventory:adjust"), inventoryHandler.SetThresholds)

	// Sales: checkout and sale history
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.POST("/checkout", saleHandler.Checkout)
	salesRoutes.GET("", saleHandler.List)
	salesRoutes.GET("/number/:number", saleHandler.GetByNumber)
	salesRoutes.GET("/session/:session_id", saleHandler.ListBySession)
	salesRoutes.GET("/:id", saleHandler.Get)
	salesRoutes.POST("/:id/void", middleware.RequirePermission("sale:void"), saleHandler.Void)

	// Proformas: quotes that reserve stock until converted or expired
	proformaRoutes := router.NewDomainGroup("proformas", "/proformas")
	proformaRoutes.POST("", proformaHandler.Create)
	proformaRoutes.GET("", proformaHandler.List)
	proformaRoutes.GET("/:id", proformaHandler.Get)
	proformaRoutes.PUT("/:id/items/:item_id", proformaHandler.UpdateItem)
	proformaRoutes.DELETE("/:id/items/:item_id", proformaHandler.RemoveItem)
	proformaRoutes.POST("/:id/issue", proformaHandler.Issue)
	proformaRoutes.POST("/:id/convert", proformaHandler.Convert)
	proformaRoutes.POST("/:id/cancel", proformaHandler.Cancel)

	// Register: cash sessions, drawer movements and reconciliation
	sessionRoutes := router.NewDomainGroup("sessions", "/sessions")
	sessionRoutes.POST("/open", sessionHandler.Open)
	sessionRoutes.GET("/current", sessionHandler.Current)
	sessionRoutes.GET("/approvers", sessionHandler.Approvers)
	sessionRoutes.GET("", sessionHandler.List)
	sessionRoutes.GET("/:id", sessionHandler.Get)
	sessionRoutes.POST("/:id/pay-in", sessionHandler.PayIn)
	sessionRoutes.POST("/:id/pay-out", sessionHandler.PayOut)
	sessionRoutes.POST("/:id/close", sessionHandler.Close)

	// Per-store settings
	settingsRoutes := router.NewDomainGroup("settings", "/settings")
	settingsRoutes.GET("", settingsHandler.Get)
	settingsRoutes.PUT("", middleware.RequirePermission("settings:update"), settingsHandler.Update)
	settingsRoutes.DELETE("/extras/:key", middleware.RequirePermission("settings:update"), settingsHandler.RemoveExtra)

	// Reports
	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.Use(middleware.RequireResource("report"))
	reportRoutes.GET("/sales/summary", reportHandler.SalesSummary)
	reportRoutes.GET("/sales/daily", reportHandler.DailyTrend)
	reportRoutes.GET("/products/ranking", reportHandler.ProductRanking)
	reportRoutes.GET("/customers/ranking", reportHandler.CustomerRanking)
	reportRoutes.GET("/payments", reportHandler.PaymentBreakdown)
	reportRoutes.GET("/inventory/valuation", reportHandler.InventoryValuation)
	reportRoutes.GET("/inventory/low-stock", reportHandler.LowStock)
	reportRoutes.GET("/sessions/discrepancies", reportHandler.SessionDiscrepancies)

	// Offline sync
	syncRoutes := router.NewDomainGroup("sync", "/sync")
	syncRoutes.GET("/pull", syncHandler.Pull)
	syncRoutes.POST("/push", syncHandler.Push)

	// User and role administration
	identityRoutes := router.NewDomainGroup("identity", "")
	usersRoutes := identityRoutes.Group("users", "/users")
	usersRoutes.Use(middleware.RequireResource("user"))
	usersRoutes.POST("", userHandler.Create)
	usersRoutes.GET("", userHandler.List)
	usersRoutes.GET("/:id", userHandler.Get)
	usersRoutes.PUT("/:id", userHandler.Update)
	usersRoutes.PUT("/:id/roles", userHandler.SetRoles)
	usersRoutes.PUT("/:id/manager-pin", userHandler.SetManagerPin)
	usersRoutes.DELETE("/:id/manager-pin", userHandler.ClearManagerPin)
	usersRoutes.PUT("/:id/password", userHandler.ResetPassword)
	usersRoutes.POST("/:id/activate", userHandler.Activate)
	usersRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	usersRoutes.POST("/:id/unlock", userHandler.Unlock)
	rolesRoutes := identityRoutes.Group("roles", "/roles")
	rolesRoutes.Use(middleware.RequireResource("role"))
	rolesRoutes.POST("", roleHandler.Create)
	rolesRoutes.GET("", roleHandler.List)
	rolesRoutes.GET("/:id", roleHandler.Get)
	rolesRoutes.PUT("/:id", roleHandler.Update)
	rolesRoutes.POST("/:id/enable", roleHandler.Enable)
	rolesRoutes.POST("/:id/disable", roleHandler.Disable)
	rolesRoutes.DELETE("/:id", roleHandler.Delete)

	// Live stock feed (SSE)
	streamRoutes := router.NewDomainGroup("stream", "/stream")
	streamRoutes.GET("/stock", streamHandler.Stock)

	r.Register(authRoutes).
		Register(catalogRoutes).
		Register(partnerRoutes).
		Register(inventoryRoutes).
		Register(salesRoutes).
		Register(proformaRoutes).
		Register(sessionRoutes).
		Register(settingsRoutes).
		Register(reportRoutes).
		Register(syncRoutes).
		Register(identityRoutes).
		Register(streamRoutes)

	if printService != nil {
		printHandler := handler.NewPrintHandler(printService)
		printRoutes := router.NewDomainGroup("print", "/print")
		printRoutes.GET("/receipts/:id", printHandler.Receipt)
		printRoutes.GET("/proformas/:id", printHandler.Proforma)
		printRoutes.GET("/jobs", printHandler.ListJobs)
		printRoutes.GET("/jobs/:id", printHandler.GetJob)
		r.Register(printRoutes)
	}

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// shutdownProvider flushes a telemetry provider with a bounded timeout
func shutdownProvider(shutdown func(context.Context) error, log *zap.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
	}
}
