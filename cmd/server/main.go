package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/posledger/backend/internal/application/identity"
	ledgerapp "github.com/posledger/backend/internal/application/ledger"
	"github.com/posledger/backend/internal/infrastructure/auth"
	"github.com/posledger/backend/internal/infrastructure/config"
	"github.com/posledger/backend/internal/infrastructure/event"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/infrastructure/persistence"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/posledger/backend/internal/interfaces/http/handler"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
	"github.com/posledger/backend/internal/interfaces/http/router"
)

//	@title			POS Ledger API
//	@version		1.0
//	@description	Credit sale ledger with partial payment reconciliation

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
	log.Info("Server exited")
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Cancelled on SIGINT or SIGTERM, which drives the graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer shutdownQuietly(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	defer shutdownQuietly(log, "meter provider", meterProvider.Shutdown)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName))

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	creditSaleRepo := persistence.NewGormCreditSaleRepository(db.DB)
	creditPaymentRepo := persistence.NewGormCreditPaymentRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, log)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(ledgerapp.NewCreditEventLogger(log))
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer shutdownQuietly(log, "event bus", eventBus.Stop)

	ledgerOpts := []ledgerapp.CreditLedgerServiceOption{
		ledgerapp.WithEventPublisher(eventBus),
	}
	if meterProvider.IsEnabled() {
		ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter(telemetry.TracerName), log)
		if err != nil {
			log.Warn("Failed to initialize ledger metrics", zap.Error(err))
		} else {
			ledgerOpts = append(ledgerOpts, ledgerapp.WithLedgerMetrics(ledgerMetrics))
		}
	}
	creditService := ledgerapp.NewCreditLedgerService(
		creditSaleRepo, creditPaymentRepo, userRepo, txManager, log, ledgerOpts...)

	engine, err := buildEngine(cfg, log, engineDeps{
		db:            db,
		jwtService:    jwtService,
		tracerEnabled: tracerProvider.IsEnabled(),
		meterProvider: meterProvider,
		authHandler:   handler.NewAuthHandler(authService),
		userHandler:   handler.NewUserHandler(userService),
		creditHandler: handler.NewCreditHandler(creditService),
		systemHandler: handler.NewSystemHandler(cfg.App.Name, cfg.App.Version),
	})
	if err != nil {
		return err
	}

	return serve(ctx, cfg, log, engine)
}

type engineDeps struct {
	db            *persistence.Database
	jwtService    *auth.JWTService
	tracerEnabled bool
	meterProvider *telemetry.MeterProvider
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	creditHandler *handler.CreditHandler
	systemHandler *handler.SystemHandler
}

// buildEngine assembles the middleware stack and routes. Middleware
// order matters: request IDs come first so every later stage can log
// them, recovery wraps everything else.
func buildEngine(cfg *config.Config, log *zap.Logger, deps engineDeps) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Custom validators must be registered before any binding happens.
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if deps.tracerEnabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanEnrichment())
	}
	engine.Use(middleware.HTTPMetricsWithMeter(
		deps.meterProvider.Meter(telemetry.TracerName), deps.meterProvider.IsEnabled()))

	// Health stays outside both auth and the versioned API.
	engine.GET("/health", healthHandler(deps.db))

	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: deps.jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	registerRoutes(engine, deps)
	return engine, nil
}

func registerRoutes(engine *gin.Engine, deps engineDeps) {
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Login and refresh are unauthenticated, keep brute force attempts in check.
	loginLimiter := middleware.NewRateLimiter(20, time.Minute)

	authRoutes := router.NewDomainGroup("auth", "/auth").
		Use(middleware.RateLimit(loginLimiter)).
		POST("/login", deps.authHandler.Login).
		POST("/refresh", deps.authHandler.RefreshToken).
		GET("/me", deps.authHandler.GetCurrentUser).
		PUT("/password", deps.authHandler.ChangePassword)

	userRoutes := router.NewDomainGroup("users", "/users").
		POST("", deps.userHandler.Create).
		GET("/:id", deps.userHandler.GetByID).
		PUT("/:id/deactivate", deps.userHandler.Deactivate).
		PUT("/:id/activate", deps.userHandler.Activate)

	creditRoutes := router.NewDomainGroup("credit", "/credit").
		GET("", deps.creditHandler.List).
		POST("", deps.creditHandler.Open).
		GET("/summary", deps.creditHandler.Summary).
		GET("/customer/:phone", deps.creditHandler.ListByCustomer).
		POST("/payment", deps.creditHandler.RecordPayment).
		GET("/:id", deps.creditHandler.GetByID)

	systemRoutes := router.NewDomainGroup("system", "/system").
		GET("/info", deps.systemHandler.GetSystemInfo).
		GET("/ping", deps.systemHandler.Ping)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(creditRoutes).
		Register(systemRoutes)
	r.Setup()

	engine.GET("/api/v1/ping", deps.systemHandler.Ping)
}

// serve runs the HTTP server until ctx is cancelled, then drains it
// with a 30 second grace period.
func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, engine *gin.Engine) error {
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func shutdownQuietly(log *zap.Logger, name string, fn func(context.Context) error) {
	if err := fn(context.Background()); err != nil {
		log.Error("Shutdown failed", zap.String("component", name), zap.Error(err))
	}
}

// healthHandler reports server and database health, including the
// connection pool counters surfaced by Database.Stats.
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ginLog := logger.GetGinLogger(c)

		if err := db.Ping(); err != nil {
			ginLog.Error("Health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}

		body := gin.H{
			"status":   "healthy",
			"database": "connected",
		}
		if stats, err := db.Stats(); err == nil {
			body["pool"] = gin.H{
				"open":    stats.OpenConnections,
				"in_use":  stats.InUse,
				"idle":    stats.Idle,
				"waiting": stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
