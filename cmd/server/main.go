// Command server runs the business portal HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	approvalapp "github.com/bizportal/backend/internal/application/approval"
	dashboardapp "github.com/bizportal/backend/internal/application/dashboard"
	financeapp "github.com/bizportal/backend/internal/application/finance"
	identityapp "github.com/bizportal/backend/internal/application/identity"
	profileapp "github.com/bizportal/backend/internal/application/profile"
	"github.com/bizportal/backend/internal/domain/dashboard"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/bizportal/backend/internal/infrastructure/cache"
	"github.com/bizportal/backend/internal/infrastructure/config"
	"github.com/bizportal/backend/internal/infrastructure/logger"
	"github.com/bizportal/backend/internal/infrastructure/persistence"
	"github.com/bizportal/backend/internal/infrastructure/scheduler"
	"github.com/bizportal/backend/internal/infrastructure/storage"
	"github.com/bizportal/backend/internal/infrastructure/telemetry"
	"github.com/bizportal/backend/internal/interfaces/http/handler"
	"github.com/bizportal/backend/internal/interfaces/http/middleware"
	"github.com/bizportal/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting business portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewSQLLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Telemetry.Enabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		if db.Driver == config.DriverSQLite {
			dbTracing.DBSystem = "sqlite"
		}
		if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}

	if db.Driver == config.DriverSQLite {
		// sqlite deployments have no migration history; sync the schema in place
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	store, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize dashboard cache", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	exports, err := storage.New(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize export storage", zap.Error(err))
	}

	currency, err := valueobject.ParseCurrency(cfg.Dashboard.Currency)
	if err != nil {
		log.Fatal("Invalid dashboard currency", zap.Error(err))
	}

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRecordRepository(db.DB)
	approvalRepo := persistence.NewGormApprovalRepository(db.DB)

	// Application services
	dashboardService := dashboardapp.NewDashboardService(expenseRepo, profileRepo, approvalRepo, log,
		dashboardapp.WithCache(store, cfg.Dashboard.CacheTTL),
		dashboardapp.WithExportStorage(exports),
		dashboardapp.WithFormatter(dashboard.NewMoneyFormatter(cfg.Dashboard.Locale, currency)),
		dashboardapp.WithHistoryMonths(cfg.Dashboard.HistoryMonths),
		dashboardapp.WithForecastHorizon(cfg.Dashboard.ForecastHorizon),
	)
	tenantService := identityapp.NewTenantService(tenantRepo, log)
	userService := identityapp.NewUserService(userRepo, tenantRepo, log)
	profileService := profileapp.NewProfileService(profileRepo, userRepo, log,
		profileapp.WithChangeNotifier(dashboardService.Invalidate))
	expenseService := financeapp.NewExpenseService(expenseRepo, currency, log, dashboardService.Invalidate)
	approvalService := approvalapp.NewApprovalService(approvalRepo, userRepo, log,
		approvalapp.WithChangeNotifier(dashboardService.Invalidate))

	if cfg.Warmup.Enabled {
		stopWarmup := startWarmup(cfg.Warmup, dashboardService, tenantRepo, log)
		defer stopWarmup()
	}

	checks := map[string]handler.Pinger{"database": db}
	if redisStore, ok := store.(*cache.RedisStore); ok {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisStore.Client().Ping(ctx).Err()
		})
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	tracing.ServiceName = cfg.Telemetry.ServiceName

	engine := router.NewEngine(router.EngineConfig{
		Logger:       log,
		CORS:         cors,
		MaxBodySize:  cfg.HTTP.MaxBodySize,
		Tracing:      tracing,
		TenantLookup: tenantRepo,
	}, router.Handlers{
		Health:    handler.NewHealthHandler(cfg.App.Name, version, checks),
		Tenant:    handler.NewTenantHandler(tenantService),
		User:      handler.NewUserHandler(userService),
		Profile:   handler.NewProfileHandler(profileService),
		Expense:   handler.NewExpenseHandler(expenseService),
		Approval:  handler.NewApprovalHandler(approvalService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
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

	log.Info("Server exited gracefully")
}

// startWarmup runs the background dashboard warm-up and returns its stop func
func startWarmup(cfg config.WarmupConfig, dashboards scheduler.DashboardRenderer, tenants scheduler.TenantLister, log *zap.Logger) func() {
	schedCfg := scheduler.DefaultConfig()
	schedCfg.Workers = cfg.Workers
	schedCfg.JobTimeout = cfg.JobTimeout
	schedCfg.RetryAttempts = cfg.MaxRetries

	sched, err := scheduler.NewScheduler(schedCfg, scheduler.NewDashboardWarmer(dashboards, log), log)
	if err != nil {
		log.Fatal("Invalid warm-up configuration", zap.Error(err))
	}
	trigger := scheduler.NewIntervalTrigger(scheduler.TriggerConfig{
		Interval:   cfg.Interval,
		RunOnStart: true,
		MaxRetries: cfg.MaxRetries,
	}, sched, tenants, log)

	ctx := context.Background()
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start warm-up scheduler", zap.Error(err))
	}
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start warm-up trigger", zap.Error(err))
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := trigger.Stop(ctx); err != nil {
			log.Warn("Warm-up trigger stop", zap.Error(err))
		}
		if err := sched.Stop(ctx); err != nil {
			log.Warn("Warm-up scheduler stop", zap.Error(err))
		}
	}
}
