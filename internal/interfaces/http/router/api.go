package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/infrastructure/logger"
	"github.com/bizportal/backend/internal/interfaces/http/handler"
	"github.com/bizportal/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	Health    *handler.HealthHandler
	Tenant    *handler.TenantHandler
	User      *handler.UserHandler
	Profile   *handler.ProfileHandler
	Expense   *handler.ExpenseHandler
	Approval  *handler.ApprovalHandler
	Dashboard *handler.DashboardHandler
}

// EngineConfig configures the middleware stack
type EngineConfig struct {
	Logger       *zap.Logger
	CORS         middleware.CORSConfig
	MaxBodySize  int64
	Tracing      middleware.TracingConfig
	TenantLookup middleware.TenantLookup
}

// NewEngine builds the gin engine with the full middleware stack and every
// API route. Middleware order:
//  1. RequestID
//  2. Tracing and SpanErrorMarker (when enabled)
//  3. Recovery
//  4. Request logging
//  5. CORS
//  6. BodyLimit
//
// API routes additionally pass TenantMiddleware and TracingAttributeInjector.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		engine.Use(middleware.TracingWithConfig(cfg.Tracing), middleware.SpanErrorMarker())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	if h.Health != nil {
		engine.GET("/health", h.Health.Live)
		engine.GET("/health/ready", h.Health.Ready)
	}

	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Lookup = cfg.TenantLookup
	tenantCfg.Logger = log

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.TenantMiddleware(tenantCfg), middleware.TracingAttributeInjector())

	if h.Health != nil {
		r.Register(NewDomainGroup("health", "/health").
			GET("", h.Health.Live).
			GET("/ready", h.Health.Ready))
	}

	if h.Tenant != nil {
		r.Register(NewDomainGroup("tenants", "/tenants").
			POST("", h.Tenant.Create).
			GET("", h.Tenant.List).
			GET("/:id", h.Tenant.GetByID))
	}

	if h.User != nil {
		r.Register(NewDomainGroup("users", "/users").
			POST("", h.User.Register).
			GET("", h.User.List).
			GET("/:id", h.User.GetByID).
			PUT("/:id/role", h.User.UpdateRole).
			POST("/:id/activate", h.User.Activate).
			POST("/:id/deactivate", h.User.Deactivate))
	}

	if h.Profile != nil {
		profiles := NewDomainGroup("profiles", "/profiles")
		profiles.Group("sellers", "/sellers").
			GET("", h.Profile.ListSellers).
			GET("/:userId", h.Profile.GetSeller).
			PUT("/:userId", h.Profile.UpsertSeller)
		profiles.Group("buyers", "/buyers").
			GET("", h.Profile.ListBuyers).
			GET("/:userId", h.Profile.GetBuyer).
			PUT("/:userId", h.Profile.UpsertBuyer).
			POST("/:userId/orders", h.Profile.RecordOrder).
			POST("/:userId/churn", h.Profile.MarkChurned)
		r.Register(profiles)
	}

	if h.Expense != nil {
		r.Register(NewDomainGroup("expenses", "/expenses").
			POST("", h.Expense.Record).
			GET("", h.Expense.List))
	}

	if h.Approval != nil {
		r.Register(NewDomainGroup("approvals", "/approvals").
			POST("", h.Approval.Submit).
			GET("", h.Approval.List).
			GET("/:id", h.Approval.GetByID).
			POST("/:id/approve", h.Approval.Approve).
			POST("/:id/reject", h.Approval.Reject).
			POST("/:id/cancel", h.Approval.Cancel))
	}

	if h.Dashboard != nil {
		r.Register(NewDomainGroup("dashboards", "/dashboards").
			GET("/:name", h.Dashboard.Get).
			POST("/:name/exports", h.Dashboard.Export))
	}

	r.Setup()
	return engine
}
