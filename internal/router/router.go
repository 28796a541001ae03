// Package router assembles the gin engine: global middleware, the
// public surface and the authenticated API group.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/pkg/metrics"
)

// Handler registers routes that need nothing beyond the group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ProtectedHandler registers routes behind permission checks.
type ProtectedHandler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

// PublicHandler additionally exposes unauthenticated routes.
type PublicHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
}

// AuthHandler couples the public login surface with the session routes.
type AuthHandler interface {
	Handler
	PublicHandler
}

// PublicEntityHandler is an entity handler with a public face too.
type PublicEntityHandler interface {
	ProtectedHandler
	PublicHandler
}

// Handlers collects every handler the router mounts.
type Handlers struct {
	Health       Handler
	Auth         AuthHandler
	Customer     ProtectedHandler
	Request      PublicEntityHandler
	Appointment  ProtectedHandler
	Project      ProtectedHandler
	Catalog      PublicEntityHandler
	User         ProtectedHandler
	RBAC         ProtectedHandler
	Notification ProtectedHandler
	Activity     ProtectedHandler
	Dashboard    ProtectedHandler
}

// Config carries the knobs the router needs from the config file.
type Config struct {
	Mode           string
	CORS           middleware.CORSConfig
	PublicRate     middleware.RateLimiterConfig
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type Router struct {
	engine   *gin.Engine
	config   Config
	authz    *middleware.AuthMiddleware
	handlers Handlers
}

func NewRouter(cfg Config, authz *middleware.AuthMiddleware, m *metrics.Metrics, h Handlers) *Router {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = middleware.DefaultMaxBodySize
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.Metrics(m),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.SizeLimit(cfg.MaxBodyBytes),
	)

	return &Router{engine: engine, config: cfg, authz: authz, handlers: h}
}

// Setup mounts every route. Called once at startup.
func (r *Router) Setup() {
	// Probes and metrics sit outside /api; they are for machines, not
	// for the frontend.
	r.handlers.Health.RegisterRoutes(r.engine.Group(""))
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")

	r.setupPublicRoutes(api)

	protected := api.Group("", r.authz.Authenticate())
	r.setupProtectedRoutes(protected)
}

// setupPublicRoutes mounts what the website reaches without a session:
// login, token refresh, the contact form and the active catalog.
func (r *Router) setupPublicRoutes(api *gin.RouterGroup) {
	r.handlers.Auth.RegisterPublicRoutes(api)

	// The contact form is the one write anyone on the internet can
	// perform, so it alone carries the per-client rate limit.
	limiter := middleware.NewRateLimiter(r.config.PublicRate)
	form := api.Group("", limiter.RateLimit())
	r.handlers.Request.RegisterPublicRoutes(form)

	catalog := api.Group("", middleware.CacheControl(middleware.DefaultCacheConfig()))
	r.handlers.Catalog.RegisterPublicRoutes(catalog)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.handlers.Auth.RegisterRoutes(rg)
	r.handlers.Customer.RegisterRoutes(rg, r.authz)
	r.handlers.Request.RegisterRoutes(rg, r.authz)
	r.handlers.Appointment.RegisterRoutes(rg, r.authz)
	r.handlers.Project.RegisterRoutes(rg, r.authz)
	r.handlers.Catalog.RegisterRoutes(rg, r.authz)
	r.handlers.User.RegisterRoutes(rg, r.authz)
	r.handlers.RBAC.RegisterRoutes(rg, r.authz)
	r.handlers.Notification.RegisterRoutes(rg, r.authz)
	r.handlers.Activity.RegisterRoutes(rg, r.authz)
	r.handlers.Dashboard.RegisterRoutes(rg, r.authz)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
