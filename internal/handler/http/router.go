package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/internal/service"
	"github.com/propconnect/propconnect/pkg/health"
	"github.com/propconnect/propconnect/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "propconnect-api"

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	AuthService     *service.AuthService
	PropertyService *service.PropertyService
	TokenValidator  middleware.TokenValidator
	Health          *health.Handler
	Logger          *slog.Logger

	CORS        middleware.CORSConfig
	Cookie      CookieConfig
	AuthLimiter *middleware.RateLimiter
	PprofCIDRs  []string
	HSTS        bool
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.SecurityHeaders(cfg.HSTS))

	// Operational endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	requireAuth := middleware.Auth(cfg.TokenValidator, logger)
	optionalAuth := middleware.OptionalAuth(cfg.TokenValidator, logger)

	authHandler := NewAuthHandler(cfg.AuthService, cfg.Cookie, logger)
	propertyHandler := NewPropertyHandler(cfg.PropertyService, logger)
	adminHandler := NewAdminHandler(cfg.AuthService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(cfg.AuthLimiter.Handler)
				}
				r.Use(middleware.ContentTypeJSON)
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})
			r.Post("/logout", authHandler.Logout)
			r.With(requireAuth).Get("/me", authHandler.Me)
		})

		r.Route("/properties", func(r chi.Router) {
			r.With(optionalAuth).Get("/", propertyHandler.List)
			r.With(requireAuth).Get("/mine", propertyHandler.ListMine)
			r.With(optionalAuth).Get("/{id}", propertyHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(middleware.ContentTypeJSON)
				r.Post("/", propertyHandler.Create)
				r.Put("/{id}", propertyHandler.Update)
				r.Delete("/{id}", propertyHandler.Delete)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(domain.RoleSuperAdmin))
			r.Use(middleware.ContentTypeJSON)
			r.Patch("/users/{id}/status", adminHandler.UpdateStatus)
		})
	})

	return r
}
