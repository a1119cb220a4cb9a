package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"padhaihub-backend/internal/checks"
	"padhaihub-backend/internal/services/health"
	"padhaihub-backend/internal/shared/auth"
	"padhaihub-backend/internal/shared/config"
	"padhaihub-backend/internal/shared/metrics"
	"padhaihub-backend/internal/shared/server/middleware"
	"padhaihub-backend/internal/shared/server/respond"
)

const (
	healthPath  = "/api/v1/health"
	metricsPath = "/metrics"
)

// RouterDeps are the handlers and settings the router is built from.
type RouterDeps struct {
	Config        config.Config
	Verifier      *auth.Verifier
	ChecksHandler *checks.Handler
	Health        *health.Service
	RateLimiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier, healthPath, metricsPath),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRateLimitRules(),
			GroupFor: middleware.CheckGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET(metricsPath, metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status(c.Request.Context()))
	})
	registerMeRoutes(api)
	if deps.ChecksHandler != nil {
		deps.ChecksHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
