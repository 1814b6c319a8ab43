package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/notify"
	"escape-planner/internal/plans"
	"escape-planner/internal/services/health"
	"escape-planner/internal/shared/config"
	"escape-planner/internal/shared/metrics"
	"escape-planner/internal/shared/server/middleware"
	"escape-planner/internal/shared/server/respond"
	"escape-planner/internal/web"
)

// RouterDeps are the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config        config.Config
	PlanHandler   *plans.Handler
	PageHandler   *web.Handler
	NotifyHandler *notify.Handler
	Health        *health.Service
	// RateLimits overrides the default per-session budgets.
	RateLimits map[string]middleware.RateLimitRule
}

// DefaultRateLimits keeps generation calls well below the provider's quota.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		middleware.DefaultRateLimitGroup:  {Rate: 5, Burst: 20},
		middleware.GenerateRateLimitGroup: {Rate: 0.2, Burst: 3},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rules := deps.RateLimits
	if rules == nil {
		rules = DefaultRateLimits()
	}
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(!deps.Config.IsDevLike()),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: middleware.DefaultRateLimitGroup,
			GroupFor:     rateLimitGroup,
			Rules:        rules,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	api.GET("/ready", func(c *gin.Context) {
		report := healthSvc.Ready(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	if deps.PlanHandler != nil {
		deps.PlanHandler.RegisterRoutes(api)
	}
	if deps.NotifyHandler != nil && deps.Config.IsDevLike() {
		dev := api.Group("/dev")
		deps.NotifyHandler.RegisterDevRoutes(dev)
	}
	if deps.PageHandler != nil {
		deps.PageHandler.RegisterRoutes(r)
	}

	return r
}

// rateLimitGroup puts every request that may call the generator in the GENERATE bucket.
func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return middleware.DefaultRateLimitGroup
	}
	switch c.FullPath() {
	case "/", "/api/v1/plans":
		return middleware.GenerateRateLimitGroup
	}
	return middleware.DefaultRateLimitGroup
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
