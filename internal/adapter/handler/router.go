package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/adapter/dto/common"
	"github.com/johnquangdev/cyberon-reporter/pkg/config"
)

// HealthCheck pings one dependency
type HealthCheck func(ctx context.Context) error

// Router holds all handlers
type Router struct {
	cfg           *config.Config
	reportHandler *Report
	auth          echo.MiddlewareFunc
	access        echo.MiddlewareFunc
	checks        map[string]HealthCheck
	logger        *zap.Logger
}

// NewRouter creates a new router with all handlers. auth must set "user_id";
// access runs after it on report creation only.
func NewRouter(cfg *config.Config, reportHandler *Report, auth, access echo.MiddlewareFunc, checks map[string]HealthCheck, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:           cfg,
		reportHandler: reportHandler,
		auth:          auth,
		access:        access,
		checks:        checks,
		logger:        logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupReportRoutes(v1)
}

// setupReportRoutes configures report routes
func (rt *Router) setupReportRoutes(g *echo.Group) {
	reportGroup := g.Group("/reports", rt.auth)

	create := []echo.MiddlewareFunc{}
	if rt.access != nil {
		create = append(create, rt.access)
	}

	reportGroup.POST("", rt.reportHandler.CreateReport, create...)
	reportGroup.GET("/runs", rt.reportHandler.ListRuns)
	reportGroup.GET("/runs/:id", rt.reportHandler.GetRun)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	resp := common.HealthResponse{
		Status:      "ok",
		Environment: rt.cfg.Server.Environment,
	}

	if len(rt.checks) > 0 {
		resp.Components = make(map[string]string, len(rt.checks))
		for name, check := range rt.checks {
			if err := check(ctx); err != nil {
				rt.logger.Warn("⚠️ Health check failed", zap.String("component", name), zap.Error(err))
				resp.Components[name] = "down"
				resp.Status = "degraded"
				continue
			}
			resp.Components[name] = "up"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}
