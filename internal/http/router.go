package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/strivekit/strivekit-backend/internal/http/handlers"
	httpMW "github.com/strivekit/strivekit-backend/internal/http/middleware"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	PlanHandler      *httpH.PlanHandler
	StandardsHandler *httpH.StandardsHandler
	HealthHandler    *httpH.HealthHandler

	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.RequestLogger(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.PlanHandler != nil {
			protected.POST("/goals/:id/plan", cfg.PlanHandler.GeneratePlan)
			protected.GET("/goals/:id/plan", cfg.PlanHandler.GetPlan)
			protected.GET("/jobs/:id", cfg.PlanHandler.GetJob)
		}

		if cfg.StandardsHandler != nil {
			protected.GET("/standards", cfg.StandardsHandler.List)
		}
	}

	admin := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
		}
		if cfg.StandardsHandler != nil {
			admin.POST("/standards/:id/verify", cfg.StandardsHandler.Verify)
		}
	}

	return r
}
