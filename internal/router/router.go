package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/equivalence-api/internal/handler"
	"github.com/noah-isme/equivalence-api/internal/middleware"
	"github.com/noah-isme/equivalence-api/internal/service"
	"github.com/noah-isme/equivalence-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/equivalence-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/equivalence-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Analysis *handler.AnalysisHandler
	Report   *handler.ReportHandler
	Metrics  *handler.MetricsHandler
}

// Options tunes the engine.
type Options struct {
	AllowedOrigins  []string
	MaxRequestBytes int64
	EnableDocs      bool
}

// Setup builds the gin engine with global middleware and every route.
func Setup(h Handlers, tokens middleware.TokenValidator, metrics *service.MetricsService, logr *zap.Logger, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	{
		api.POST("/analyze",
			middleware.BodyLimit(opts.MaxRequestBytes),
			middleware.Authenticate(tokens),
			h.Analysis.Analyze)

		reports := api.Group("/reports")
		{
			reports.GET("", h.Report.List)
			reports.GET("/:id", h.Report.Get)
			reports.DELETE("/:id", h.Report.Delete)
			reports.GET("/:id/export", h.Report.Export)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/profile", middleware.RequireAuth(tokens), h.Auth.Profile)
		}
	}

	return r
}
