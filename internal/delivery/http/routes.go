package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodtracker/backend/config"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
)

// SetupRouter creates and configures the Gin router. Metrics may be nil, in
// which case /metrics is not served.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger, m *metrics.Metrics) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(m.Middleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
			products.GET("/:barcode", handler.GetProduct)
			products.GET("/:barcode/alternatives", handler.GetAlternatives)
			products.GET("/:barcode/macros", handler.GetMacros)
		}

		scans := v1.Group("/scans")
		{
			scans.POST("", handler.RecordScan)
			scans.GET("", handler.RecentScans)
		}
	}

	return router
}
