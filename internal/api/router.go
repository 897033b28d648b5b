package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/api/handlers"
	"github.com/glowmart/cjfulfill/internal/api/middleware"
	"github.com/glowmart/cjfulfill/internal/config"
	"github.com/glowmart/cjfulfill/internal/repository"
	"github.com/glowmart/cjfulfill/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, client service.SupplierClient, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "CJ Fulfillment API",
			"endpoints": []string{
				"GET /health",
				"POST /v1/sync/products",
				"GET /v1/sync/runs",
				"GET /v1/sync/runs/:id",
				"GET /v1/products",
				"POST /v1/orders/:id/submit",
				"POST /v1/orders/:id/tracking/refresh",
				"GET /v1/orders/:id",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes (admin credential required before any upstream call)
	v1 := router.Group("/v1")
	v1.Use(middleware.AdminAuthMiddleware(cfg, logger))
	{
		v1.POST("/sync/products", handlers.HandleTriggerSync(cfg, client, repos, logger))
		v1.GET("/sync/runs", handlers.HandleListSyncRuns(repos, logger))
		v1.GET("/sync/runs/:id", handlers.HandleGetSyncRun(repos, logger))

		v1.GET("/products", handlers.HandleListProducts(repos, logger))

		v1.POST("/orders/:id/submit", handlers.HandleSubmitOrder(client, repos, logger))
		v1.POST("/orders/:id/tracking/refresh", handlers.HandleRefreshTracking(client, repos, logger))
		v1.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
