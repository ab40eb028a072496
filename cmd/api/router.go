package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"idservices-admin/internal/shared/middleware"
	"idservices-admin/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	// Console boot configuration, plain JSON
	c.BootConfigHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		authed := v1.Group("", middleware.AuthMiddleware(c.Validator))
		c.ExportHandler.RegisterRoutes(authed)
	}

	return router
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
			health["status"] = "degraded"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = "error: " + err.Error()
			health["status"] = "degraded"
		}

		storageStatus := "ok"
		if appCtx.Storage == nil {
			storageStatus = "disconnected"
			health["status"] = "degraded"
		} else if err := appCtx.Storage.HealthCheck(ctx); err != nil {
			storageStatus = "error: " + err.Error()
			health["status"] = "degraded"
		}

		health["services"] = gin.H{
			"redis":   redisStatus,
			"storage": storageStatus,
		}

		statusCode := http.StatusOK
		if redisStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}
