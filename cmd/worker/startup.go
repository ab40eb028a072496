package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"idservices-admin/pkg/container"
)

const healthAddr = ":9999"

// HealthChecker performs startup health checks
type HealthChecker struct {
	c *container.Container
}

func startServices(c *container.Container) error {
	log.Info().Msg("🚀 Identifier Services export worker starting...")

	checker := &HealthChecker{c: c}
	if err := checker.checkAll(); err != nil {
		return err
	}

	go startHealthCheckServer(checker)
	return nil
}

// checkAll runs all health checks
func (h *HealthChecker) checkAll() error {
	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Redis Connection", h.c.Redis.HealthCheck},
		{"MinIO Bucket", h.c.Storage.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("❌ Health check failed")
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("✓ OK")
	}
	return nil
}

func startHealthCheckServer(h *HealthChecker) {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "idservices-export-worker"})
	})
	// Kubernetes readiness probe
	r.GET("/ready", func(c *gin.Context) {
		if err := h.checkAll(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	log.Info().Str("addr", healthAddr).Msg("[Health] Starting health check server")
	if err := r.Run(healthAddr); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}
