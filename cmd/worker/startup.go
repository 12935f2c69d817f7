// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"library-backend/pkg/container"
	"library-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HealthChecker performs startup health checks
type HealthChecker struct {
	c *container.Container
}

// startServices runs the start-up checks and exposes the probe endpoints.
func startServices(c *container.Container) error {
	checker := &HealthChecker{c: c}
	if err := checker.checkAll(); err != nil {
		return err
	}

	go startHealthCheckServer(c)
	return nil
}

func (h *HealthChecker) checkAll() error {
	checks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Redis Connection", h.c.Redis.HealthCheck},
		{"Database Connection", h.c.DB.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		logger.Info("Startup check passed", map[string]interface{}{"check": check.name})
	}

	return nil
}

// startHealthCheckServer serves /health and /ready for the orchestrator.
func startHealthCheckServer(c *container.Container) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "UP", "service": "library-worker"})
	})
	r.GET("/ready", func(ctx *gin.Context) {
		if err := c.Redis.HealthCheck(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "READY"})
	})
	r.GET("/metrics", gin.WrapH(c.Metrics.Handler()))

	addr := ":" + c.Config.Queue.HealthPort
	logger.Info("Health check server starting", map[string]interface{}{"addr": addr})
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("Health check server stopped", err)
	}
}
