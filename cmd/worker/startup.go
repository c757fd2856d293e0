// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"newsroom-backend/pkg/container"
)

const healthAddr = ":9999"

// startServices chạy health check rồi mở endpoint /health cho probe
func startServices(c *container.Container) error {
	log.Info().Msg("🚀 Newsroom Worker Starting...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for name, status := range c.Ping(ctx) {
		if name == "storage" {
			continue
		}
		if status != "ok" {
			return fmt.Errorf("%s failed: %s", name, status)
		}
		log.Info().Str("check", name).Msg("✓ OK")
	}

	go startHealthCheckServer(c)
	return nil
}

func startHealthCheckServer(c *container.Container) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "UP", "service": "newsroom-worker"})
	})
	router.GET("/ready", func(ctx *gin.Context) {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		services := c.Ping(pingCtx)
		for name, s := range services {
			if name != "storage" && s != "ok" {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "services": services})
				return
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	log.Info().Str("addr", healthAddr).Msg("[Health] Starting health check server")
	if err := router.Run(healthAddr); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}
