package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/metrics"
)

const (
	serviceName    = "hmr-builders-backend"
	serviceVersion = "1.0.0"
)

const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Origin, Content-Type, Accept, Authorization, X-Request-ID, Idempotency-Key"
	corsExposeHeader = "X-Request-ID, X-Idempotency-Replayed, Retry-After"
)

// applyCORSMiddleware echoes allowed origins and short-circuits preflights.
// An empty list or "*" allows any origin.
func applyCORSMiddleware(r *gin.Engine, allowedOrigins ...string) {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Expose-Headers", corsExposeHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

type dbPinger interface {
	PingContext(ctx context.Context) error
}

// registerHealthRoute reports liveness plus database reachability when db is set.
func registerHealthRoute(r *gin.Engine, db dbPinger) {
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.Warn(ctx, "Health check database ping failed", zap.Error(err))
				body["status"] = "degraded"
				body["database"] = "unavailable"
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
			body["database"] = "ok"
		}
		c.JSON(http.StatusOK, body)
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
