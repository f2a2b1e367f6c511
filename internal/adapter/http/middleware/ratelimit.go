package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todoservice/internal/adapter/http/helper"
	"todoservice/internal/adapter/logger"
	"todoservice/internal/config"
	"todoservice/internal/core/telemetry"
)

type RateLimiter struct {
	store     RateLimitStore
	requests  int
	window    time.Duration
	logger    *logger.LokiLogger
	metrics   *telemetry.AppMetrics
	responder *helper.Responder
}

func NewRateLimiter(store RateLimitStore, cfg config.RateLimitConfig, logger *logger.LokiLogger, metrics *telemetry.AppMetrics, responder *helper.Responder) *RateLimiter {
	return &RateLimiter{
		store:     store,
		requests:  cfg.Requests,
		window:    cfg.Window,
		logger:    logger,
		metrics:   metrics,
		responder: responder,
	}
}

// RateLimitMiddleware limits each client per "METHOD route". Health checks
// are never limited. A failing store lets the request through.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/health") {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		key := "rate_limit:" + c.Request.Method + " " + path + ":" + c.ClientIP()

		count, resetAt, err := rl.store.Hit(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.logger.Error(c.Request.Context(), "Rate limit check failed",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		remaining := rl.requests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > rl.requests {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path)
			}

			rl.logger.Warn(c.Request.Context(), "Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", rl.requests),
				zap.Duration("window", rl.window))

			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			rl.responder.SendRateLimited(c)
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path)
		}

		c.Next()
	}
}
