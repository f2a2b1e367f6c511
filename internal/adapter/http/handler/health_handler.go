package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	. "todoservice/internal/adapter/http/helper"
	"todoservice/internal/core/port"
)

const healthCheckTimeout = 2 * time.Second

// StoreChecker is the store surface health checks need.
type StoreChecker interface {
	port.HealthChecker
	PoolStats() map[string]interface{}
}

type HealthHandler struct {
	store       StoreChecker
	responder   *Responder
	version     string
	environment string
	startedAt   time.Time
}

func NewHealthHandler(store StoreChecker, responder *Responder, version, environment string) *HealthHandler {
	return &HealthHandler{
		store:       store,
		responder:   responder,
		version:     version,
		environment: environment,
		startedAt:   time.Now(),
	}
}

// Health reports the process is up and answers store connectivity.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		h.responder.SendUnavailable(c, err, gin.H{"status": "unhealthy"})
		return
	}

	SendSuccess(c, http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": h.uptime(),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	SendSuccess(c, http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		h.responder.SendUnavailable(c, err, gin.H{"status": "not_ready"})
		return
	}

	SendSuccess(c, http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) Detailed(c *gin.Context) {
	start := time.Now()
	err := h.ping(c.Request.Context())
	latency := time.Since(start)

	database := gin.H{
		"status":    "up",
		"latencyMs": latency.Milliseconds(),
		"pool":      h.store.PoolStats(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	report := gin.H{
		"status":      "healthy",
		"version":     h.version,
		"environment": h.environment,
		"uptime":      h.uptime(),
		"database":    database,
		"memory": gin.H{
			"allocBytes": mem.Alloc,
			"sysBytes":   mem.Sys,
			"numGC":      mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	if err != nil {
		database["status"] = "down"
		database["error"] = err.Error()
		report["status"] = "unhealthy"

		h.responder.SendUnavailable(c, err, report)
		return
	}

	SendSuccess(c, http.StatusOK, report)
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	return h.store.TestConnection(ctx)
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startedAt).Round(time.Second).String()
}
