package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	db        Pinger
	cache     Pinger
	startedAt time.Time
}

// NewHealthHandlers creates a new health handlers instance. cache may be nil
// when the service runs without redis.
func NewHealthHandlers(db Pinger, cache Pinger) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services,omitempty"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
}

// HealthCheck is the liveness probe.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, &HealthStatus{
		Status:     "alive",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	})
}

// ReadinessCheck reports whether the store and the lock backend answer.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:     "ready",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   map[string]string{},
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}

	check := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.Ping(ctx); err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "not_ready"
			return
		}
		health.Services[name] = "healthy"
	}
	check("database", h.db)
	check("redis", h.cache)

	status := http.StatusOK
	if health.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}
