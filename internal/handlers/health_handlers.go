package handlers

import (
	"context"
	"net/http"
	"time"

	"shopcatalog/internal/caching"
	"shopcatalog/internal/services"

	"github.com/labstack/echo/v4"
)

// Pinger is anything that can report its own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	db      Pinger
	cache   caching.CacheService
	storage services.MinioService
	version string
	started time.Time
	timeout time.Duration
}

// NewHealthHandlers accepts a nil storage when image storage is disabled.
func NewHealthHandlers(db Pinger, cache caching.CacheService, storage services.MinioService, version string) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		storage: storage,
		version: version,
		started: time.Now(),
		timeout: 2 * time.Second,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

func (h *HealthHandlers) check(ctx context.Context, p Pinger) string {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// HealthCheck reports every dependency. The cache and storage are optional, so
// their failure degrades the status without failing it.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	}

	health.Services["database"] = h.check(ctx, h.db)
	health.Services["redis"] = h.check(ctx, h.cache)
	if h.storage != nil {
		health.Services["storage"] = h.check(ctx, h.storage)
	} else {
		health.Services["storage"] = "disabled"
	}

	statusCode := http.StatusOK
	switch {
	case health.Services["database"] != "healthy":
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	case health.Services["redis"] == "unhealthy" || health.Services["storage"] == "unhealthy":
		health.Status = "degraded"
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	if h.check(c.Request().Context(), h.db) != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
