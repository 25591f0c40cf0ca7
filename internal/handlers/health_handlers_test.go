package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopcatalog/internal/caching"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy(context.Context) error { return nil }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		db       pingFunc
		status   int
		overall  string
		database string
	}{
		{"all healthy", healthy, http.StatusOK, "healthy", "healthy"},
		{"database down", func(context.Context) error { return errors.New("refused") }, http.StatusServiceUnavailable, "unhealthy", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlers(tt.db, caching.NewNoopCacheService(), nil, "test")
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

			require.NoError(t, h.HealthCheck(c))

			assert.Equal(t, tt.status, rec.Code)
			var body HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.overall, body.Status)
			assert.Equal(t, tt.database, body.Services["database"])
			assert.Equal(t, "disabled", body.Services["storage"])
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	h := NewHealthHandlers(pingFunc(func(context.Context) error { return errors.New("down") }), caching.NewNoopCacheService(), nil, "test")
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	require.NoError(t, h.ReadinessCheck(c))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
