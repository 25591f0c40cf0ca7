package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shopcatalog/internal/caching"
	"shopcatalog/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestNewServer_Routes(t *testing.T) {
	app := &application{cache: caching.NewNoopCacheService()}
	e := newServer(app, nil, middleware.JWTConfig("secret", nil))

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"GET /swagger/*",
		"GET /v1/categories",
		"GET /v1/categories/:id/filter",
		"GET /v1/products/filter",
		"GET /v1/products/new-arrivals",
		"PUT /v1/admin/products/:id/attributes/:key",
		"POST /v1/admin/products/:id/cleanup-attributes",
		"DELETE /v1/admin/categories/:id/attributes/:key",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestNewServer_AdminRequiresToken(t *testing.T) {
	app := &application{cache: caching.NewNoopCacheService()}
	e := newServer(app, nil, middleware.JWTConfig("secret", nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/categories", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewServer_Liveness(t *testing.T) {
	app := &application{cache: caching.NewNoopCacheService()}
	e := newServer(app, nil, middleware.JWTConfig("secret", nil))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
