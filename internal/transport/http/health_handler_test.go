package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairadc/poker-standings/internal/services"
	"github.com/kairadc/poker-standings/internal/source"
	"github.com/kairadc/poker-standings/internal/standings"
)

// The health handler is exercised against a real service over the bundled
// sample source; there is nothing worth mocking below it.
func setupHealthRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	sample := source.NewSampleSource(logger)
	svc := services.NewStandingsService(sample, nil, nil, nil,
		standings.DefaultAggregatorConfig(), logger)
	health := services.NewHealthService("1.0.0-test", "2025-08-01T00:00:00Z", svc, logger)
	handler := NewHealthHandler(health)

	router := chi.NewRouter()
	router.Get("/api/health", handler.HealthCheck)
	router.Get("/api/health/live", handler.LivenessCheck)
	router.Get("/api/health/ready", handler.ReadinessCheck)
	router.Get("/api/version", handler.Version)
	return router
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	router := setupHealthRouter(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "1.0.0-test", status["version"])
}

func TestHealthHandler_Liveness(t *testing.T) {
	router := setupHealthRouter(t)

	req := httptest.NewRequest("GET", "/api/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alive"`)
}

func TestHealthHandler_Readiness(t *testing.T) {
	router := setupHealthRouter(t)

	req := httptest.NewRequest("GET", "/api/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status["status"])

	servicesBlock, ok := status["services"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, servicesBlock, "source")
	assert.Contains(t, servicesBlock, "snapshot_cache")
}

func TestHealthHandler_Version(t *testing.T) {
	router := setupHealthRouter(t)

	req := httptest.NewRequest("GET", "/api/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"1.0.0-test"`)
	assert.Contains(t, body, `"go_version"`)
}
