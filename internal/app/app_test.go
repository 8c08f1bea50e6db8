package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairadc/poker-standings/internal/config"
)

// testConfig returns a configuration that needs no network, no
// credentials and no fixed port.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Source.Kind = "sample"
	cfg.Logging.Level = "error"
	cfg.Telemetry.MetricsEnabled = false
	cfg.Telemetry.TraceExporter = "none"
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	application, err := NewApplicationWithConfig(testConfig())
	require.NoError(t, err)
	return application
}

func TestNewApplicationWiresDependencies(t *testing.T) {
	application := newTestApplication(t)

	assert.NotNil(t, application.Config)
	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Server)
	assert.NotNil(t, application.StandingsService)
	assert.NotNil(t, application.HealthService)
	assert.NotNil(t, application.Logger)
	assert.NotNil(t, application.Metrics)
}

func TestRouterServesOverview(t *testing.T) {
	application := newTestApplication(t)

	req := httptest.NewRequest("GET", "/api/overview", nil)
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Status  string `json:"status"`
		Quality struct {
			Source   string `json:"source"`
			DemoMode bool   `json:"demo_mode"`
		} `json:"data_quality"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "success", payload.Status)
	assert.Equal(t, "sample", payload.Quality.Source)
	assert.True(t, payload.Quality.DemoMode)
}

func TestRouterServesStandingsExport(t *testing.T) {
	application := newTestApplication(t)

	req := httptest.NewRequest("GET", "/api/standings/export", nil)
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "rank,player")
}

func TestRouterServesHealthEndpoints(t *testing.T) {
	application := newTestApplication(t)

	for _, target := range []string{
		"/api/health",
		"/api/health/live",
		"/api/health/ready",
		"/api/version",
	} {
		req := httptest.NewRequest("GET", target, nil)
		rec := httptest.NewRecorder()
		application.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "endpoint %s", target)
	}
}

func TestRouterRefresh(t *testing.T) {
	application := newTestApplication(t)

	req := httptest.NewRequest("POST", "/api/refresh", nil)
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "snapshot reloaded")
}

func TestRouterSourceStatus(t *testing.T) {
	application := newTestApplication(t)

	req := httptest.NewRequest("GET", "/api/source/status", nil)
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"sample"`)
}

func TestRouterUnknownAPIRoute(t *testing.T) {
	application := newTestApplication(t)

	req := httptest.NewRequest("GET", "/api/does-not-exist", nil)
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterSecurityHeaders(t *testing.T) {
	application := newTestApplication(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestStartAndStop(t *testing.T) {
	application := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, application.Start(ctx, cancel))

	// Give the listener and the warmup goroutine a moment.
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, application.Stop(stopCtx))
}

func TestClientLogEndpoint(t *testing.T) {
	application := newTestApplication(t)

	body := `{"level":"error","message":"render failed","source":"standings-table"}`
	req := httptest.NewRequest("POST", "/api/logs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}
