package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/kairadc/poker-standings/internal/config"
)

// newTestProviders initializes the default telemetry stack and tears it
// down with the test.
func newTestProviders(t *testing.T) *OTelProviders {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, providers.Shutdown(ctx))
	})
	return providers
}

func TestInitializeOTelNilConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)
	defer providers.Shutdown(context.Background())

	// nil config falls back to the default, which enables both signals
	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestFromTelemetryConfig(t *testing.T) {
	cfg := FromTelemetryConfig(config.TelemetryConfig{
		ServiceName:    "standings-test",
		MetricsEnabled: true,
		TraceExporter:  "none",
	})

	assert.Equal(t, "standings-test", cfg.ServiceName)
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
	assert.False(t, cfg.EnableTracing)

	cfg = FromTelemetryConfig(config.TelemetryConfig{
		MetricsEnabled: false,
		TraceExporter:  "stdout",
	})

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, "none", cfg.MetricExporter)
	assert.True(t, cfg.EnableTracing)
}

func TestTraceCorrelation(t *testing.T) {
	newTestProviders(t)

	ctx, span := otel.Tracer("test").Start(context.Background(), "standings.load")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	// the id survives a round trip through the logging context
	ctx = WithTraceID(ctx, traceID)
	assert.Equal(t, traceID, GetTraceID(ctx))
}

func TestCreateBusinessMetrics(t *testing.T) {
	providers := newTestProviders(t)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	instruments := map[string]any{
		"http_requests_total":   metrics.HTTPRequestsTotal,
		"http_request_duration": metrics.HTTPRequestDuration,
		"http_active_requests":  metrics.HTTPActiveRequests,
		"source_loads_total":    metrics.SourceLoadsTotal,
		"source_load_duration":  metrics.SourceLoadDuration,
		"source_rows_fetched":   metrics.SourceRowsFetched,
		"rows_rejected":         metrics.RowsRejected,
		"sessions_inconsistent": metrics.SessionsInconsistent,
		"snapshot_cache_hits":   metrics.SnapshotCacheHits,
		"snapshot_cache_misses": metrics.SnapshotCacheMisses,
		"source_refreshes":      metrics.SourceRefreshes,
		"report_exports":        metrics.ReportExports,
		"system_errors":         metrics.SystemErrors,
	}
	for name, instrument := range instruments {
		assert.NotNil(t, instrument, name)
	}
}

func TestRecordHelpers(t *testing.T) {
	providers := newTestProviders(t)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()

	// Recording must not panic, with or without metrics wired
	RecordLoadMetrics(ctx, metrics, "sheets", 120*time.Millisecond, 42, 3, 1, nil)
	RecordLoadMetrics(ctx, metrics, "sheets", 50*time.Millisecond, 0, 0, 0, os.ErrDeadlineExceeded)
	RecordCacheLookup(ctx, metrics, true)
	RecordCacheLookup(ctx, metrics, false)
	RecordRefresh(ctx, metrics, "sample")
	RecordExport(ctx, metrics, "csv")

	RecordLoadMetrics(ctx, nil, "sheets", time.Second, 1, 0, 0, nil)
	RecordCacheLookup(ctx, nil, true)
	RecordRefresh(ctx, nil, "file")
	RecordExport(ctx, nil, "json")
}

func TestRuntimeCollector(t *testing.T) {
	providers := newTestProviders(t)

	collector, err := NewRuntimeCollector(providers.Meter, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		collector.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	collector.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}
