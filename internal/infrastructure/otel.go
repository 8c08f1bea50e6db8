package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kairadc/poker-standings/internal/config"
)

const (
	ServiceName    = "poker-standings"
	ServiceVersion = "1.0.0"
	MeterName      = "poker-standings"
)

// OTelConfig selects the telemetry exporters. Supported trace exporters
// are "stdout" and "none"; metric exporters are "prometheus" and "none".
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string
	MetricExporter string
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders bundles the initialized telemetry stack. Meter is always
// usable; when metrics are disabled it is a noop meter, so instrument
// creation never needs a nil check.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig enables everything: stdout traces at full sampling
// and a prometheus metric endpoint.
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// FromTelemetryConfig maps the application telemetry settings onto an
// OTelConfig, keeping defaults for anything the settings do not cover.
func FromTelemetryConfig(cfg config.TelemetryConfig) *OTelConfig {
	otelCfg := DefaultOTelConfig()
	if cfg.ServiceName != "" {
		otelCfg.ServiceName = cfg.ServiceName
	}
	otelCfg.EnableMetrics = cfg.MetricsEnabled
	if !cfg.MetricsEnabled {
		otelCfg.MetricExporter = "none"
	}
	otelCfg.TraceExporter = cfg.TraceExporter
	otelCfg.EnableTracing = cfg.TraceExporter != "" && cfg.TraceExporter != "none"
	return otelCfg
}

// InitializeOTel builds the tracer and meter providers and installs them
// as the globals the middleware reads through the otel package.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", instanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		tp, err := newTracerProvider(cfg, res)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		if tp != nil {
			providers.TracerProvider = tp
			providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
			otel.SetTracerProvider(tp)
		}
	}

	if cfg.EnableMetrics {
		mp, promHandler, err := newMeterProvider(cfg, res)
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		if mp != nil {
			providers.MeterProvider = mp
			providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
			providers.PrometheusHTTP = promHandler
			otel.SetMeterProvider(mp)
		}
	}

	if providers.Meter == nil {
		providers.Meter = noopmetric.NewMeterProvider().Meter(MeterName)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing", cfg.EnableTracing),
		slog.Bool("metrics", cfg.EnableMetrics))

	return providers, nil
}

func newTracerProvider(cfg *OTelConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	switch cfg.TraceExporter {
	case "stdout":
		var err error
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	), nil
}

func newMeterProvider(cfg *OTelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, http.Handler, error) {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return nil, nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		return mp, promhttp.Handler(), nil
	case "none":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}
}

// Shutdown flushes and stops both providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		errs = append(errs, p.TracerProvider.Shutdown(ctx))
	}
	if p.MeterProvider != nil {
		errs = append(errs, p.MeterProvider.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}

	p.Logger.InfoContext(ctx, "telemetry shutdown complete")
	return nil
}

func instanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext returns the active span's trace id, or "" when the
// context carries no valid span.
func TraceIDFromContext(ctx context.Context) string {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// BusinessMetrics holds the dashboard's application metrics. The HTTP
// instruments are driven by the middleware, the rest by the standings
// service and report exporters.
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	SourceLoadsTotal     metric.Int64Counter
	SourceLoadDuration   metric.Float64Histogram
	SourceRowsFetched    metric.Int64Counter
	RowsRejected         metric.Int64Counter
	SessionsInconsistent metric.Int64Counter

	SnapshotCacheHits   metric.Int64Counter
	SnapshotCacheMisses metric.Int64Counter
	SourceRefreshes     metric.Int64Counter

	ReportExports metric.Int64Counter
	SystemErrors  metric.Int64Counter
}

// instrumentSet creates instruments on one meter and keeps the first
// error, so a metrics block can be assembled without an error check per
// instrument.
type instrumentSet struct {
	meter metric.Meter
	err   error
}

func (s *instrumentSet) counter(name, desc string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("create %s: %w", name, err)
	}
	return c
}

func (s *instrumentSet) seconds(name, desc string) metric.Float64Histogram {
	h, err := s.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("create %s: %w", name, err)
	}
	return h
}

func (s *instrumentSet) upDownCounter(name, desc string) metric.Int64UpDownCounter {
	c, err := s.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("create %s: %w", name, err)
	}
	return c
}

// CreateBusinessMetrics registers every application instrument on the
// meter.
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	set := &instrumentSet{meter: meter}

	metrics := &BusinessMetrics{
		HTTPRequestsTotal:   set.counter("http_requests_total", "Total number of HTTP requests"),
		HTTPRequestDuration: set.seconds("http_request_duration_seconds", "HTTP request duration in seconds"),
		HTTPActiveRequests:  set.upDownCounter("http_active_requests", "Number of active HTTP requests"),

		SourceLoadsTotal:     set.counter("source_loads_total", "Total number of row source loads"),
		SourceLoadDuration:   set.seconds("source_load_duration_seconds", "Row source load duration in seconds"),
		SourceRowsFetched:    set.counter("source_rows_fetched_total", "Total number of rows fetched from the source"),
		RowsRejected:         set.counter("rows_rejected_total", "Total number of rows rejected during validation"),
		SessionsInconsistent: set.counter("sessions_inconsistent_total", "Total number of sessions flagged inconsistent"),

		SnapshotCacheHits:   set.counter("snapshot_cache_hits_total", "Total number of snapshot cache hits"),
		SnapshotCacheMisses: set.counter("snapshot_cache_misses_total", "Total number of snapshot cache misses"),
		SourceRefreshes:     set.counter("source_refreshes_total", "Total number of forced source refreshes"),

		ReportExports: set.counter("report_exports_total", "Total number of report exports"),
		SystemErrors:  set.counter("system_errors_total", "Total number of system errors"),
	}
	if set.err != nil {
		return nil, set.err
	}

	return metrics, nil
}

// RecordLoadMetrics records one row source load. Row counts are skipped
// on failed loads so partial fetches do not pollute the totals.
func RecordLoadMetrics(ctx context.Context, metrics *BusinessMetrics, source string, duration time.Duration, rows, rejected, inconsistent int, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	loadAttrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	metrics.SourceLoadsTotal.Add(ctx, 1, loadAttrs)
	metrics.SourceLoadDuration.Record(ctx, duration.Seconds(), loadAttrs)

	if err != nil {
		return
	}

	rowAttrs := metric.WithAttributes(attribute.String("source", source))
	metrics.SourceRowsFetched.Add(ctx, int64(rows), rowAttrs)
	if rejected > 0 {
		metrics.RowsRejected.Add(ctx, int64(rejected), rowAttrs)
	}
	if inconsistent > 0 {
		metrics.SessionsInconsistent.Add(ctx, int64(inconsistent), rowAttrs)
	}
}

// RecordCacheLookup records a snapshot cache hit or miss.
func RecordCacheLookup(ctx context.Context, metrics *BusinessMetrics, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.SnapshotCacheHits.Add(ctx, 1)
		return
	}
	metrics.SnapshotCacheMisses.Add(ctx, 1)
}

// RecordRefresh records a forced source refresh.
func RecordRefresh(ctx context.Context, metrics *BusinessMetrics, source string) {
	if metrics == nil {
		return
	}
	metrics.SourceRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordExport records one report export by format.
func RecordExport(ctx context.Context, metrics *BusinessMetrics, format string) {
	if metrics == nil {
		return
	}
	metrics.ReportExports.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}
