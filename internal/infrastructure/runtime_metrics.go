package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records Go runtime statistics through OpenTelemetry gauges.
type RuntimeMetrics struct {
	goRoutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSys    metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
}

// NewRuntimeMetrics creates the runtime metric instruments
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	heapSys, err := meter.Int64Gauge(
		"runtime_heap_sys_bytes",
		metric.WithDescription("Bytes of heap memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"runtime_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goRoutines: goRoutines,
		heapAlloc:  heapAlloc,
		heapSys:    heapSys,
		gcPause:    gcPause,
		uptime:     uptime,
	}, nil
}

// RuntimeStats holds a point-in-time view of the Go runtime
type RuntimeStats struct {
	GoRoutines  int64
	HeapAlloc   int64
	HeapSys     int64
	GCCount     uint32
	LastGCPause time.Duration
	Uptime      time.Duration
	Timestamp   time.Time
}

// Collect reads the runtime state and records it. GC pauses are recorded
// only when a collection happened since the previous call.
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time, lastGCCount uint32) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &RuntimeStats{
		GoRoutines:  int64(runtime.NumGoroutine()),
		HeapAlloc:   int64(memStats.HeapAlloc),
		HeapSys:     int64(memStats.HeapSys),
		GCCount:     memStats.NumGC,
		LastGCPause: time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		Uptime:      time.Since(startTime),
		Timestamp:   time.Now(),
	}

	rm.goRoutines.Record(ctx, stats.GoRoutines)
	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.heapSys.Record(ctx, stats.HeapSys)
	rm.uptime.Record(ctx, stats.Uptime.Seconds())

	if stats.GCCount > lastGCCount && stats.LastGCPause > 0 {
		rm.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}

	return stats
}

// RuntimeCollector periodically samples runtime metrics until stopped.
type RuntimeCollector struct {
	metrics     *RuntimeMetrics
	startTime   time.Time
	interval    time.Duration
	lastGCCount uint32
	stopCh      chan struct{}
}

// NewRuntimeCollector creates a collector sampling at the given interval
func NewRuntimeCollector(meter metric.Meter, interval time.Duration) (*RuntimeCollector, error) {
	metrics, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	return &RuntimeCollector{
		metrics:   metrics,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins periodic collection. It blocks until Stop is called or the
// context is cancelled, so run it on its own goroutine.
func (rc *RuntimeCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	rc.collect(ctx)

	for {
		select {
		case <-ticker.C:
			rc.collect(ctx)
		case <-rc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the collection loop started by Start.
func (rc *RuntimeCollector) Stop() {
	close(rc.stopCh)
}

func (rc *RuntimeCollector) collect(ctx context.Context) {
	stats := rc.metrics.Collect(ctx, rc.startTime, rc.lastGCCount)
	rc.lastGCCount = stats.GCCount
}
