package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// HealthService answers the health, readiness and version endpoints.
type HealthService struct {
	version   string
	buildTime string
	standings *StandingsService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health endpoint response shape.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth reports one dependency inside a readiness response.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service around the standings service
// whose dependencies it probes.
func NewHealthService(version, buildTime string, standings *StandingsService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		standings: standings,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// LivenessCheck returns liveness status. It never probes dependencies;
// a live process that cannot reach its source is still live.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports readiness plus per-dependency detail. The service
// is always able to serve something because the sample dataset backs every
// load, so an unreachable source degrades the check without flipping the
// overall status.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["source"] = hs.checkSourceHealth(ctx)
	status.Services["snapshot_cache"] = hs.checkCacheHealth()

	return status
}

// Version returns version and build information.
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":        hs.version,
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
		"start_time":     hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkSourceHealth(ctx context.Context) ServiceHealth {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	probe := hs.standings.SourceStatus(probeCtx)
	if probe.Error != "" {
		return ServiceHealth{Status: "degraded", Message: probe.Error}
	}
	if probe.Kind == domain.SourceSample {
		return ServiceHealth{Status: "ready", Message: "serving bundled sample data"}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkCacheHealth() ServiceHealth {
	if hs.standings.Cached() {
		return ServiceHealth{Status: "ready", Message: "snapshot cached"}
	}
	return ServiceHealth{Status: "ready", Message: "cold, next load fetches from source"}
}
