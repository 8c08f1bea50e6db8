package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/kairadc/poker-standings/internal/config"
	"github.com/kairadc/poker-standings/internal/exporter"
	"github.com/kairadc/poker-standings/internal/infrastructure"
	"github.com/kairadc/poker-standings/internal/services"
	"github.com/kairadc/poker-standings/internal/standings"
	"github.com/kairadc/poker-standings/internal/validation"
	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

func main() {
	outputDir := flag.String("out", "", "output directory for report files (defaults to the configured reports dir)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout for fetch and export")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *outputDir == "" {
		*outputDir = cfg.Reports.OutputDir
	}
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(*outputDir); err != nil {
		logger.Error("output directory is unusable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Tag the whole run with one trace id so its log lines correlate.
	ctx = infrastructure.EnsureTraceID(ctx)
	logger = infrastructure.LoggerWithContext(ctx)

	primary, fallback := services.BuildSources(ctx, cfg.Source, logger)

	aggCfg := standings.DefaultAggregatorConfig()
	if cfg.Reports.RecentSessions > 0 {
		aggCfg.RecentSessions = cfg.Reports.RecentSessions
	}

	svc := services.NewStandingsService(primary, fallback, nil, nil, aggCfg, logger)

	var filter domain.SessionFilter

	standingsRows, quality, err := svc.Standings(ctx, filter)
	if err != nil {
		logger.Error("failed to compute standings", "error", err)
		os.Exit(1)
	}

	sessionRows, _, err := svc.Sessions(ctx, filter)
	if err != nil {
		logger.Error("failed to compute session history", "error", err)
		os.Exit(1)
	}

	overview, _, err := svc.Overview(ctx, filter)
	if err != nil {
		logger.Error("failed to compute overview", "error", err)
		os.Exit(1)
	}

	if quality.DemoMode {
		logger.Warn("configured source unavailable, report uses bundled sample data")
	}

	exp := exporter.NewReportExporter(*outputDir, logger)

	if err := exp.ExportStandings(standingsRows, "standings.csv"); err != nil {
		logger.Error("standings export failed", "error", err)
		os.Exit(1)
	}
	if err := exp.ExportSessions(sessionRows, "sessions.csv"); err != nil {
		logger.Error("sessions export failed", "error", err)
		os.Exit(1)
	}
	if err := exp.ExportOverview(overview, quality, "overview.json"); err != nil {
		logger.Error("overview export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("report written",
		"output_dir", *outputDir,
		"players", len(standingsRows),
		"sessions", len(sessionRows),
		"source", string(quality.Source),
		"demo_mode", quality.DemoMode)
}
