package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	gocache "github.com/patrickmn/go-cache"

	"github.com/kairadc/poker-standings/internal/config"
	apierrors "github.com/kairadc/poker-standings/internal/errors"
	"github.com/kairadc/poker-standings/internal/infrastructure"
	customMiddleware "github.com/kairadc/poker-standings/internal/middleware"
	"github.com/kairadc/poker-standings/internal/services"
	"github.com/kairadc/poker-standings/internal/standings"
	handlers "github.com/kairadc/poker-standings/internal/transport/http"
)

const (
	// VERSION is the application version reported by /api/version.
	VERSION = "1.1.0"

	// AppName is the human-readable service name.
	AppName = "Poker Standings Dashboard"
)

// BuildTime is stamped at build via -ldflags "-X ...app.BuildTime=...".
// Empty when built without it.
var BuildTime = ""

// Application is the composed service: configuration, logging, telemetry,
// row sources, services, router and HTTP server, wired in that order.
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	StandingsService *services.StandingsService
	HealthService    *services.HealthService
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.BusinessMetrics

	collector *infrastructure.RuntimeCollector
}

// NewApplication creates the application from the default configuration
// sources (config file plus POKER_ environment variables).
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig creates the application from an explicit
// configuration, wiring every dependency.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("source_kind", cfg.Source.EffectiveKind()))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.FromTelemetryConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds sources, the snapshot cache and the services
// in dependency order.
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	primary, fallback := services.BuildSources(context.Background(), a.Config.Source, a.Logger)

	snapshots := gocache.New(a.Config.Cache.TTL, a.Config.Cache.CleanupInterval)

	aggCfg := standings.DefaultAggregatorConfig()
	if a.Config.Reports.RecentSessions > 0 {
		aggCfg.RecentSessions = a.Config.Reports.RecentSessions
	}

	a.StandingsService = services.NewStandingsService(
		primary, fallback, snapshots, metrics, aggCfg, a.Logger)
	a.HealthService = services.NewHealthService(VERSION, BuildTime, a.StandingsService, a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware order: RequestID and RealIP first, then OTel, logging,
// recovery, headers, CORS, rate limiting, compression.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		r.Use(otelMiddleware.Handler)

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Compress(5))

		a.setupAPIRoutes(r)
	})

	// Prometheus exposition stays outside the middleware group; scrapes
	// should not count against rate limits or show up in request logs.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures the /api endpoints.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.ContentTypeValidator("application/json"))

		// Unmatched API paths answer with problem documents, not the
		// chi plain-text defaults.
		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		healthHandler := handlers.NewHealthHandler(a.HealthService)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Post("/logs", handlers.NewClientLogHandler(a.Logger).Handle)

		standingsHandler := handlers.NewStandingsHandler(
			a.StandingsService, a.Metrics, a.Logger, errorHandler)
		r.Mount("/", standingsHandler.Routes())
	})
}

// corsConfig maps the security settings onto the CORS middleware.
// Content-Disposition is exposed so the frontend can read export
// filenames.
func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer builds the http.Server with the configured timeouts.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the server and background collectors. cancel is invoked
// when the listener fails so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if a.OTelProviders.MeterProvider != nil {
		collector, err := infrastructure.NewRuntimeCollector(a.OTelProviders.Meter, 15*time.Second)
		if err != nil {
			a.Logger.WarnContext(ctx, "runtime metrics collector unavailable",
				slog.String("error", err.Error()))
		} else {
			a.collector = collector
			go collector.Start(ctx)
		}
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Warm the snapshot cache so the first dashboard request is served
	// from memory. A failure here is an operational state, not a startup
	// error; the load path reports it again on demand.
	go func() {
		warmCtx, cancelWarm := context.WithTimeout(ctx, 30*time.Second)
		defer cancelWarm()

		if _, err := a.StandingsService.Load(warmCtx); err != nil {
			a.Logger.WarnContext(warmCtx, "startup snapshot load failed",
				slog.String("error", err.Error()))
			return
		}
		a.Logger.InfoContext(warmCtx, "snapshot cache warmed")
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop drains in-flight requests, stops the runtime collector and
// flushes telemetry, all within the configured shutdown timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.collector != nil {
		a.collector.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or the server fails.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
