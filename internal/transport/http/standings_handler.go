package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/kairadc/poker-standings/internal/errors"
	"github.com/kairadc/poker-standings/internal/exporter"
	"github.com/kairadc/poker-standings/internal/infrastructure"
	customMiddleware "github.com/kairadc/poker-standings/internal/middleware"
	"github.com/kairadc/poker-standings/internal/services"
	"github.com/kairadc/poker-standings/internal/standings"
	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// StandingsHandler serves the dashboard API with RFC 7807 error responses.
type StandingsHandler struct {
	service      StandingsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *customMiddleware.QueryParamValidator
	metrics      *infrastructure.BusinessMetrics
}

// NewStandingsHandler creates the dashboard handler. metrics may be nil in
// tests; export counters are skipped then.
func NewStandingsHandler(service StandingsServiceInterface, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StandingsHandler {
	return &StandingsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "standings_handler")),
		errorHandler: errorHandler,
		validator:    customMiddleware.NewQueryParamValidator(logger, errorHandler),
		metrics:      metrics,
	}
}

// Routes returns the dashboard routes, mounted under /api by the app.
func (h *StandingsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/standings", h.GetStandings)
	r.Get("/standings/export", h.ExportStandings)
	r.Get("/sessions", h.GetSessions)
	r.Get("/sessions/export", h.ExportSessions)
	r.Get("/leaderboards/{dimension}", h.GetLeaderboards)

	r.Route("/players/{player}", func(r chi.Router) {
		r.Use(h.PlayerCtx)
		r.Get("/", h.GetPlayerProfile)
	})

	r.Post("/refresh", h.Refresh)
	r.Get("/source/status", h.GetSourceStatus)

	return r
}

// PlayerCtx middleware validates the player path parameter.
func (h *StandingsHandler) PlayerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		player, err := url.PathUnescape(chi.URLParam(r, "player"))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("player", "Invalid player name encoding"))
			return
		}

		if domain.NormalizePlayerKey(player) == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("player", "Player name is required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// parseFilter reads the shared filter query parameters: from, to (ISO
// dates), players (comma list), venue, game_type, season. On a validation
// failure the problem response has already been written and ok is false.
func (h *StandingsHandler) parseFilter(w http.ResponseWriter, r *http.Request) (domain.SessionFilter, bool) {
	var filter domain.SessionFilter

	from, ok := h.validator.ValidateDate(w, r, "from")
	if !ok {
		return filter, false
	}
	to, ok := h.validator.ValidateDate(w, r, "to")
	if !ok {
		return filter, false
	}
	filter.From = from
	filter.To = to

	if raw := r.URL.Query().Get("players"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if key := domain.NormalizePlayerKey(name); key != "" {
				filter.Players = append(filter.Players, key)
			}
		}
	}

	filter.Venue = strings.TrimSpace(r.URL.Query().Get("venue"))
	filter.GameType = strings.TrimSpace(r.URL.Query().Get("game_type"))
	filter.Season = strings.TrimSpace(r.URL.Query().Get("season"))

	return filter, true
}

// GetOverview handles GET /api/overview
func (h *StandingsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	overview, quality, err := h.service.Overview(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"data":         overview,
		"data_quality": quality,
	})
}

// GetStandings handles GET /api/standings
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	rows, quality, err := h.service.Standings(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"data":         rows,
		"count":        len(rows),
		"data_quality": quality,
	})
}

// ExportStandings handles GET /api/standings/export, streaming the
// standings table as a CSV attachment.
func (h *StandingsHandler) ExportStandings(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	rows, _, err := h.service.Standings(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeCSVAttachment(w, r, "standings", func(w http.ResponseWriter) error {
		return exporter.WriteStandingsCSV(w, rows)
	})
}

// GetSessions handles GET /api/sessions
func (h *StandingsHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	rows, quality, err := h.service.Sessions(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"data":         rows,
		"count":        len(rows),
		"data_quality": quality,
	})
}

// ExportSessions handles GET /api/sessions/export
func (h *StandingsHandler) ExportSessions(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	rows, _, err := h.service.Sessions(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeCSVAttachment(w, r, "sessions", func(w http.ResponseWriter) error {
		return exporter.WriteSessionsCSV(w, rows)
	})
}

// writeCSVAttachment sets download headers and streams the table. Once
// streaming has started a failure can only be logged, the status line is
// already on the wire.
func (h *StandingsHandler) writeCSVAttachment(w http.ResponseWriter, r *http.Request, table string, write func(http.ResponseWriter) error) {
	filename := fmt.Sprintf("%s_%s.csv", table, time.Now().UTC().Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := write(w); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed mid-stream",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)
		return
	}

	infrastructure.RecordExport(r.Context(), h.metrics, table+"_csv")

	h.logger.InfoContext(r.Context(), "csv export served",
		slog.String("table", table),
		slog.String("filename", filename),
	)
}

// GetPlayerProfile handles GET /api/players/{player}
func (h *StandingsHandler) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	player, err := url.PathUnescape(chi.URLParam(r, "player"))
	if err != nil {
		player = chi.URLParam(r, "player")
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	profile, quality, err := h.service.PlayerProfile(r.Context(), player, filter)
	if err != nil {
		if errors.Is(err, services.ErrPlayerNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.PlayerNotFoundError(player))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"data":         profile,
		"player":       profile.Standing.Player,
		"data_quality": quality,
	})
}

// GetLeaderboards handles GET /api/leaderboards/{dimension}
func (h *StandingsHandler) GetLeaderboards(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "dimension")

	dim, err := standings.ParseDimension(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidDimensionError(raw))
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	groups, quality, err := h.service.Leaderboards(r.Context(), dim, filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"data":         groups,
		"count":        len(groups),
		"dimension":    string(dim),
		"data_quality": quality,
	})
}

// Refresh handles POST /api/refresh: invalidate the cached snapshot and
// reload from the configured source.
func (h *StandingsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "manual refresh requested")

	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"message":      "snapshot reloaded",
		"data_quality": result.Quality,
	})
}

// GetSourceStatus handles GET /api/source/status, the "why am I seeing
// demo data" diagnostics endpoint.
func (h *StandingsHandler) GetSourceStatus(w http.ResponseWriter, r *http.Request) {
	status := h.service.SourceStatus(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}
