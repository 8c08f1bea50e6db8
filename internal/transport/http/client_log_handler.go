package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kairadc/poker-standings/internal/errors"
)

// ClientLogHandler receives log entries from the dashboard frontend so
// browser-side failures land in the same structured log as server events.
type ClientLogHandler struct {
	logger *slog.Logger
}

func NewClientLogHandler(logger *slog.Logger) *ClientLogHandler {
	return &ClientLogHandler{
		logger: logger.With(slog.String("handler", "client_log")),
	}
}

// LogRequest is one browser log entry. Unknown levels log as info rather
// than being rejected; a frontend bug report should never bounce.
type LogRequest struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty"`
}

func (lr LogRequest) slogLevel() slog.Level {
	switch lr.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Handle processes POST /api/logs.
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, errors.NewValidationError("Invalid request format"))
		return
	}
	if req.Message == "" {
		errors.WriteError(w, errors.NewValidationError("Log message is required"))
		return
	}

	attrs := []slog.Attr{slog.String("client_source", req.Source)}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}
	h.logger.LogAttrs(r.Context(), req.slogLevel(), req.Message, attrs...)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}
