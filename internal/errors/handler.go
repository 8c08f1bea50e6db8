// Package errors defines the API error taxonomy. Failures surface as RFC
// 7807 problem documents; ErrorHandler maps whatever error value a handler
// passes it onto that taxonomy.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/kairadc/poker-standings/internal/infrastructure"
	"github.com/kairadc/poker-standings/internal/source"
	"github.com/kairadc/poker-standings/internal/standings"
)

// Problem type URIs. Generic protocol failures first, then the
// domain-specific ones.
const (
	TypeValidation = "/errors/validation"
	TypeNotFound   = "/errors/not-found"
	TypeRateLimit  = "/errors/rate-limit"
	TypeInternal   = "/errors/internal"
	TypeTimeout    = "/errors/timeout"

	TypeSourceUnavailable = "/errors/source/unavailable"
	TypeSchema            = "/errors/source/schema"
	TypePlayerNotFound    = "/errors/players/not-found"
	TypeDimension         = "/errors/leaderboards/unknown-dimension"
)

// ErrorHandler converts errors to problem responses. With includeStack
// set, problems carry a stack extension; only development configs enable
// it.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes it as a problem document. A nil err
// writes nothing.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", traceID)
	if h.includeStack {
		problem.WithExtension("stack", stackTrace())
	}

	writeProblem(w, problem)
}

// writeProblem emits the document with the RFC 7807 media type.
// render.JSON always stamps application/json, so encoding happens here.
func writeProblem(w http.ResponseWriter, problem *ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	json.NewEncoder(w).Encode(problem)
}

// ErrorToProblem maps an error value onto the problem taxonomy. Typed
// errors carry their own mapping; anything untyped becomes a generic 500,
// so layers below the handlers wrap failures in typed errors when the
// client should see more than that.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	traceID := infrastructure.GetTraceID(r.Context())

	if errors.Is(err, source.ErrUnavailable) {
		return NewSourceUnavailableProblem(err.Error(), r.URL.Path, traceID)
	}

	var schemaErr *standings.SchemaError
	if errors.As(err, &schemaErr) {
		return NewSchemaProblem(err.Error(), r.URL.Path, traceID, schemaErr.Headers, schemaErr.Missing)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

// apiErrorToProblem keeps the APIError status and picks the problem type
// from the error code, falling back on the status class. The two domain
// codes delegate to their dedicated constructors, which carry richer
// extensions than the generic mapping.
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	traceID := infrastructure.GetTraceID(r.Context())

	switch apiErr.ErrorCode {
	case "PLAYER_NOT_FOUND":
		if player, ok := apiErr.Details.(string); ok {
			return NewPlayerNotFoundProblem(player, r.URL.Path, traceID).
				WithExtension("error_code", apiErr.ErrorCode)
		}
	case "INVALID_PARAMETER":
		if dimension, ok := apiErr.Details.(string); ok {
			return NewDimensionProblem(dimension, r.URL.Path, traceID).
				WithExtension("error_code", apiErr.ErrorCode)
		}
	}

	var problemType string
	switch {
	case apiErr.StatusCode == http.StatusNotFound:
		problemType = TypeNotFound
	case apiErr.StatusCode < http.StatusInternalServerError:
		problemType = TypeValidation
	default:
		problemType = TypeInternal
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// NotFound answers requests for routes that do not exist. Wired as the
// router fallback so unmatched paths get a problem document instead of
// the chi plain-text 404.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	writeProblem(w, problem)
}

// MethodNotAllowed answers requests that match a route with the wrong
// method.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeValidation,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	writeProblem(w, problem)
}

func stackTrace() string {
	buf := make([]byte, 8*1024)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
