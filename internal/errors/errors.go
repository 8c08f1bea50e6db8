package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a typed error raised inside request handling. The error
// handler maps the code onto the problem taxonomy; everything else in
// the struct passes through to the response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// New creates an APIError without details.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError carrying a details payload.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// ValidationError names the query or body field that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrValidation reports a single invalid request parameter.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationError reports an invalid request without naming a field.
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, "VALIDATION_FAILED", message)
}

// PlayerNotFoundError reports a player with no recorded sessions.
func PlayerNotFoundError(player string) *APIError {
	return NewWithDetails(http.StatusNotFound, "PLAYER_NOT_FOUND", fmt.Sprintf("player %q has no recorded sessions", player), player)
}

// InvalidDimensionError reports an unknown leaderboard dimension.
func InvalidDimensionError(dimension string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("unknown leaderboard dimension %q", dimension), dimension)
}

// ErrorResponse is the plain-JSON error envelope used by endpoints that
// sit outside the problem+json taxonomy, such as client log ingestion.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// WriteError writes err as a plain-JSON error envelope.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(&ErrorResponse{Success: false, Error: err})
}
