package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/kairadc/poker-standings/internal/errors"
)

// ContentTypeValidator rejects bodied requests whose Content-Type is not
// in the allowed set. Prefix matching keeps charset parameters working.
// GET, HEAD, DELETE and bodyless requests pass through untouched.
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodDelete:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				writeProblem(w, r, problemDoc{
					Type:   apierrors.TypeValidation,
					Title:  "Bad Request",
					Status: http.StatusBadRequest,
					Detail: "Content-Type header is required for requests with a body",
				})
				return
			}

			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeProblem(w, r, problemDoc{
				Type:   apierrors.TypeValidation,
				Title:  "Unsupported Media Type",
				Status: http.StatusUnsupportedMediaType,
				Detail: fmt.Sprintf("Content type %q is not supported, use one of: %s", contentType, strings.Join(contentTypes, ", ")),
			})
		})
	}
}

// QueryParamValidator validates query parameters and answers invalid ones
// with problem documents through the shared error handler, so handlers
// can bail out with a bare return.
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt parses an integer parameter and checks it against the
// inclusive [min, max] range. An absent parameter yields defaultValue.
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}
	if n < min || n > max {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}

	return n, true
}

// ValidateEnum checks a parameter against its allowed values. An absent
// parameter yields defaultValue.
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	if !slices.Contains(allowed, value) {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
		return "", false
	}

	return value, true
}

// ValidateDate parses an ISO date (YYYY-MM-DD) parameter into a UTC
// midnight timestamp. Returns nil when the parameter is absent.
func (v *QueryParamValidator) ValidateDate(w http.ResponseWriter, r *http.Request, param string) (*time.Time, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil, true
	}

	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a date in YYYY-MM-DD form", param)))
		return nil, false
	}

	parsed = parsed.UTC()
	return &parsed, true
}
