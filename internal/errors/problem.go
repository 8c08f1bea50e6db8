package errors

import (
	"encoding/json"
	"net/http"
)

// ProblemDetails is an RFC 7807 problem document. Extensions are
// flattened into the top-level JSON object on marshal.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// MarshalJSON inlines the extension fields next to the standard ones.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails builds a problem document with an empty extension map.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension sets one extension member and returns the document for
// chaining.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// NewSourceUnavailableProblem reports that the configured row source could
// not be reached after retrying.
func NewSourceUnavailableProblem(detail, instance, traceID string) *ProblemDetails {
	if detail == "" {
		detail = "The configured row source could not be reached. Check connectivity and credentials, or enable the bundled sample."
	}
	return NewProblemDetails(
		http.StatusServiceUnavailable,
		TypeSourceUnavailable,
		"Row Source Unavailable",
		detail,
		instance,
	).WithExtension("trace_id", traceID).
		WithExtension("retry_after", 30)
}

// NewSchemaProblem reports that the worksheet headers match no known layout.
// The missing column list helps the sheet owner fix the header row.
func NewSchemaProblem(detail, instance, traceID string, headers, missing []string) *ProblemDetails {
	problem := NewProblemDetails(
		http.StatusUnprocessableEntity,
		TypeSchema,
		"Unrecognized Results Layout",
		detail,
		instance,
	).WithExtension("trace_id", traceID)

	if len(headers) > 0 {
		problem.WithExtension("headers", headers)
	}
	if len(missing) > 0 {
		problem.WithExtension("missing_columns", missing)
	}
	return problem
}

// NewPlayerNotFoundProblem reports an unknown player name
func NewPlayerNotFoundProblem(player, instance, traceID string) *ProblemDetails {
	return NewProblemDetails(
		http.StatusNotFound,
		TypePlayerNotFound,
		"Player Not Found",
		"No sessions are recorded for player \""+player+"\".",
		instance,
	).WithExtension("trace_id", traceID).
		WithExtension("player", player)
}

// NewDimensionProblem reports an unknown leaderboard dimension
func NewDimensionProblem(dimension, instance, traceID string) *ProblemDetails {
	return NewProblemDetails(
		http.StatusBadRequest,
		TypeDimension,
		"Unknown Leaderboard Dimension",
		"Leaderboards can be grouped by season, venue, or game_type.",
		instance,
	).WithExtension("trace_id", traceID).
		WithExtension("dimension", dimension)
}
