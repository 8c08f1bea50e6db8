package domain

import "time"

// SourceKind identifies where a snapshot of rows came from.
type SourceKind string

const (
	SourceSheets SourceKind = "sheets"
	SourceFile   SourceKind = "file"
	SourceSample SourceKind = "sample"
)

// DataQuality describes the provenance and health of the data behind a set
// of computed tables. It travels with every dashboard payload so the
// frontend can show the demo-mode banner and per-load warnings without a
// second request.
type DataQuality struct {
	// Source is the kind of row source that produced the snapshot.
	Source SourceKind `json:"source"`

	// DemoMode is true when the bundled sample dataset is being served,
	// either because no source is configured or because the configured
	// source was unreachable and the service fell back.
	DemoMode bool `json:"demo_mode"`

	// FetchedAt is when the underlying snapshot was read from the source.
	// Cached loads keep the original fetch time.
	FetchedAt time.Time `json:"fetched_at"`

	// Schema is the header layout detected for the snapshot.
	Schema ResultsSchema `json:"schema"`

	// RowCount is the number of data rows fetched, before validation.
	RowCount int `json:"row_count"`

	// Issues are load-level notices: fallback explanations and other
	// conditions that changed what is being served.
	Issues []string `json:"issues,omitempty"`

	// RejectedRows lists every row excluded by validation.
	RejectedRows []RejectedRow `json:"rejected_rows,omitempty"`

	// InconsistentSessions lists session ids that violate the zero-sum
	// invariant or lost rows to validation, sorted ascending.
	InconsistentSessions []string `json:"inconsistent_sessions,omitempty"`

	// Warnings are human-readable summaries of the two lists above.
	Warnings []string `json:"warnings,omitempty"`
}

// SourceStatus reports connection diagnostics for the configured row
// source. It answers "why am I seeing demo data" without exposing
// credentials.
type SourceStatus struct {
	// Kind is the source the service is configured to use.
	Kind SourceKind `json:"kind"`

	// Configured is true when the settings needed to reach the source are
	// present (for Sheets: spreadsheet id and credentials).
	Configured bool `json:"configured"`

	// SpreadsheetFound and WorksheetFound report how far the last probe
	// got. Both false when Configured is false.
	SpreadsheetFound bool `json:"spreadsheet_found"`
	WorksheetFound   bool `json:"worksheet_found"`

	// Headers is the header row of the worksheet when it was reachable.
	Headers []string `json:"headers,omitempty"`

	// Error is the terminal failure of the last probe, empty on success.
	Error string `json:"error,omitempty"`
}
