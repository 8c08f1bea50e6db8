// Package source provides the row sources the dashboard can read session
// results from: a Google Sheets worksheet, a local CSV or XLSX file, and
// the bundled sample dataset used for demo mode.
//
// All sources produce the same thing: one ordered Snapshot of raw string
// rows plus the header row. Nothing here interprets the cells; schema
// detection and coercion belong to the standings package. Sources never
// write back to their origin.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// ErrUnavailable wraps every terminal fetch failure: unreachable API,
// missing file, unreadable content. Callers fall back to the sample
// source when they see it.
var ErrUnavailable = errors.New("row source unavailable")

// Snapshot is one fetched copy of the sheet: the header row and the data
// rows below it, in source order, all cells stringified.
type Snapshot struct {
	Headers   []string
	Rows      [][]string
	Kind      domain.SourceKind
	FetchedAt time.Time
}

// RowSource is a read-only client for one results sheet.
type RowSource interface {
	// ID identifies the source instance; it is the cache key for
	// snapshots fetched from it.
	ID() string

	// Kind reports which kind of source this is.
	Kind() domain.SourceKind

	// Fetch reads the current rows. Implementations retry transient
	// failures once; a returned error wraps ErrUnavailable.
	Fetch(ctx context.Context) (*Snapshot, error)

	// Status probes the source without fetching data, for the
	// connection diagnostics endpoint.
	Status(ctx context.Context) domain.SourceStatus
}
