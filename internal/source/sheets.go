package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// SheetsConfig identifies the worksheet to read and the service account to
// read it with. CredentialsJSON takes precedence over CredentialsFile when
// both are set.
type SheetsConfig struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string
	CredentialsJSON string

	// RetryDelay is the pause before the single retry of a failed fetch.
	RetryDelay time.Duration
}

// SheetsSource reads session results from one Google Sheets worksheet
// using a service account. Access is read-only; the dashboard never
// writes to the spreadsheet.
type SheetsSource struct {
	config  SheetsConfig
	service *sheets.Service
	logger  *slog.Logger
}

// NewSheetsSource builds the Sheets client. It fails when credentials are
// missing or malformed; callers treat that the same as an unreachable
// source and fall back to the sample dataset.
func NewSheetsSource(ctx context.Context, config SheetsConfig, logger *slog.Logger) (*SheetsSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: no spreadsheet id configured", ErrUnavailable)
	}
	if config.Worksheet == "" {
		config.Worksheet = "results"
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}

	credentials := []byte(config.CredentialsJSON)
	if len(credentials) == 0 {
		if config.CredentialsFile == "" {
			return nil, fmt.Errorf("%w: no service account credentials configured", ErrUnavailable)
		}
		data, err := os.ReadFile(config.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read credentials file: %v", ErrUnavailable, err)
		}
		credentials = data
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("%w: create sheets service: %v", ErrUnavailable, err)
	}

	logger.InfoContext(ctx, "google sheets source initialized",
		slog.String("spreadsheet_id", config.SpreadsheetID),
		slog.String("worksheet", config.Worksheet))

	return &SheetsSource{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

func (s *SheetsSource) ID() string {
	return "sheets:" + s.config.SpreadsheetID + "/" + s.config.Worksheet
}

func (s *SheetsSource) Kind() domain.SourceKind {
	return domain.SourceSheets
}

// Fetch reads the whole worksheet. A failed read is retried once after a
// short delay; the second failure wraps ErrUnavailable.
func (s *SheetsSource) Fetch(ctx context.Context) (*Snapshot, error) {
	values, err := s.readValues(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "sheets fetch failed, retrying once",
			slog.String("spreadsheet_id", s.config.SpreadsheetID),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-time.After(s.config.RetryDelay):
		}

		values, err = s.readValues(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	snapshot := &Snapshot{
		Kind:      domain.SourceSheets,
		FetchedAt: time.Now().UTC(),
	}
	if len(values) > 0 {
		snapshot.Headers = stringifyRow(values[0])
		snapshot.Rows = make([][]string, 0, len(values)-1)
		for _, row := range values[1:] {
			snapshot.Rows = append(snapshot.Rows, stringifyRow(row))
		}
	}

	s.logger.InfoContext(ctx, "fetched rows from google sheets",
		slog.String("worksheet", s.config.Worksheet),
		slog.Int("row_count", len(snapshot.Rows)))

	return snapshot, nil
}

// Status probes the spreadsheet step by step so the diagnostics endpoint
// can say exactly where access breaks down.
func (s *SheetsSource) Status(ctx context.Context) domain.SourceStatus {
	status := domain.SourceStatus{
		Kind:       domain.SourceSheets,
		Configured: true,
	}

	spreadsheet, err := s.service.Spreadsheets.Get(s.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		status.Error = fmt.Sprintf("spreadsheet not reachable: %v", err)
		return status
	}
	status.SpreadsheetFound = true

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.config.Worksheet {
			status.WorksheetFound = true
			break
		}
	}
	if !status.WorksheetFound {
		status.Error = fmt.Sprintf("worksheet %q not found", s.config.Worksheet)
		return status
	}

	values, err := s.readValues(ctx)
	if err != nil {
		status.Error = fmt.Sprintf("read worksheet: %v", err)
		return status
	}
	if len(values) > 0 {
		status.Headers = stringifyRow(values[0])
	}

	return status
}

func (s *SheetsSource) readValues(ctx context.Context) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.config.SpreadsheetID, s.config.Worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read values from %s: %v", s.config.Worksheet, err)
	}
	return resp.Values, nil
}

// stringifyRow converts one row of API cells to strings. Formatted values
// arrive as strings already; unformatted numeric cells come back as
// float64 and are rendered without a forced exponent.
func stringifyRow(row []interface{}) []string {
	cells := make([]string, len(row))
	for i, v := range row {
		switch value := v.(type) {
		case string:
			cells[i] = value
		case float64:
			cells[i] = strconv.FormatFloat(value, 'f', -1, 64)
		case bool:
			cells[i] = strconv.FormatBool(value)
		default:
			cells[i] = fmt.Sprint(value)
		}
	}
	return cells
}
