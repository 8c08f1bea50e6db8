package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// ReportExporter writes the one-shot dashboard report to disk: the
// standings and session tables as CSV plus an overview JSON. This backs
// the report command; the HTTP export endpoint streams instead.
type ReportExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewReportExporter creates an exporter writing under outputDir.
func NewReportExporter(outputDir string, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		csvWriter: NewCSVWriter(outputDir),
		logger:    logger,
	}
}

// ExportStandings writes the standings table to filename.
func (e *ReportExporter) ExportStandings(rows []domain.PlayerStanding, filename string) error {
	headers, records := StandingsTable(rows)
	if err := e.csvWriter.WriteSimpleCSV(filename, headers, records); err != nil {
		return fmt.Errorf("export standings: %w", err)
	}
	return nil
}

// ExportSessions writes the session history table to filename.
func (e *ReportExporter) ExportSessions(rows []domain.SessionSummary, filename string) error {
	headers, records := SessionsTable(rows)
	if err := e.csvWriter.WriteSimpleCSV(filename, headers, records); err != nil {
		return fmt.Errorf("export sessions: %w", err)
	}
	return nil
}

// ExportOverview writes the overview KPIs plus the data-quality block as
// indented JSON.
func (e *ReportExporter) ExportOverview(overview domain.Overview, quality *domain.DataQuality, filename string) error {
	payload := struct {
		Overview domain.Overview     `json:"overview"`
		Quality  *domain.DataQuality `json:"data_quality,omitempty"`
	}{overview, quality}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("export overview: %w", err)
	}

	fullPath := e.csvWriter.resolvePath(filename)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("export overview: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("export overview: %w", err)
	}

	e.logger.Info("overview exported", slog.String("path", fullPath))
	return nil
}
