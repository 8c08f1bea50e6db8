// Package exporter renders the computed dashboard tables as CSV and JSON.
//
// Two components do the work:
//
// CSVWriter: core CSV writing with headers, append mode and a UTF-8 BOM
// for Excel compatibility. WriteTo streams the same format to any writer,
// which is how the HTTP export endpoint serves attachments.
//
// ReportExporter: one-shot report generation to disk, producing the
// standings and session history CSVs plus an overview JSON.
//
// Example usage:
//
//	reportExporter := exporter.NewReportExporter("reports", logger)
//
//	err := reportExporter.ExportStandings(rows, "standings.csv")
//
//	// Stream to an HTTP response instead
//	err = exporter.WriteStandingsCSV(w, rows)
//
// Cell formatting is fixed: money always carries two decimal places,
// win rates four, so re-exports of unchanged data are byte-identical.
package exporter
