package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kairadc/poker-standings/internal/validation"
	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// FileSource reads session results from a local CSV or XLSX file. It
// exists for self-hosted setups that export the sheet by hand and for
// development against fixtures.
type FileSource struct {
	path      string
	logger    *slog.Logger
	validator *validation.FileValidator
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:      path,
		logger:    logger,
		validator: validation.NewFileValidator(logger),
	}
}

func (f *FileSource) ID() string {
	return "file:" + f.path
}

func (f *FileSource) Kind() domain.SourceKind {
	return domain.SourceFile
}

// Fetch reads the whole file. The format is chosen by extension: .xlsx
// goes through excelize, everything else is parsed as CSV.
func (f *FileSource) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := f.validator.ValidateResultsFile(f.path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(f.path), ".xlsx") {
		rows, err = f.readXLSX()
	} else {
		rows, err = f.readCSV()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	snapshot := &Snapshot{
		Kind:      domain.SourceFile,
		FetchedAt: time.Now().UTC(),
	}
	if len(rows) > 0 {
		snapshot.Headers = rows[0]
		snapshot.Rows = rows[1:]
	}

	f.logger.InfoContext(ctx, "fetched rows from file",
		slog.String("path", f.path),
		slog.Int("row_count", len(snapshot.Rows)))

	return snapshot, nil
}

func (f *FileSource) Status(ctx context.Context) domain.SourceStatus {
	status := domain.SourceStatus{
		Kind:       domain.SourceFile,
		Configured: f.path != "",
	}
	if !status.Configured {
		return status
	}

	snapshot, err := f.Fetch(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.SpreadsheetFound = true
	status.WorksheetFound = true
	status.Headers = snapshot.Headers
	return status
}

func (f *FileSource) readCSV() ([][]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", f.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v", f.path, err)
	}
	return rows, nil
}

func (f *FileSource) readXLSX() ([][]string, error) {
	workbook, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", f.path, err)
	}
	defer workbook.Close()

	sheetList := workbook.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("%s has no worksheets", f.path)
	}

	rows, err := workbook.GetRows(sheetList[0])
	if err != nil {
		return nil, fmt.Errorf("read %s from %s: %v", sheetList[0], f.path, err)
	}
	return rows, nil
}
