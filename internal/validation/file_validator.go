package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator runs preflight checks on the files the dashboard reads
// and writes. It exists so a misconfigured results path or an unwritable
// report directory fails with a clear message instead of a parse error.
type FileValidator struct {
	logger *slog.Logger
}

func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateResultsFile checks that path points at a readable session
// results file in one of the supported formats. Failures are returned,
// not logged; the caller decides how loud a missing file should be.
func (v *FileValidator) ValidateResultsFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("results file %s does not exist", path)
	case err != nil:
		return fmt.Errorf("stat results file %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("%s is a directory, not a results file", path)
	}

	// Excel leaves ~$ lock files next to open workbooks.
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("%s is a temporary spreadsheet lock file, open the workbook itself", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".xlsx":
	default:
		return fmt.Errorf("%s is not a supported results format, expected .csv or .xlsx", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("results file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("results file validated",
		slog.String("file", path),
		slog.Int64("size_bytes", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the directory exists and is writable,
// creating it if needed. Writability is proven with a throwaway file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_probe")
	file, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("report directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)

	return nil
}
