package services

import (
	"context"
	"log/slog"

	"github.com/kairadc/poker-standings/internal/config"
	"github.com/kairadc/poker-standings/internal/source"
	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// BuildSources resolves the configured source kind into the primary row
// source plus the sample fallback served when the primary is unreachable.
// fallback is nil when the primary already is the sample.
//
// A Sheets client that cannot be constructed does not fail startup: the
// primary becomes an UnavailableSource so every load degrades to demo mode
// and the status endpoint reports the construction error.
func BuildSources(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (primary, fallback source.RowSource) {
	if logger == nil {
		logger = slog.Default()
	}
	sample := source.NewSampleSource(logger)

	switch cfg.EffectiveKind() {
	case "sheets":
		sheets, err := source.NewSheetsSource(ctx, source.SheetsConfig{
			SpreadsheetID:   cfg.SpreadsheetID,
			Worksheet:       cfg.Worksheet,
			CredentialsFile: cfg.CredentialsFile,
			CredentialsJSON: cfg.CredentialsJSON,
			RetryDelay:      cfg.RetryDelay,
		}, logger)
		if err != nil {
			logger.WarnContext(ctx, "sheets source could not be constructed, demo data will serve",
				slog.String("error", err.Error()))
			return source.NewUnavailableSource(domain.SourceSheets, err), sample
		}
		return sheets, sample

	case "file":
		return source.NewFileSource(cfg.FilePath, logger), sample

	default:
		return sample, nil
	}
}
