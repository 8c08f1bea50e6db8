package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

func TestReportExporterWritesTables(t *testing.T) {
	tempDir := t.TempDir()
	exp := NewReportExporter(tempDir, nil)

	require.NoError(t, exp.ExportStandings(sampleStandings(), "standings.csv"))
	require.NoError(t, exp.ExportSessions([]domain.SessionSummary{
		{
			SessionID:   "s1",
			Date:        "2025-03-01",
			Players:     []string{"Alice", "Bob"},
			PlayerCount: 2,
			TotalPot:    decimal.RequireFromString("200"),
			PotDelta:    decimal.Zero,
			Consistent:  true,
		},
	}, "sessions.csv"))

	standings, err := os.ReadFile(filepath.Join(tempDir, "standings.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(standings), "Alice")
	assert.Contains(t, string(standings), "120.50")

	sessions, err := os.ReadFile(filepath.Join(tempDir, "sessions.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(sessions), "s1")
	assert.Contains(t, string(sessions), "Alice; Bob")
}

func TestExportOverview(t *testing.T) {
	tempDir := t.TempDir()
	exp := NewReportExporter(tempDir, nil)

	overview := domain.Overview{
		TotalSessions: 3,
		TotalResults:  6,
		TotalNet:      decimal.Zero,
		TopWinner:     "Alice",
		TopWinnerNet:  decimal.RequireFromString("120.5"),
	}
	quality := &domain.DataQuality{
		Source:    domain.SourceSample,
		DemoMode:  true,
		FetchedAt: time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
		Schema:    domain.SchemaBuyinCashout,
		RowCount:  6,
	}

	require.NoError(t, exp.ExportOverview(overview, quality, "overview.json"))

	data, err := os.ReadFile(filepath.Join(tempDir, "overview.json"))
	require.NoError(t, err)

	var decoded struct {
		Overview domain.Overview    `json:"overview"`
		Quality  domain.DataQuality `json:"data_quality"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded.Overview.TotalSessions)
	assert.Equal(t, "Alice", decoded.Overview.TopWinner)
	assert.True(t, decoded.Quality.DemoMode)
	assert.Equal(t, domain.SourceSample, decoded.Quality.Source)
}

func TestExportOverviewWithoutQuality(t *testing.T) {
	tempDir := t.TempDir()
	exp := NewReportExporter(tempDir, nil)

	require.NoError(t, exp.ExportOverview(domain.Overview{}, nil, "overview.json"))

	data, err := os.ReadFile(filepath.Join(tempDir, "overview.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "data_quality")
}
