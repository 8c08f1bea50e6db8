package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairadc/poker-standings/internal/config"
	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

func TestBuildSourcesSample(t *testing.T) {
	primary, fallback := BuildSources(context.Background(), config.SourceConfig{Kind: "sample"}, testLogger())

	assert.Equal(t, domain.SourceSample, primary.Kind())
	assert.Nil(t, fallback)
}

func TestBuildSourcesFile(t *testing.T) {
	cfg := config.SourceConfig{Kind: "file", FilePath: "/data/results.csv"}
	primary, fallback := BuildSources(context.Background(), cfg, testLogger())

	assert.Equal(t, domain.SourceFile, primary.Kind())
	require.NotNil(t, fallback)
	assert.Equal(t, domain.SourceSample, fallback.Kind())
}

func TestBuildSourcesAutoResolution(t *testing.T) {
	cfg := config.SourceConfig{Kind: "auto"}
	primary, _ := BuildSources(context.Background(), cfg, testLogger())
	assert.Equal(t, domain.SourceSample, primary.Kind())

	cfg = config.SourceConfig{Kind: "auto", FilePath: "/data/results.csv"}
	primary, _ = BuildSources(context.Background(), cfg, testLogger())
	assert.Equal(t, domain.SourceFile, primary.Kind())
}

func TestBuildSourcesSheetsInitFailure(t *testing.T) {
	cfg := config.SourceConfig{
		Kind:            "sheets",
		SpreadsheetID:   "sheet-id",
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	}
	primary, fallback := BuildSources(context.Background(), cfg, testLogger())

	// Startup survives; the broken source reports its error and every
	// load falls back to the sample
	assert.Equal(t, domain.SourceSheets, primary.Kind())
	require.NotNil(t, fallback)

	status := primary.Status(context.Background())
	assert.True(t, status.Configured)
	assert.NotEmpty(t, status.Error)

	_, err := primary.Fetch(context.Background())
	assert.Error(t, err)
}
