package standings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// goldenTables pins the serialized shape of the computed tables. The
// fixture doubles as a determinism check: any ordering or format drift
// shows up as a byte diff.
type goldenTables struct {
	Standings []domain.PlayerStanding `json:"standings"`
	Sessions  []domain.SessionSummary `json:"sessions"`
	Overview  domain.Overview         `json:"overview"`
}

func TestGoldenTables(t *testing.T) {
	v := NewValidator(nil)
	rows := [][]string{
		{"S1", "2024-01-01", "Alice", "100", "150"},
		{"S1", "2024-01-01", "Bob", "100", "50"},
	}
	res, err := v.Validate(context.Background(), canonicalHeaders(), rows)
	require.NoError(t, err)

	report := CheckConsistency(res.Records, res.AffectedSessions)
	agg := newTestAggregator()
	ctx := context.Background()

	bundle := goldenTables{
		Standings: agg.Standings(ctx, res.Records, report),
		Sessions:  agg.SessionSummaries(ctx, res.Records, report),
		Overview:  agg.Overview(ctx, res.Records, report),
	}

	data, err := json.Marshal(&bundle)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "tables", data)
}
