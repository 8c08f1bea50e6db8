package standings

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// Dimension is a grouping axis for leaderboard slices.
type Dimension string

const (
	DimensionSeason   Dimension = "season"
	DimensionVenue    Dimension = "venue"
	DimensionGameType Dimension = "game_type"
)

// ParseDimension validates a dimension name from the API surface.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionSeason, DimensionVenue, DimensionGameType:
		return Dimension(s), nil
	}
	return "", fmt.Errorf("unknown leaderboard dimension %q", s)
}

// AggregatorConfig holds the tunables for table generation.
type AggregatorConfig struct {
	// RecentSessions caps the recent-results list in player profiles.
	RecentSessions int
}

// DefaultAggregatorConfig returns the configuration used by the dashboard.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{RecentSessions: 10}
}

// Aggregator turns validated session records into the dashboard tables.
// It is the Single Source of Truth for ranking and KPI math: handlers and
// exporters consume its output and never aggregate records themselves.
//
// All methods are pure with respect to their inputs and deterministic:
// identical records and report always produce identical tables, including
// ordering. Map iteration never reaches an output directly; every grouped
// result is sorted by explicit keys before it is returned.
type Aggregator struct {
	logger         *slog.Logger
	recentSessions int
}

// NewAggregator creates an aggregator with the given configuration.
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.RecentSessions <= 0 {
		config.RecentSessions = 10
	}
	return &Aggregator{
		logger:         logger,
		recentSessions: config.RecentSessions,
	}
}

// Standings produces the main standings table over consistent sessions:
// one row per player, ranked by total net descending, ties broken by
// session count descending then player name ascending.
func (a *Aggregator) Standings(ctx context.Context, records []domain.SessionRecord, report *ConsistencyReport) []domain.PlayerStanding {
	series := playerSeries(records, report)

	rows := make([]domain.PlayerStanding, 0, len(series))
	for _, key := range seriesKeys(series) {
		rows = append(rows, a.standingFromSeries(key, series[key]))
	}
	rankStandings(rows)

	a.logger.DebugContext(ctx, "computed standings",
		slog.Int("players", len(rows)),
		slog.Int("records", len(records)))

	return rows
}

// Leaderboards slices the record set by one grouping dimension and ranks
// each slice with the standings rule. Records with an empty value in the
// dimension fall into the "(unspecified)" group. Groups come back sorted
// by key ascending.
func (a *Aggregator) Leaderboards(ctx context.Context, records []domain.SessionRecord, report *ConsistencyReport, dim Dimension) []domain.LeaderboardGroup {
	grouped := make(map[string][]domain.SessionRecord)
	for _, r := range records {
		key := dimensionValue(&r, dim)
		if key == "" {
			key = domain.UnspecifiedGroup
		}
		grouped[key] = append(grouped[key], r)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]domain.LeaderboardGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, domain.LeaderboardGroup{
			Key:       key,
			Standings: a.Standings(ctx, grouped[key], report),
		})
	}

	a.logger.DebugContext(ctx, "computed leaderboards",
		slog.String("dimension", string(dim)),
		slog.Int("groups", len(groups)))

	return groups
}

// SessionSummaries builds the session history table. Inconsistent sessions
// are included and flagged: hiding a broken session would hide the reason
// the standings changed. Rows are ordered date descending, ties by session
// id ascending.
func (a *Aggregator) SessionSummaries(ctx context.Context, records []domain.SessionRecord, report *ConsistencyReport) []domain.SessionSummary {
	grouped := make(map[string][]domain.SessionRecord)
	for _, r := range records {
		grouped[r.SessionID] = append(grouped[r.SessionID], r)
	}

	summaries := make([]domain.SessionSummary, 0, len(grouped))
	for id, group := range grouped {
		summaries = append(summaries, a.summarizeSession(id, group, report))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Date != summaries[j].Date {
			return summaries[i].Date > summaries[j].Date
		}
		return summaries[i].SessionID < summaries[j].SessionID
	})

	a.logger.DebugContext(ctx, "computed session summaries",
		slog.Int("sessions", len(summaries)))

	return summaries
}

// Overview condenses the standings into the dashboard's headline KPIs.
// The top winner is the first row of the ranked table and the biggest
// loser the last, so both inherit the standings tie-break rules.
func (a *Aggregator) Overview(ctx context.Context, records []domain.SessionRecord, report *ConsistencyReport) domain.Overview {
	standings := a.Standings(ctx, records, report)

	sessions := make(map[string]bool)
	results := 0
	total := decimal.Zero
	for _, r := range records {
		if !report.Consistent(r.SessionID) {
			continue
		}
		sessions[r.SessionID] = true
		results++
		total = total.Add(r.Net)
	}

	overview := domain.Overview{
		TotalSessions: len(sessions),
		TotalResults:  results,
		TotalNet:      total,
	}
	if len(standings) > 0 {
		top := standings[0]
		bottom := standings[len(standings)-1]
		overview.TopWinner = top.Player
		overview.TopWinnerNet = top.TotalNet
		overview.BiggestLoser = bottom.Player
		overview.BiggestLoserNet = bottom.TotalNet
	}
	return overview
}

// Profile assembles the detailed view for one player, looked up by
// normalized key. The second return value is false when the player has no
// consistent sessions in the record set.
func (a *Aggregator) Profile(ctx context.Context, records []domain.SessionRecord, report *ConsistencyReport, playerKey string) (domain.PlayerProfile, bool) {
	series := playerSeries(records, report)
	s, ok := series[playerKey]
	if !ok {
		return domain.PlayerProfile{}, false
	}

	points := cumulative(s)

	recent := make([]domain.CumulativePoint, 0, a.recentSessions)
	for i := len(points) - 1; i >= 0 && len(recent) < a.recentSessions; i-- {
		recent = append(recent, points[i])
	}

	return domain.PlayerProfile{
		Standing:   a.standingFromSeries(playerKey, s),
		Cumulative: points,
		Recent:     recent,
	}, true
}

// standingFromSeries computes one standings row from a player's ordered
// consistent series. The series is never empty here: players without
// surviving sessions have no series at all.
func (a *Aggregator) standingFromSeries(playerKey string, series []domain.SessionRecord) domain.PlayerStanding {
	row := domain.PlayerStanding{
		Player:    series[0].Player,
		PlayerKey: playerKey,
		Sessions:  len(series),
	}

	total := decimal.Zero
	best := series[0].Net
	worst := series[0].Net
	for _, r := range series {
		total = total.Add(r.Net)
		if r.Net.IsPositive() {
			row.Wins++
		}
		if r.Net.GreaterThan(best) {
			best = r.Net
		}
		if r.Net.LessThan(worst) {
			worst = r.Net
		}
	}

	count := decimal.NewFromInt(int64(len(series)))
	row.WinRate = decimal.NewFromInt(int64(row.Wins)).Div(count).Round(4)
	row.TotalNet = total
	row.AvgNet = total.Div(count).Round(2)
	row.MedianNet = medianNet(series)
	row.BestSessionNet = best
	row.WorstSessionNet = worst
	row.CurrentStreak = currentStreak(series)
	row.LongestWinStreak, row.LongestLossStreak = longestStreaks(series)

	return row
}

func (a *Aggregator) summarizeSession(id string, group []domain.SessionRecord, report *ConsistencyReport) domain.SessionSummary {
	summary := domain.SessionSummary{
		SessionID:   id,
		Venue:       group[0].Venue,
		GameType:    group[0].GameType,
		Season:      group[0].Season,
		PlayerCount: len(group),
		Consistent:  report.Consistent(id),
	}

	earliest := group[0].Date
	pot := decimal.Zero
	delta := decimal.Zero
	players := make([]string, 0, len(group))
	for _, r := range group {
		if r.Date.Before(earliest) {
			earliest = r.Date
		}
		pot = pot.Add(r.BuyIn)
		delta = delta.Add(r.Net)
		players = append(players, r.Player)
	}
	sort.Strings(players)

	summary.Date = earliest.Format("2006-01-02")
	summary.Players = players
	summary.TotalPot = pot
	summary.PotDelta = delta

	return summary
}

// rankStandings orders the table in place by the ranking rule shared by
// standings and every leaderboard slice.
func rankStandings(rows []domain.PlayerStanding) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].TotalNet.Equal(rows[j].TotalNet) {
			return rows[i].TotalNet.GreaterThan(rows[j].TotalNet)
		}
		if rows[i].Sessions != rows[j].Sessions {
			return rows[i].Sessions > rows[j].Sessions
		}
		return rows[i].Player < rows[j].Player
	})
}

func seriesKeys(series map[string][]domain.SessionRecord) []string {
	keys := make([]string, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func dimensionValue(r *domain.SessionRecord, dim Dimension) string {
	switch dim {
	case DimensionSeason:
		return r.Season
	case DimensionVenue:
		return r.Venue
	case DimensionGameType:
		return r.GameType
	}
	return ""
}
