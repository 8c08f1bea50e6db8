package exporter

import (
	"io"
	"strings"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

var standingsHeaders = []string{
	"rank", "player", "sessions", "wins", "win_rate",
	"total_net", "avg_net", "median_net",
	"best_session_net", "worst_session_net",
	"current_streak", "longest_win_streak", "longest_loss_streak",
}

var sessionsHeaders = []string{
	"session_id", "date", "venue", "game_type", "season",
	"player_count", "players", "total_pot", "pot_delta", "consistent",
}

// StandingsTable renders the ranked standings as CSV cells. Rank is the
// position in the already-sorted input, starting at 1.
func StandingsTable(rows []domain.PlayerStanding) ([]string, [][]string) {
	records := make([][]string, 0, len(rows))
	for i, row := range rows {
		records = append(records, []string{
			formatInt(int64(i + 1)),
			row.Player,
			formatInt(int64(row.Sessions)),
			formatInt(int64(row.Wins)),
			formatRate(row.WinRate),
			formatMoney(row.TotalNet),
			formatMoney(row.AvgNet),
			formatMoney(row.MedianNet),
			formatMoney(row.BestSessionNet),
			formatMoney(row.WorstSessionNet),
			row.CurrentStreak.Label(),
			formatInt(int64(row.LongestWinStreak)),
			formatInt(int64(row.LongestLossStreak)),
		})
	}
	return standingsHeaders, records
}

// SessionsTable renders the session history as CSV cells.
func SessionsTable(rows []domain.SessionSummary) ([]string, [][]string) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.SessionID,
			row.Date,
			row.Venue,
			row.GameType,
			row.Season,
			formatInt(int64(row.PlayerCount)),
			strings.Join(row.Players, "; "),
			formatMoney(row.TotalPot),
			formatMoney(row.PotDelta),
			formatBool(row.Consistent),
		})
	}
	return sessionsHeaders, records
}

// WriteStandingsCSV streams the standings table as UTF-8 CSV with a BOM.
func WriteStandingsCSV(w io.Writer, rows []domain.PlayerStanding) error {
	headers, records := StandingsTable(rows)
	return WriteTo(w, headers, records, true)
}

// WriteSessionsCSV streams the session history table as UTF-8 CSV with a
// BOM.
func WriteSessionsCSV(w io.Writer, rows []domain.SessionSummary) error {
	headers, records := SessionsTable(rows)
	return WriteTo(w, headers, records, true)
}
