package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StreakDirection classifies a run of consecutive session results.
// Wins are sessions with net > 0, losses net < 0. A zero net is neutral:
// it belongs to no streak and breaks any run on both sides.
type StreakDirection string

const (
	StreakWin  StreakDirection = "win"
	StreakLoss StreakDirection = "loss"
	StreakNone StreakDirection = "none"
)

// Streak is a run of same-signed results. The zero value means no active
// streak (the player's most recent session was neutral, or they have none).
type Streak struct {
	Direction StreakDirection `json:"direction"`
	Length    int             `json:"length"`
}

// Label renders the streak the way the dashboard shows it: "W3", "L2",
// or "-" when there is no active streak.
func (s Streak) Label() string {
	switch s.Direction {
	case StreakWin:
		return fmt.Sprintf("W%d", s.Length)
	case StreakLoss:
		return fmt.Sprintf("L%d", s.Length)
	default:
		return "-"
	}
}

// PlayerStanding is one row of the standings table: a player's aggregate
// performance over the consistent sessions that passed the active filter.
//
// Monetary aggregates are exact decimals. WinRate is the only ratio and is
// reported as a fraction in [0,1] rounded to four decimal places.
type PlayerStanding struct {
	// Player is the display spelling, PlayerKey the normalized identity.
	Player    string `json:"player" csv:"player"`
	PlayerKey string `json:"player_key" csv:"-"`

	// Sessions is the number of session results included. Wins counts
	// those with net > 0.
	Sessions int `json:"sessions" csv:"sessions"`
	Wins     int `json:"wins" csv:"wins"`

	// WinRate is Wins/Sessions rounded to 4 places, 0 when Sessions is 0.
	WinRate decimal.Decimal `json:"win_rate" csv:"win_rate"`

	TotalNet decimal.Decimal `json:"total_net" csv:"total_net"`
	AvgNet   decimal.Decimal `json:"avg_net" csv:"avg_net"`

	// MedianNet is the middle session result; for an even count it is the
	// mean of the two middle values.
	MedianNet decimal.Decimal `json:"median_net" csv:"median_net"`

	BestSessionNet  decimal.Decimal `json:"best_session_net" csv:"best_session_net"`
	WorstSessionNet decimal.Decimal `json:"worst_session_net" csv:"worst_session_net"`

	// CurrentStreak runs backward from the player's most recent session.
	CurrentStreak Streak `json:"current_streak" csv:"-"`

	// LongestWinStreak and LongestLossStreak are the longest runs anywhere
	// in the player's history, not just the current one.
	LongestWinStreak  int `json:"longest_win_streak" csv:"longest_win_streak"`
	LongestLossStreak int `json:"longest_loss_streak" csv:"longest_loss_streak"`
}

// SessionSummary is one row of the session history table. Unlike standings
// it includes inconsistent sessions, flagged rather than hidden, so data
// problems stay visible on the dashboard.
type SessionSummary struct {
	SessionID string `json:"session_id" csv:"session_id"`

	// Date is the session date in ISO form (2006-01-02).
	Date string `json:"date" csv:"date"`

	Venue    string `json:"venue,omitempty" csv:"venue,omitempty"`
	GameType string `json:"game_type,omitempty" csv:"game_type,omitempty"`
	Season   string `json:"season,omitempty" csv:"season,omitempty"`

	// Players lists display names sorted alphabetically.
	Players     []string `json:"players" csv:"-"`
	PlayerCount int      `json:"player_count" csv:"player_count"`

	// TotalPot is the sum of buy-ins; zero under the net_direct schema
	// where buy-ins are unknown.
	TotalPot decimal.Decimal `json:"total_pot" csv:"total_pot"`

	// PotDelta is the sum of nets. Zero for a consistent session; anything
	// else means money appeared or vanished and the session is flagged.
	PotDelta decimal.Decimal `json:"pot_delta" csv:"pot_delta"`

	// Consistent is false when the session violates the zero-sum invariant
	// or lost rows to validation.
	Consistent bool `json:"consistent" csv:"consistent"`
}

// LeaderboardGroup is a standings table computed within one value of a
// grouping dimension (season, venue or game type).
type LeaderboardGroup struct {
	// Key is the dimension value, or "(unspecified)" for records that
	// carry none.
	Key       string           `json:"key"`
	Standings []PlayerStanding `json:"standings"`
}

// UnspecifiedGroup is the bucket for records with an empty value in the
// grouping dimension.
const UnspecifiedGroup = "(unspecified)"

// CumulativePoint is one step of a player's running-total trend line.
type CumulativePoint struct {
	Date          string          `json:"date"`
	SessionID     string          `json:"session_id"`
	Net           decimal.Decimal `json:"net"`
	CumulativeNet decimal.Decimal `json:"cumulative_net"`
}

// PlayerProfile is the detailed per-player view: the standing row plus the
// series behind it.
type PlayerProfile struct {
	Standing PlayerStanding `json:"standing"`

	// Cumulative is the running-total series, oldest first.
	Cumulative []CumulativePoint `json:"cumulative"`

	// Recent holds the player's latest session results, newest first,
	// capped by the service's configured recent-session count.
	Recent []CumulativePoint `json:"recent"`
}

// Overview carries the dashboard's headline KPIs. TopWinner and
// BiggestLoser are empty strings when no consistent sessions exist.
type Overview struct {
	TotalSessions int             `json:"total_sessions"`
	TotalResults  int             `json:"total_results"`
	TotalNet      decimal.Decimal `json:"total_net"`

	TopWinner    string          `json:"top_winner,omitempty"`
	TopWinnerNet decimal.Decimal `json:"top_winner_net"`

	BiggestLoser    string          `json:"biggest_loser,omitempty"`
	BiggestLoserNet decimal.Decimal `json:"biggest_loser_net"`
}
