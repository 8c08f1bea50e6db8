package standings

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// ConsistencyReport is the outcome of checking every session against the
// zero-sum invariant. Sessions it flags stay visible in the history table
// but are excluded from standings, streaks and running totals.
type ConsistencyReport struct {
	// reasons maps a flagged session id to a human-readable explanation.
	reasons map[string]string
}

// CheckConsistency verifies that each session's nets sum to exactly zero
// and folds in the sessions that lost rows to validation. A session missing
// rows cannot balance, so it is flagged regardless of what its surviving
// rows sum to. The check always runs over the unfiltered record set:
// consistency is a property of the source data, not of the current view.
func CheckConsistency(records []domain.SessionRecord, affectedSessions []string) *ConsistencyReport {
	report := &ConsistencyReport{reasons: make(map[string]string)}

	for _, id := range affectedSessions {
		report.reasons[id] = "rows rejected during validation"
	}

	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		sums[r.SessionID] = sums[r.SessionID].Add(r.Net)
	}
	for id, sum := range sums {
		if _, flagged := report.reasons[id]; flagged {
			continue
		}
		if !sum.IsZero() {
			report.reasons[id] = fmt.Sprintf("net sum is %s, want 0", sum)
		}
	}

	return report
}

// Consistent reports whether the session passed the zero-sum check.
func (c *ConsistencyReport) Consistent(sessionID string) bool {
	_, flagged := c.reasons[sessionID]
	return !flagged
}

// SessionIDs returns the flagged session ids sorted ascending.
func (c *ConsistencyReport) SessionIDs() []string {
	if len(c.reasons) == 0 {
		return nil
	}
	ids := make([]string, 0, len(c.reasons))
	for id := range c.reasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Warnings renders one warning line per flagged session, sorted by id.
func (c *ConsistencyReport) Warnings() []string {
	ids := c.SessionIDs()
	if len(ids) == 0 {
		return nil
	}
	warnings := make([]string, 0, len(ids))
	for _, id := range ids {
		warnings = append(warnings, fmt.Sprintf("session %s inconsistent: %s", id, c.reasons[id]))
	}
	return warnings
}

// playerSeries groups consistent records by player key and orders each
// player's results by date ascending, ties broken by session id. Every
// later computation (streaks, running totals, medians) walks these series,
// so the ordering here is what makes the whole pipeline deterministic.
func playerSeries(records []domain.SessionRecord, report *ConsistencyReport) map[string][]domain.SessionRecord {
	series := make(map[string][]domain.SessionRecord)
	for _, r := range records {
		if !report.Consistent(r.SessionID) {
			continue
		}
		series[r.PlayerKey] = append(series[r.PlayerKey], r)
	}
	for key := range series {
		s := series[key]
		sort.SliceStable(s, func(i, j int) bool {
			if !s[i].Date.Equal(s[j].Date) {
				return s[i].Date.Before(s[j].Date)
			}
			return s[i].SessionID < s[j].SessionID
		})
	}
	return series
}

// currentStreak walks a chronological series backward from the most recent
// session. The streak direction is the sign of the newest net; the length
// is how many consecutive results share it. A zero net carries no sign, so
// a neutral newest session means no active streak at all.
func currentStreak(series []domain.SessionRecord) domain.Streak {
	if len(series) == 0 {
		return domain.Streak{Direction: domain.StreakNone}
	}

	newest := series[len(series)-1].Net
	if newest.IsZero() {
		return domain.Streak{Direction: domain.StreakNone}
	}

	direction := domain.StreakWin
	if newest.IsNegative() {
		direction = domain.StreakLoss
	}

	length := 0
	for i := len(series) - 1; i >= 0; i-- {
		net := series[i].Net
		if net.IsZero() || net.IsPositive() != newest.IsPositive() {
			break
		}
		length++
	}

	return domain.Streak{Direction: direction, Length: length}
}

// longestStreaks scans the whole series chronologically and returns the
// longest win run and the longest loss run. A neutral session resets both.
func longestStreaks(series []domain.SessionRecord) (longestWin, longestLoss int) {
	var win, loss int
	for _, r := range series {
		switch {
		case r.Net.IsPositive():
			win++
			loss = 0
		case r.Net.IsNegative():
			loss++
			win = 0
		default:
			win = 0
			loss = 0
		}
		if win > longestWin {
			longestWin = win
		}
		if loss > longestLoss {
			longestLoss = loss
		}
	}
	return longestWin, longestLoss
}

// cumulative builds the running-total trend line for one player's series.
func cumulative(series []domain.SessionRecord) []domain.CumulativePoint {
	if len(series) == 0 {
		return nil
	}
	points := make([]domain.CumulativePoint, 0, len(series))
	total := decimal.Zero
	for _, r := range series {
		total = total.Add(r.Net)
		points = append(points, domain.CumulativePoint{
			Date:          r.Date.Format("2006-01-02"),
			SessionID:     r.SessionID,
			Net:           r.Net,
			CumulativeNet: total,
		})
	}
	return points
}

// medianNet returns the middle value of the nets in a series, or the mean
// of the two middle values for an even count, rounded to two places.
func medianNet(series []domain.SessionRecord) decimal.Decimal {
	if len(series) == 0 {
		return decimal.Zero
	}
	nets := make([]decimal.Decimal, len(series))
	for i, r := range series {
		nets[i] = r.Net
	}
	sort.SliceStable(nets, func(i, j int) bool { return nets[i].LessThan(nets[j]) })

	mid := len(nets) / 2
	if len(nets)%2 == 1 {
		return nets[mid]
	}
	return nets[mid-1].Add(nets[mid]).Div(decimal.NewFromInt(2)).Round(2)
}
