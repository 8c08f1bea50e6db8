package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SessionRecord is the Single Source of Truth (SSOT) for one player's result
// in one poker session. Every row the validator accepts becomes exactly one
// SessionRecord; all derivation, aggregation, export and API payloads are
// built from this structure and never from raw sheet cells.
//
// A session is a single game event identified by SessionID. Several records
// share a SessionID, one per participating player, and their Net amounts must
// sum to zero for the session to be considered consistent.
//
// Monetary fields use decimal.Decimal so that buy-ins, cash-outs and nets are
// exact. Float arithmetic is never used for money anywhere in the system.
type SessionRecord struct {
	// SessionID groups the records of one game event.
	SessionID string `json:"session_id" csv:"session_id" validate:"required"`

	// Date is the calendar date the session was played. Only the date part
	// is meaningful; the time component is always midnight UTC.
	Date time.Time `json:"date" csv:"date" validate:"required"`

	// Player is the display spelling of the player's name, taken from the
	// first occurrence in the source after trimming.
	Player string `json:"player" csv:"player" validate:"required"`

	// PlayerKey is the normalized identity: lowercased with runs of
	// whitespace collapsed to a single space. "Dana", "dana " and
	// "DANA" all share the key "dana" and are the same player.
	PlayerKey string `json:"player_key" csv:"-"`

	// BuyIn is the total amount the player put on the table. Never negative.
	BuyIn decimal.Decimal `json:"buy_in" csv:"buy_in" validate:"required"`

	// CashOut is the amount the player left the table with. Never negative.
	CashOut decimal.Decimal `json:"cash_out" csv:"cash_out" validate:"required"`

	// Net is the derived result for the record: CashOut - BuyIn. For rows
	// ingested through the net_direct schema it is taken from the source
	// and BuyIn/CashOut are zero.
	Net decimal.Decimal `json:"net" csv:"net"`

	// Optional descriptive attributes. Empty string means unspecified.
	Venue    string `json:"venue,omitempty" csv:"venue,omitempty"`
	GameType string `json:"game_type,omitempty" csv:"game_type,omitempty"`
	Season   string `json:"season,omitempty" csv:"season,omitempty"`
	Notes    string `json:"notes,omitempty" csv:"notes,omitempty"`

	// Row is the 1-based row number in the fetched sheet, kept for
	// diagnostics. Row 1 is the header, so data rows start at 2.
	Row int `json:"row,omitempty" csv:"-"`
}

// ResultsSchema identifies which of the two accepted header layouts a
// worksheet uses. Detection happens once per load from the header row.
type ResultsSchema string

const (
	// SchemaBuyinCashout is the canonical layout: buy_in and cash_out
	// columns are present and net is derived.
	SchemaBuyinCashout ResultsSchema = "buyin_cashout"

	// SchemaNetDirect is the legacy layout: a net column is present and
	// buy-in/cash-out amounts are not recorded.
	SchemaNetDirect ResultsSchema = "net_direct"
)

// RejectedRow records a source row the validator excluded, with enough
// context to locate and fix it in the spreadsheet.
type RejectedRow struct {
	Row    int      `json:"row"`
	Reason string   `json:"reason"`
	Raw    []string `json:"raw,omitempty"`
}

func (r RejectedRow) String() string {
	return fmt.Sprintf("row %d: %s", r.Row, r.Reason)
}

// NormalizePlayerKey reduces a player name to its identity form: trimmed,
// lowercased, with internal whitespace runs collapsed to single spaces.
func NormalizePlayerKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ValidateSessionRecord checks the invariants every accepted record must
// hold. The row validator enforces these during coercion; this function is
// the contract-level restatement used by tests and secondary ingest paths.
func ValidateSessionRecord(r *SessionRecord) error {
	if r == nil {
		return fmt.Errorf("session record cannot be nil")
	}
	if strings.TrimSpace(r.SessionID) == "" {
		return fmt.Errorf("session_id is required")
	}
	if strings.TrimSpace(r.Player) == "" {
		return fmt.Errorf("player is required")
	}
	if r.PlayerKey == "" {
		return fmt.Errorf("player_key is required")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if r.BuyIn.IsNegative() {
		return fmt.Errorf("buy_in cannot be negative: %s", r.BuyIn)
	}
	if r.CashOut.IsNegative() {
		return fmt.Errorf("cash_out cannot be negative: %s", r.CashOut)
	}
	return nil
}

// SessionFilter narrows the record set before derivation. The zero value
// matches everything. Filters compose with AND; the Players list is an OR
// over normalized player keys.
type SessionFilter struct {
	// From and To bound Date inclusively. Nil means unbounded.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	// Players holds normalized player keys to include.
	Players []string `json:"players,omitempty"`

	Venue    string `json:"venue,omitempty"`
	GameType string `json:"game_type,omitempty"`
	Season   string `json:"season,omitempty"`
}

// IsZero reports whether the filter matches every record.
func (f SessionFilter) IsZero() bool {
	return f.From == nil && f.To == nil && len(f.Players) == 0 &&
		f.Venue == "" && f.GameType == "" && f.Season == ""
}

// Matches reports whether the record passes the filter.
func (f SessionFilter) Matches(r *SessionRecord) bool {
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Date.After(*f.To) {
		return false
	}
	if len(f.Players) > 0 {
		found := false
		for _, key := range f.Players {
			if r.PlayerKey == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Venue != "" && r.Venue != f.Venue {
		return false
	}
	if f.GameType != "" && r.GameType != f.GameType {
		return false
	}
	if f.Season != "" && r.Season != f.Season {
		return false
	}
	return true
}
