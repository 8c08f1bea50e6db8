package standings

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// Canonical column names after header normalization (trim + lowercase).
const (
	colSessionID = "session_id"
	colDate      = "date"
	colPlayer    = "player"
	colBuyIn     = "buy_in"
	colCashOut   = "cash_out"
	colNet       = "net"
	colVenue     = "venue"
	colGameType  = "game_type"
	colSeason    = "season"
	colNotes     = "notes"
)

// requiredColumns enumerates the mapping validated once per load: the
// canonical schema needs all of base plus buy_in/cash_out, the legacy
// net_direct schema needs base plus net. Everything else is optional.
var (
	baseColumns     = []string{colSessionID, colDate, colPlayer}
	canonicalExtra  = []string{colBuyIn, colCashOut}
	optionalColumns = []string{colVenue, colGameType, colSeason, colNotes}
)

// SchemaError reports a header row that matches neither accepted layout.
// It is fatal to the load: no rows are processed when the schema is
// unrecognized.
type SchemaError struct {
	// Headers is the normalized header row as fetched.
	Headers []string
	// Missing lists the canonical columns that were absent.
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unrecognized results schema: missing required columns %s",
		strings.Join(e.Missing, ", "))
}

// ValidationResult is the outcome of coercing one fetched snapshot.
type ValidationResult struct {
	// Schema is the detected header layout.
	Schema domain.ResultsSchema

	// Records are the accepted rows in source order, coerced and with
	// Net filled in.
	Records []domain.SessionRecord

	// Rejected lists excluded rows with reasons, in source order.
	Rejected []domain.RejectedRow

	// AffectedSessions holds the ids of sessions that lost at least one
	// row to validation, sorted ascending. Those sessions can no longer
	// satisfy the zero-sum invariant and are treated as inconsistent.
	AffectedSessions []string
}

// Validator coerces raw sheet rows into typed session records. Raw values
// never flow past this boundary: every downstream computation works on
// SessionRecord values the validator produced.
type Validator struct {
	logger *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// DetectSchema normalizes the header row and decides which layout the sheet
// uses. The canonical buyin_cashout layout wins when both amount columns are
// present; net_direct applies only when they are absent and a net column
// exists. Neither matching returns a *SchemaError.
func DetectSchema(headers []string) (domain.ResultsSchema, map[string]int, error) {
	index := make(map[string]int, len(headers))
	normalized := make([]string, len(headers))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		normalized[i] = name
		if _, ok := index[name]; !ok && name != "" {
			index[name] = i
		}
	}

	missing := missingColumns(index, append(append([]string{}, baseColumns...), canonicalExtra...))
	if len(missing) == 0 {
		return domain.SchemaBuyinCashout, index, nil
	}

	if len(missingColumns(index, append(append([]string{}, baseColumns...), colNet))) == 0 {
		return domain.SchemaNetDirect, index, nil
	}

	return "", nil, &SchemaError{Headers: normalized, Missing: missing}
}

func missingColumns(index map[string]int, want []string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Validate coerces the fetched rows against the detected schema. Row-level
// problems reject the row and never abort the batch; only an unrecognized
// schema is fatal. Rows are numbered from 2 because row 1 is the header.
func (v *Validator) Validate(ctx context.Context, headers []string, rows [][]string) (*ValidationResult, error) {
	schema, index, err := DetectSchema(headers)
	if err != nil {
		v.logger.ErrorContext(ctx, "schema detection failed",
			slog.String("error", err.Error()))
		return nil, err
	}

	v.logger.InfoContext(ctx, "validating fetched rows",
		slog.String("schema", string(schema)),
		slog.Int("row_count", len(rows)))

	result := &ValidationResult{Schema: schema}
	affected := make(map[string]bool)
	display := make(map[string]string)

	for i, row := range rows {
		rowNum := i + 2
		record, reason := v.coerceRow(schema, index, row, rowNum)
		if reason != "" {
			result.Rejected = append(result.Rejected, domain.RejectedRow{
				Row:    rowNum,
				Reason: reason,
				Raw:    row,
			})
			if id := cellAt(row, index, colSessionID); strings.TrimSpace(id) != "" {
				affected[strings.TrimSpace(id)] = true
			}
			continue
		}
		if first, ok := display[record.PlayerKey]; ok {
			record.Player = first
		} else {
			display[record.PlayerKey] = record.Player
		}
		result.Records = append(result.Records, record)
	}

	v.rejectDuplicates(result, affected)

	result.AffectedSessions = sortedKeys(affected)

	if len(result.Rejected) > 0 {
		v.logger.WarnContext(ctx, "rows rejected during validation",
			slog.Int("rejected", len(result.Rejected)),
			slog.Int("accepted", len(result.Records)))
	}

	return result, nil
}

// coerceRow turns one raw row into a SessionRecord. A non-empty reason
// means the row is rejected.
func (v *Validator) coerceRow(schema domain.ResultsSchema, index map[string]int, row []string, rowNum int) (domain.SessionRecord, string) {
	sessionID := strings.TrimSpace(cellAt(row, index, colSessionID))
	if sessionID == "" {
		return domain.SessionRecord{}, "empty session_id"
	}

	player := strings.TrimSpace(cellAt(row, index, colPlayer))
	if player == "" {
		return domain.SessionRecord{}, "empty player"
	}

	rawDate := strings.TrimSpace(cellAt(row, index, colDate))
	if rawDate == "" {
		return domain.SessionRecord{}, "empty date"
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return domain.SessionRecord{}, fmt.Sprintf("unparsable date %q", rawDate)
	}

	record := domain.SessionRecord{
		SessionID: sessionID,
		Date:      date,
		Player:    player,
		PlayerKey: domain.NormalizePlayerKey(player),
		Venue:     strings.TrimSpace(cellAt(row, index, colVenue)),
		GameType:  strings.TrimSpace(cellAt(row, index, colGameType)),
		Season:    strings.TrimSpace(cellAt(row, index, colSeason)),
		Notes:     strings.TrimSpace(cellAt(row, index, colNotes)),
		Row:       rowNum,
	}

	switch schema {
	case domain.SchemaBuyinCashout:
		buyIn, reason := parseAmount(cellAt(row, index, colBuyIn), colBuyIn)
		if reason != "" {
			return domain.SessionRecord{}, reason
		}
		cashOut, reason := parseAmount(cellAt(row, index, colCashOut), colCashOut)
		if reason != "" {
			return domain.SessionRecord{}, reason
		}
		if buyIn.IsNegative() {
			return domain.SessionRecord{}, fmt.Sprintf("negative buy_in %s", buyIn)
		}
		if cashOut.IsNegative() {
			return domain.SessionRecord{}, fmt.Sprintf("negative cash_out %s", cashOut)
		}
		record.BuyIn = buyIn
		record.CashOut = cashOut
		record.Net = cashOut.Sub(buyIn)
	case domain.SchemaNetDirect:
		raw := strings.TrimSpace(cellAt(row, index, colNet))
		if raw == "" {
			return domain.SessionRecord{}, "empty net"
		}
		net, err := decimal.NewFromString(cleanNumeric(raw))
		if err != nil {
			return domain.SessionRecord{}, fmt.Sprintf("invalid net %q", raw)
		}
		record.Net = net
	}

	return record, ""
}

// rejectDuplicates drops every record of a (session, player) pair that
// appears more than once. Keeping either copy would be a guess, so both are
// rejected and the session is marked affected.
func (v *Validator) rejectDuplicates(result *ValidationResult, affected map[string]bool) {
	type pair struct{ session, player string }
	seen := make(map[pair]int)
	for _, r := range result.Records {
		seen[pair{r.SessionID, r.PlayerKey}]++
	}

	kept := result.Records[:0]
	for _, r := range result.Records {
		if seen[pair{r.SessionID, r.PlayerKey}] > 1 {
			result.Rejected = append(result.Rejected, domain.RejectedRow{
				Row:    r.Row,
				Reason: fmt.Sprintf("duplicate result for player %q in session %q", r.Player, r.SessionID),
			})
			affected[r.SessionID] = true
			continue
		}
		kept = append(kept, r)
	}
	result.Records = kept

	sort.SliceStable(result.Rejected, func(i, j int) bool {
		return result.Rejected[i].Row < result.Rejected[j].Row
	})
}

func cellAt(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

var parenNegative = regexp.MustCompile(`\(([^)]+)\)`)

// cleanNumeric strips the decorations spreadsheets put on money: NBSP and
// surrounding space, accounting negatives like (123.45), currency symbols
// and thousands separators. Only digits, dot and minus survive.
func cleanNumeric(raw string) string {
	s := strings.ReplaceAll(raw, "\u00a0", "")
	s = strings.TrimSpace(s)
	s = parenNegative.ReplaceAllString(s, "-$1")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseAmount(raw, col string) (decimal.Decimal, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, fmt.Sprintf("empty %s", col)
	}
	d, err := decimal.NewFromString(cleanNumeric(trimmed))
	if err != nil {
		return decimal.Decimal{}, fmt.Sprintf("invalid %s %q", col, raw)
	}
	return d, ""
}

// dateLayouts are tried in order: ISO first, then day-first forms, matching
// how the session sheets have historically been filled in.
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", raw)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
