package exporter

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// formatMoney renders a monetary decimal with exactly two places so a
// value like 13.4 exports as 13.40.
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatRate renders a ratio with four places, matching its rounding.
func formatRate(d decimal.Decimal) string {
	return d.StringFixed(4)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
