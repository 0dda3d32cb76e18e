package pboml

import (
	"math"
	"strconv"
	"strings"
)

// Number formatting follows the document format's fixed conventions rather
// than CLDR locale rules: table and chart numbers group thousands with a
// space in both languages.

// formatNumber renders v with the given decimal count, decimal separator,
// and thousands separator. Rounding is to nearest, ties to even.
func formatNumber(v float64, decimals int, decSep, thousandsSep string) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	if len(intPart) > 3 && thousandsSep != "" {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteString(thousandsSep)
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	out := intPart
	if fracPart != "" {
		out += decSep + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// formatCellNumber formats a table or chart cell: 0 decimals, space-grouped
// thousands, identical in both locales.
func formatCellNumber(v float64) string {
	return formatNumber(v, 0, ".", " ")
}

// formatKVNumber formats a kvlist number: 2 decimals, comma-grouped.
func formatKVNumber(v float64) string {
	return formatNumber(v, 2, ".", ",")
}

// formatTick formats a chart axis tick: whole values with 0 decimals,
// fractional values with 1.
func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return formatNumber(v, 0, ".", " ")
	}
	return formatNumber(v, 1, ".", " ")
}
