// Package utils provides common formatting helpers for coindeck.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// NoChange is rendered when a coin has no 24h change figure.
const NoChange = "—"

// FormatUSD formats an amount as US dollars with grouped thousands
// ($1,234,567.89). Sub-dollar prices keep enough precision to be useful.
func FormatUSD(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	// Small-cap coins trade well below a cent.
	if amount > 0 && amount < 0.01 {
		s := fmt.Sprintf("$%.6f", amount)
		if negative {
			return "-" + s
		}
		return s
	}

	// Round before splitting so 1.999 becomes $2.00, not $1.00.
	amount = math.Round(amount*100) / 100

	intPart := int64(amount)
	formatted := groupThousands(intPart)
	dec := fmt.Sprintf("%.2f", amount-float64(intPart))
	formatted += dec[1:] // skip the leading "0"

	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatUSDCompact formats an amount in compact notation,
// e.g. 1325000000000 → "$1.33T", 45600000 → "$45.60M".
func FormatUSDCompact(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	prefix := "$"
	if negative {
		prefix = "-$"
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%.2fT", prefix, amount/1e12)
	case amount >= 1e9:
		return fmt.Sprintf("%s%.2fB", prefix, amount/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("%s%.2fM", prefix, amount/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%s%.2fK", prefix, amount/1e3)
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPercent formats a 24h percentage change to two decimals with an
// explicit sign ("+2.41%", "-0.73%"). A nil value renders as NoChange.
func FormatPercent(pct *float64) string {
	if pct == nil {
		return NoChange
	}
	return fmt.Sprintf("%+.2f%%", *pct)
}

// groupThousands inserts commas into an integer (1234567 → "1,234,567").
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
