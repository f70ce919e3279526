package app

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatNaira renders an amount for user-facing messages, e.g. "₦2,000" or
// "₦1,250.5". Thousands are grouped; a fractional part appears only when
// non-zero.
func formatNaira(amount decimal.Decimal) string {
	s := amount.String()
	intPart, fracPart, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := "₦" + b.String()
	if neg {
		out = "-" + out
	}
	if fracPart != "" {
		out += "." + fracPart
	}
	return out
}
