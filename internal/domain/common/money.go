// internal/domain/common/money.go
package common

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of minor digits for every supported currency.
const MinorUnitExponent = 2

// MinorToDecimal converts an amount in minor units (kobo, cents) to a decimal.
func MinorToDecimal(minor int) decimal.Decimal {
	return decimal.New(int64(minor), -MinorUnitExponent)
}

// FormatMinor renders "NGN 11,000.00" style strings for emails and metadata.
func FormatMinor(minor int, currency string) string {
	s := MinorToDecimal(minor).StringFixed(MinorUnitExponent)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" {
		return c + " " + out
	}
	return out
}
