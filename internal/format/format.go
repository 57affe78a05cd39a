// Package format turns a PnL report into display strings: compact
// amounts, sign-prefixed figures, and a terminal card. Rounding and
// unit-suffixing live here, not in the engine.
package format

import (
	"fmt"
	"math"
)

// Amount renders a number compactly for card display: millions and
// thousands get a suffix, small values keep more precision.
func Amount(number float64) string {
	abs := math.Abs(number)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", number/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", number/1_000)
	case abs >= 1:
		return fmt.Sprintf("%.2f", number)
	default:
		return fmt.Sprintf("%.4f", number)
	}
}

// Percent renders an ROI percentage: whole numbers beyond ±100%, one
// decimal inside that range, always sign-prefixed.
func Percent(roi float64) string {
	var rendered string
	if math.Abs(roi) > 100 {
		rendered = fmt.Sprintf("%d", int(roi))
	} else {
		rendered = fmt.Sprintf("%.1f", roi)
	}
	if roi >= 0 && rendered[0] != '+' {
		rendered = "+" + rendered
	}
	return rendered + "%"
}

// SignedSOL renders a SOL figure with an explicit sign and unit.
func SignedSOL(value float64) string {
	if value >= 0 {
		return "+" + Amount(value) + " SOL"
	}
	return Amount(value) + " SOL"
}

// SignedUSD renders a USD figure with the sign ahead of the currency
// symbol.
func SignedUSD(value float64) string {
	if value >= 0 {
		return "+$" + Amount(value)
	}
	return "-$" + Amount(-value)
}
