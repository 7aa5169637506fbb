package calculator

import (
	"math"
	"strconv"
	"strings"
)

// SanitizeNumeric coerces free-text input into a non-negative number.
//
// Every character other than a digit or '.' is dropped, then only the first
// two dot-separated segments are kept ("12.34.56" becomes "12.34"). Input that
// still does not parse, such as "" or ".", yields 0.
func SanitizeNumeric(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)

	parts := strings.Split(cleaned, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	cleaned = strings.Join(parts, ".")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return Normalize(v)
}

// Normalize maps NaN and ±Inf to 0 so they never reach derived totals.
func Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
