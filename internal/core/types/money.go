// Package types provides numeric utilities shared across the domain.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// MustMoney parses a decimal literal, panicking on malformed input.
// For constants in seeds and fixtures only.
func MustMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// SafeFloat64 neutralizes non-finite float values.
// Division by a zero quantity or overflow must never leak NaN or Inf
// into reports or JSON encoding; such results collapse to 0.
func SafeFloat64(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToFloat64 converts a stored decimal to float64 for in-memory
// computation, neutralizing non-finite results.
func ToFloat64(d decimal.Decimal) float64 {
	return SafeFloat64(d.InexactFloat64())
}
