package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitScale is the number of fraction digits stored in minor units.
const MinorUnitScale = 2

var (
	minorFactor = decimal.New(1, MinorUnitScale)
	maxMinor    = decimal.NewFromInt(1 << 62)
)

// ToMinor converts a major-unit decimal amount (e.g. 15.25) to int64 minor units.
// Amounts with more than two fraction digits are rejected.
func ToMinor(amount decimal.Decimal) (int64, error) {
	scaled := amount.Mul(minorFactor)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("ToMinor: %s has more than %d decimal places: %w", amount, MinorUnitScale, ErrInvalidAmount)
	}
	if scaled.Abs().GreaterThan(maxMinor) {
		return 0, fmt.Errorf("ToMinor: %s out of range: %w", amount, ErrInvalidAmount)
	}
	return scaled.IntPart(), nil
}

// FromMinor renders int64 minor units as a major-unit decimal.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorUnitScale)
}
