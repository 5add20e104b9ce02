package helpers

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IsValidStateCode reports whether the value looks like a 2-letter uppercase
// state code. Whether the code is a configured jurisdiction is a separate
// question answered by the state config registry.
func IsValidStateCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ValidateStateCode returns an error for malformed state codes.
func ValidateStateCode(code string) error {
	if !IsValidStateCode(code) {
		return fmt.Errorf("invalid state code: %q", code)
	}
	return nil
}

// ValidateNonNegative rejects negative monetary inputs at the boundary. The
// engines assume already-validated amounts.
func ValidateNonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%s must not be negative, got %s", field, amount.String())
	}
	return nil
}

// ValidateNonNegativeCount rejects negative counts at the boundary.
func ValidateNonNegativeCount(field string, count int64) error {
	if count < 0 {
		return fmt.Errorf("%s must not be negative, got %d", field, count)
	}
	return nil
}
