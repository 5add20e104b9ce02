package helpers

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ZeroIfNil dereferences an optional decimal, treating absence as zero. The
// "missing means zero" semantics are load-bearing for the engines; malformed
// values are rejected at the boundary instead of being coerced.
func ZeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ParseAmount parses a monetary amount from its string form. An empty string
// means zero; anything unparseable is an error rather than a silent zero.
func ParseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal value for %s: %q", field, value)
	}
	return d, nil
}

// ParseAmountMap parses a map of string amounts keyed by state code.
func ParseAmountMap(field string, values map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(values))
	for state, v := range values {
		d, err := ParseAmount(fmt.Sprintf("%s[%s]", field, state), v)
		if err != nil {
			return nil, err
		}
		out[state] = d
	}
	return out, nil
}

// SafeDivide divides numerator by denominator at the given precision,
// returning zero when the denominator is zero. Every ratio in the engines
// goes through this guard.
func SafeDivide(numerator, denominator decimal.Decimal, precision int32) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.DivRound(denominator, precision)
}
