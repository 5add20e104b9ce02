package helpers_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateline/stateline-api/helpers"
)

func TestZeroIfNil(t *testing.T) {
	assert.True(t, helpers.ZeroIfNil(nil).IsZero())

	v := decimal.RequireFromString("42.5")
	assert.True(t, helpers.ZeroIfNil(&v).Equal(v))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "plain integer", value: "500000", want: "500000"},
		{name: "fractional", value: "0.0884", want: "0.0884"},
		{name: "empty means zero", value: "", want: "0"},
		{name: "negative parses", value: "-12.50", want: "-12.5"},
		{name: "not a number", value: "12abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := helpers.ParseAmount("amount", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "amount")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmountMap(t *testing.T) {
	parsed, err := helpers.ParseAmountMap("state_sales", map[string]string{
		"CA": "600000",
		"NY": "",
	})
	require.NoError(t, err)
	assert.True(t, parsed["CA"].Equal(decimal.RequireFromString("600000")))
	assert.True(t, parsed["NY"].IsZero())

	_, err = helpers.ParseAmountMap("state_sales", map[string]string{"TX": "oops"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state_sales[TX]")
}

func TestSafeDivide(t *testing.T) {
	half := helpers.SafeDivide(decimal.NewFromInt(1), decimal.NewFromInt(2), 6)
	assert.Equal(t, "0.5", half.String())

	// A zero denominator yields zero instead of an error or a panic.
	assert.True(t, helpers.SafeDivide(decimal.NewFromInt(5), decimal.Zero, 6).IsZero())

	third := helpers.SafeDivide(decimal.NewFromInt(1), decimal.NewFromInt(3), 6)
	assert.Equal(t, "0.333333", third.String())
}

func TestValidateStateCode(t *testing.T) {
	for _, code := range []string{"CA", "NY", "DC", "ZZ"} {
		assert.NoError(t, helpers.ValidateStateCode(code), code)
	}
	for _, code := range []string{"", "C", "CAL", "ca", "C1", "c@"} {
		assert.Error(t, helpers.ValidateStateCode(code), code)
	}
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, helpers.ValidateNonNegative("amount", decimal.Zero))
	assert.NoError(t, helpers.ValidateNonNegative("amount", decimal.NewFromInt(10)))

	err := helpers.ValidateNonNegative("sales_amount", decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sales_amount")

	assert.NoError(t, helpers.ValidateNonNegativeCount("count", 0))
	assert.Error(t, helpers.ValidateNonNegativeCount("count", -5))
}
