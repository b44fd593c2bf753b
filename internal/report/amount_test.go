package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "16511.71", "16511.71"},
		{"space thousands and decimal comma", "16 511,71", "16511.71"},
		{"no-break space thousands", "16\u00a0511,71", "16511.71"},
		{"narrow no-break space thousands", "1\u202f490,00", "1490"},
		{"negative", "-1490.00", "-1490"},
		{"negative european", "-1 490,00", "-1490"},
		{"surrounding whitespace", "  62.5 ", "62.5"},
		{"empty", "", "0"},
		{"blank", "   ", "0"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAmount(tc.raw)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseAmountIsIdempotentOnNormalizedInput(t *testing.T) {
	t.Parallel()

	european, err := ParseAmount("16 511,71")
	require.NoError(t, err)
	normalized, err := ParseAmount(european.String())
	require.NoError(t, err)
	assert.True(t, european.Equal(normalized))
}

func TestParseAmountRejectsText(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"abc", "12,34,56", "N/A", "1.2.3"} {
		got, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrNotNumeric, raw)
		assert.True(t, got.IsZero(), raw)
	}
}

func TestParseCount(t *testing.T) {
	t.Parallel()

	n, err := ParseCount(" 62 ")
	require.NoError(t, err)
	assert.Equal(t, 62, n)

	n, err = ParseCount("")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ParseCount("6,2")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "16511.71", formatAmount(decimal.RequireFromString("16511.71")))
	assert.Equal(t, "-1490.00", formatAmount(decimal.RequireFromString("-1490")))
	assert.Equal(t, "0.00", formatAmount(decimal.Zero))
	assert.Equal(t, "0.125", formatAmount(decimal.RequireFromString("0.125")))
}
