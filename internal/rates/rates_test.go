package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertIdentity(t *testing.T) {
	// Same source and target returns the amount untouched, even when the
	// table has no entry for the currency.
	got, err := Convert(123.45, "XXX", "XXX", Table{})
	require.NoError(t, err)
	assert.Equal(t, 123.45, got)
}

func TestConvertViaBase(t *testing.T) {
	table := Table{"CHF": 1, "EUR": 1.05, "USD": 0.88}

	tests := []struct {
		name     string
		amount   float64
		from, to string
		expected float64
	}{
		{"EUR to CHF", 50, "EUR", "CHF", 52.5},
		{"CHF to CHF", 100, "CHF", "CHF", 100},
		{"USD to CHF", 100, "USD", "CHF", 88},
		{"EUR to USD", 50, "EUR", "USD", 50 * 1.05 / 0.88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.amount, tt.from, tt.to, table)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	table := Table{"CHF": 1, "EUR": 1.05, "USD": 0.88, "GBP": 1.12}

	for _, from := range []string{"CHF", "EUR", "USD", "GBP"} {
		for _, to := range []string{"CHF", "EUR", "USD", "GBP"} {
			there, err := Convert(777.77, from, to, table)
			require.NoError(t, err)
			back, err := Convert(there, to, from, table)
			require.NoError(t, err)
			assert.InDelta(t, 777.77, back, 1e-9, "%s -> %s -> %s", from, to, from)
		}
	}
}

func TestConvertMissingRate(t *testing.T) {
	table := Table{"CHF": 1}

	_, err := Convert(10, "EUR", "CHF", table)
	assert.ErrorIs(t, err, ErrMissingRate)

	_, err = Convert(10, "CHF", "EUR", table)
	assert.ErrorIs(t, err, ErrMissingRate)
}

func TestTableHas(t *testing.T) {
	table := Table{"CHF": 1}
	assert.True(t, table.Has("CHF"))
	assert.False(t, table.Has("EUR"))
}
