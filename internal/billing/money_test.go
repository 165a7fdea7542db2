package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 1.005, want: 1.01},
		{in: 2.675, want: 2.68},
		{in: 0.1 + 0.2, want: 0.3},
		{in: 991.4999, want: 991.5},
		{in: 66100, want: 66100},
		{in: 1.234, want: 1.23},
		{in: -0.125, want: -0.12},
		{in: -1, want: -1},
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: 0},
		{in: math.Inf(-1), want: 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "₹0.00"},
		{in: 100, want: "₹100.00"},
		{in: 991.5, want: "₹991.50"},
		{in: 68083, want: "₹68,083.00"},
		{in: 6808300, want: "₹68,08,300.00"},
		{in: 123456789.5, want: "₹12,34,56,789.50"},
		{in: -25000, want: "-₹25,000.00"},
		{in: math.NaN(), want: "₹0.00"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Currency(tt.in), "Currency(%v)", tt.in)
	}
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "6100.00", FormatAmount(6100))
	require.Equal(t, "9166.67", FormatAmount(9166.666))
}
