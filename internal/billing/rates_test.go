package billing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKarat(t *testing.T) {
	tests := []struct {
		raw  string
		want Karat
		ok   bool
	}{
		{raw: "22K", want: Karat22, ok: true},
		{raw: "22k", want: Karat22, ok: true},
		{raw: " 18 karat ", want: Karat18, ok: true},
		{raw: "14kt", want: Karat14, ok: true},
		{raw: "silver", want: Silver, ok: true},
		{raw: "23K", ok: false},
		{raw: "gold", ok: false},
		{raw: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseKarat(tt.raw)
		require.Equal(t, tt.ok, ok, tt.raw)
		require.Equal(t, tt.want, got, tt.raw)
	}
}

func TestDeriveRates(t *testing.T) {
	table := DeriveRates(10000, 150, map[Karat]float64{Karat18: 7400, "23K": 1})

	require.Equal(t, 10000.0, table[Karat24])
	require.Equal(t, 9166.67, table[Karat22])
	require.Equal(t, 8750.0, table[Karat21])
	require.Equal(t, 5833.33, table[Karat14])
	require.Equal(t, 7400.0, table[Karat18])
	require.Equal(t, 150.0, table[Silver])
	require.NotContains(t, table, Karat("23K"))
	require.Len(t, table, len(Karats))
}

func TestRateTableResolve(t *testing.T) {
	table := RateTable{Karat22: 6000, Silver: 0}

	require.Equal(t, 6000.0, table.Resolve(Karat22))
	require.Equal(t, 0.0, table.Resolve(Karat18))
	require.True(t, table.Has(Karat22))
	require.False(t, table.Has(Silver))
	require.False(t, table.Has(Karat18))
}

func TestApplyRatesKeepsCapturedRates(t *testing.T) {
	bill := BillInput{NewItems: []NewItem{
		{ID: "a", Karat: Karat22, RatePerGm: 5800},
		{ID: "b", Karat: Karat22},
		{ID: "c", Karat: Silver},
	}}
	table := RateTable{Karat22: 6100, Silver: 150}

	priced := ApplyRates(bill, table)

	require.Equal(t, 5800.0, priced.NewItems[0].RatePerGm)
	require.Equal(t, 6100.0, priced.NewItems[1].RatePerGm)
	require.Equal(t, 150.0, priced.NewItems[2].RatePerGm)
	require.Equal(t, 0.0, bill.NewItems[1].RatePerGm, "input must not be mutated")

	table[Karat22] = 9999
	require.Equal(t, 6100.0, priced.NewItems[1].RatePerGm)
}

func TestRateTableSummary(t *testing.T) {
	table := RateTable{Silver: 150, Karat22: 9166.67, Karat24: 10000}
	require.Equal(t, "24K=10000.00, 22K=9166.67, SILVER=150.00", table.Summary())
}

func TestRateWarnings(t *testing.T) {
	bill := BillInput{
		NewItems: []NewItem{
			{ID: "a", Karat: Karat22, GrossWeightGm: 2},
			{ID: "b", Karat: Karat22, GrossWeightGm: 3},
			{ID: "c", Karat: Karat18, GrossWeightGm: 1, RatePerGm: 7500},
		},
		OldItems: []OldItem{{ID: "o", WeightGm: 1, WastageGm: 2}},
	}

	rw := RateWarnings(bill, RateTable{Karat18: 7500})
	require.Len(t, rw, 1)
	require.Equal(t, WarnUnresolvedRate, rw[0].Code)

	w := Warnings(bill)
	require.Len(t, w, 3)
	require.Equal(t, WarnZeroRate, w[0].Code)
	require.Equal(t, "a", w[0].ItemID)
	require.Equal(t, WarnWastageExceeds, w[2].Code)
}
