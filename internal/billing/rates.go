package billing

import "strings"

// RateTable maps a grade to its currency-per-gram rate.
type RateTable map[Karat]float64

// purity is the gold fraction of each grade relative to 24K.
var purity = map[Karat]float64{
	Karat24: 1.0,
	Karat22: 0.9166667,
	Karat21: 0.875,
	Karat20: 0.8333333,
	Karat19: 0.7916667,
	Karat18: 0.75,
	Karat17: 0.7083333,
	Karat16: 0.6666667,
	Karat15: 0.625,
	Karat14: 0.5833333,
}

// Purity returns the fraction of pure gold in k, or 0 for silver and unknown grades.
func Purity(k Karat) float64 {
	return purity[k]
}

// DefaultRates seeds a fresh store.
func DefaultRates() RateTable {
	return RateTable{
		Karat24: 10000,
		Karat22: 9166.67,
		Karat20: 8333.33,
		Karat18: 7500,
		Karat14: 5833.33,
		Silver:  150,
	}
}

// DeriveRates computes every gold grade from the pure 24K rate, keeps
// silver as given, then applies per-grade overrides.
func DeriveRates(pure24K, silver float64, overrides map[Karat]float64) RateTable {
	out := make(RateTable, len(Karats))
	for k, p := range purity {
		out[k] = Round2(num(pure24K) * p)
	}
	out[Silver] = Round2(num(silver))
	for k, v := range overrides {
		if k.Valid() && isFinite(v) {
			out[k] = Round2(v)
		}
	}
	return out
}

// Resolve returns the rate for k. A grade with no entry resolves to 0,
// which prices the metal at nothing; see UnresolvedKarats.
func (t RateTable) Resolve(k Karat) float64 {
	if r, ok := t[k]; ok {
		return num(r)
	}
	return 0
}

// Has reports whether k has a positive rate.
func (t RateTable) Has(k Karat) bool {
	r, ok := t[k]
	return ok && isFinite(r) && r > 0
}

// Clone returns an independent copy.
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Summary renders the table as "24K=10000.00, 22K=9166.67, ..." in grade order.
func (t RateTable) Summary() string {
	parts := make([]string, 0, len(t))
	for _, k := range Karats {
		if r, ok := t[k]; ok {
			parts = append(parts, string(k)+"="+formatPlain(r))
		}
	}
	return strings.Join(parts, ", ")
}

// ApplyRates returns a copy of bill whose new items with no captured rate
// take the table rate for their grade. Rates already on an item are kept,
// so re-pricing a saved bill never picks up later rate changes.
func ApplyRates(bill BillInput, table RateTable) BillInput {
	out := bill
	out.NewItems = make([]NewItem, len(bill.NewItems))
	for i, it := range bill.NewItems {
		if num(it.RatePerGm) == 0 {
			it.RatePerGm = table.Resolve(it.Karat)
		}
		out.NewItems[i] = it
	}
	return out
}
