package billing

import "fmt"

const (
	WarnUnresolvedRate = "unresolved_rate"
	WarnZeroRate       = "zero_rate"
	WarnStoneExceeds   = "stone_exceeds_gross"
	WarnWastageExceeds = "wastage_exceeds_weight"
)

// Warning flags input that prices without error but probably not as intended.
// Warnings never block a total.
type Warning struct {
	Code    string `json:"code"`
	ItemID  string `json:"itemId,omitempty"`
	Message string `json:"message"`
}

// UnresolvedKarats lists, once each and in first-seen order, the grades used by
// new items that have no positive rate in table.
func UnresolvedKarats(bill BillInput, table RateTable) []Karat {
	var out []Karat
	seen := make(map[Karat]bool)
	for _, it := range bill.NewItems {
		if seen[it.Karat] || table.Has(it.Karat) {
			continue
		}
		seen[it.Karat] = true
		out = append(out, it.Karat)
	}
	return out
}

// Warnings inspects a bill for lines that will understate or clamp.
func Warnings(bill BillInput) []Warning {
	var out []Warning
	for _, it := range bill.NewItems {
		if num(it.RatePerGm) <= 0 && num(it.GrossWeightGm) > 0 {
			out = append(out, Warning{
				Code:    WarnZeroRate,
				ItemID:  it.ID,
				Message: fmt.Sprintf("%s (%s) has no rate; metal value is 0", describe(it.Description, DefaultNewItemDescription), it.Karat),
			})
		}
		if num(it.StoneWeightGm) > num(it.GrossWeightGm) {
			out = append(out, Warning{
				Code:    WarnStoneExceeds,
				ItemID:  it.ID,
				Message: fmt.Sprintf("%s: stone weight exceeds gross weight; net weight set to 0", describe(it.Description, DefaultNewItemDescription)),
			})
		}
	}
	for _, it := range bill.OldItems {
		if num(it.WastageGm) > num(it.WeightGm) {
			out = append(out, Warning{
				Code:    WarnWastageExceeds,
				ItemID:  it.ID,
				Message: fmt.Sprintf("%s: wastage exceeds weight; payable weight set to 0", describe(it.Description, DefaultOldItemDescription)),
			})
		}
	}
	return out
}

// RateWarnings turns UnresolvedKarats into warnings.
func RateWarnings(bill BillInput, table RateTable) []Warning {
	var out []Warning
	for _, k := range UnresolvedKarats(bill, table) {
		out = append(out, Warning{
			Code:    WarnUnresolvedRate,
			Message: fmt.Sprintf("no rate configured for %s", k),
		})
	}
	return out
}

func describe(desc, fallback string) string {
	if desc == "" {
		return fallback
	}
	return desc
}
