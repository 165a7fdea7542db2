package assistant

import (
	"go-jewel-billing/internal/billing"

	"github.com/google/uuid"
)

const minMobileDigits = 8

// Defaults are applied to every drafted bill.
type Defaults struct {
	CgstPct float64
	SgstPct float64
}

// Draft is a best-effort bill read from free text, with a totals preview.
type Draft struct {
	Bill         billing.BillInput  `json:"bill"`
	Totals       billing.BillTotals `json:"totals"`
	NeedCustomer bool               `json:"needCustomer"`
	Warnings     []billing.Warning  `json:"warnings,omitempty"`
}

// HasItems reports whether any new item was recognised.
func (d Draft) HasItems() bool {
	return len(d.Bill.NewItems) > 0
}

// BuildDraft extracts a bill from text. New items take the explicit "@rate"
// when one is given, otherwise today's rate for their grade from table.
func BuildDraft(text string, table billing.RateTable, defaults Defaults) Draft {
	f := Extract(text, DefaultRules)

	bill := billing.BillInput{
		CustomerName:   f.CustomerName,
		CustomerMobile: f.CustomerMobile,
		CgstPct:        defaults.CgstPct,
		SgstPct:        defaults.SgstPct,
	}

	mode, making := billing.MakingFixed, 0.0
	if f.MakingPct != nil {
		mode, making = billing.MakingPercent, *f.MakingPct
	}
	hallmark := 0.0
	if f.Hallmark != nil {
		hallmark = *f.Hallmark
	}

	for _, it := range f.Items {
		rate := table.Resolve(it.Karat)
		if f.Rate != nil {
			rate = *f.Rate
		}
		bill.NewItems = append(bill.NewItems, billing.NewItem{
			ID:                uuid.NewString(),
			Description:       it.Description,
			Karat:             it.Karat,
			GrossWeightGm:     it.WeightGm,
			WastageUnit:       billing.WastagePercent,
			RatePerGm:         rate,
			MakingChargeMode:  mode,
			MakingChargeValue: making,
			HallmarkCost:      hallmark,
		})
	}
	for _, it := range f.OldItems {
		it.ID = uuid.NewString()
		bill.OldItems = append(bill.OldItems, it)
	}
	for _, it := range f.MiscItems {
		it.ID = uuid.NewString()
		bill.MiscItems = append(bill.MiscItems, it)
	}
	bill = bill.Normalized()

	d := Draft{
		Bill:         bill,
		Totals:       billing.ComputeTotals(bill),
		NeedCustomer: bill.CustomerName == "" || len(bill.CustomerMobile) < minMobileDigits,
	}
	if f.Rate == nil {
		d.Warnings = append(d.Warnings, billing.RateWarnings(bill, table)...)
	}
	d.Warnings = append(d.Warnings, billing.Warnings(bill)...)
	return d
}
