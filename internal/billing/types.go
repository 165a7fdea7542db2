package billing

import "strings"

// MakingChargeMode selects how MakingChargeValue is interpreted.
type MakingChargeMode string

const (
	MakingPercent MakingChargeMode = "PERCENT"
	MakingPerGm   MakingChargeMode = "PER_GM"
	MakingFixed   MakingChargeMode = "FIXED"
)

// WastageUnit qualifies NewItem.WastageValue. Wastage is not priced today.
type WastageUnit string

const (
	WastageGrams   WastageUnit = "g"
	WastagePercent WastageUnit = "%"
	WastageAmount  WastageUnit = "AMOUNT"
)

const (
	DefaultNewItemDescription  = "Item"
	DefaultOldItemDescription  = "Old Item"
	DefaultMiscItemDescription = "Misc"
)

// NewItem is a piece being sold. RatePerGm is captured when the line is
// built and never re-read from the rate table afterwards.
type NewItem struct {
	ID                string           `json:"id"`
	Description       string           `json:"description"`
	Karat             Karat            `json:"karat"`
	GrossWeightGm     float64          `json:"grossWeightGm"`
	StoneWeightGm     float64          `json:"stoneWeightGm"`
	WastageValue      float64          `json:"wastageValue"`
	WastageUnit       WastageUnit      `json:"wastageUnit,omitempty"`
	StoneCost         float64          `json:"stoneCost"`
	RatePerGm         float64          `json:"ratePerGm"`
	MakingChargeMode  MakingChargeMode `json:"makingChargeMode,omitempty"`
	MakingChargeValue float64          `json:"makingChargeValue"`
	HallmarkCost      float64          `json:"hallmarkCost"`
}

// OldItem is customer material taken in exchange. Its value is deducted
// from the invoice and is never taxed.
type OldItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	WeightGm    float64 `json:"weightGm"`
	WastageGm   float64 `json:"wastageGm"`
	RatePerGm   float64 `json:"ratePerGm"`
}

// MiscItem is a flat, taxable charge.
type MiscItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// BillInput is everything needed to price an invoice. Customer fields are
// informational and not validated here.
type BillInput struct {
	CustomerName    string     `json:"customerName"`
	CustomerMobile  string     `json:"customerMobile"`
	CustomerAddress string     `json:"customerAddress"`
	CgstPct         float64    `json:"cgstPct"`
	SgstPct         float64    `json:"sgstPct"`
	NewItems        []NewItem  `json:"newItems"`
	OldItems        []OldItem  `json:"oldItems"`
	MiscItems       []MiscItem `json:"miscItems"`
}

// BillTotals is derived from a BillInput on every read and never stored on its own.
type BillTotals struct {
	NewItemsTotal float64 `json:"newItemsTotal"`
	OldItemsTotal float64 `json:"oldItemsTotal"`
	MiscTotal     float64 `json:"miscTotal"`
	GrossTotal    float64 `json:"grossTotal"`
	CgstAmount    float64 `json:"cgstAmount"`
	SgstAmount    float64 `json:"sgstAmount"`
	NetAmount     float64 `json:"netAmount"`
	GrandTotal    float64 `json:"grandTotal"`
}

// Normalized returns a copy with non-finite numbers coerced to zero and
// empty descriptions replaced by their defaults. Item order is preserved.
func (b BillInput) Normalized() BillInput {
	out := b
	out.CustomerName = strings.TrimSpace(b.CustomerName)
	out.CustomerMobile = strings.TrimSpace(b.CustomerMobile)
	out.CustomerAddress = strings.TrimSpace(b.CustomerAddress)
	out.CgstPct = num(b.CgstPct)
	out.SgstPct = num(b.SgstPct)

	out.NewItems = make([]NewItem, len(b.NewItems))
	for i, it := range b.NewItems {
		it.GrossWeightGm = num(it.GrossWeightGm)
		it.StoneWeightGm = num(it.StoneWeightGm)
		it.WastageValue = num(it.WastageValue)
		it.StoneCost = num(it.StoneCost)
		it.RatePerGm = num(it.RatePerGm)
		it.MakingChargeValue = num(it.MakingChargeValue)
		it.HallmarkCost = num(it.HallmarkCost)
		if strings.TrimSpace(it.Description) == "" {
			it.Description = DefaultNewItemDescription
		}
		out.NewItems[i] = it
	}

	out.OldItems = make([]OldItem, len(b.OldItems))
	for i, it := range b.OldItems {
		it.WeightGm = num(it.WeightGm)
		it.WastageGm = num(it.WastageGm)
		it.RatePerGm = num(it.RatePerGm)
		if strings.TrimSpace(it.Description) == "" {
			it.Description = DefaultOldItemDescription
		}
		out.OldItems[i] = it
	}

	out.MiscItems = make([]MiscItem, len(b.MiscItems))
	for i, it := range b.MiscItems {
		it.Amount = num(it.Amount)
		if strings.TrimSpace(it.Description) == "" {
			it.Description = DefaultMiscItemDescription
		}
		out.MiscItems[i] = it
	}
	return out
}

// IsEmpty is true when the bill has no lines of any kind.
func (b BillInput) IsEmpty() bool {
	return len(b.NewItems) == 0 && len(b.OldItems) == 0 && len(b.MiscItems) == 0
}
