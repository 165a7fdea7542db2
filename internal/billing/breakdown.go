package billing

// NewItemLine is a new item together with the figures computed for it.
type NewItemLine struct {
	NewItem
	NetWeightGm float64 `json:"netWeightGm"`
	LineTotal   float64 `json:"lineTotal"`
}

// OldItemLine is an exchange item together with its computed value.
type OldItemLine struct {
	OldItem
	PayableWeightGm float64 `json:"payableWeightGm"`
	LineTotal       float64 `json:"lineTotal"`
}

// MiscItemLine is a misc charge together with its rounded amount.
type MiscItemLine struct {
	MiscItem
	LineTotal float64 `json:"lineTotal"`
}

// InvoiceBreakdown is the item-level result handed to persistence, so the
// stored rows match what was displayed without being priced a second time.
type InvoiceBreakdown struct {
	NewItems  []NewItemLine  `json:"newItems"`
	OldItems  []OldItemLine  `json:"oldItems"`
	MiscItems []MiscItemLine `json:"miscItems"`
	Totals    BillTotals     `json:"totals"`
}

// Breakdown prices every line of the bill and aggregates the totals.
func Breakdown(bill BillInput) InvoiceBreakdown {
	out := InvoiceBreakdown{
		NewItems:  make([]NewItemLine, 0, len(bill.NewItems)),
		OldItems:  make([]OldItemLine, 0, len(bill.OldItems)),
		MiscItems: make([]MiscItemLine, 0, len(bill.MiscItems)),
		Totals:    ComputeTotals(bill),
	}
	for _, it := range bill.NewItems {
		out.NewItems = append(out.NewItems, NewItemLine{
			NewItem:     it,
			NetWeightGm: NewItemNetWeightGm(it),
			LineTotal:   NewItemAmount(it),
		})
	}
	for _, it := range bill.OldItems {
		out.OldItems = append(out.OldItems, OldItemLine{
			OldItem:         it,
			PayableWeightGm: OldItemPayableWeightGm(it),
			LineTotal:       OldItemAmount(it),
		})
	}
	for _, it := range bill.MiscItems {
		out.MiscItems = append(out.MiscItems, MiscItemLine{
			MiscItem:  it,
			LineTotal: MiscItemAmount(it),
		})
	}
	return out
}
