package billing

// NewItemNetWeightGm is gross minus stone weight, rounded and floored at zero.
// Wastage is intentionally not deducted; see WastageUnit.
func NewItemNetWeightGm(item NewItem) float64 {
	net := Round2(num(item.GrossWeightGm) - num(item.StoneWeightGm))
	if net < 0 {
		return 0
	}
	return net
}

// MakingCharge interprets the item's making charge for the given net weight
// and metal value. Only an explicit FIXED mode uses the value as a flat fee;
// an absent or unrecognised mode charges nothing.
func MakingCharge(item NewItem, netWeight, netAmount float64) float64 {
	value := num(item.MakingChargeValue)
	switch item.MakingChargeMode {
	case MakingPercent:
		return netAmount * value / 100
	case MakingPerGm:
		return netWeight * value
	case MakingFixed:
		return value
	default:
		return 0
	}
}

// NewItemAmount prices one new item:
// net weight x rate, plus making charge, hallmark and stone cost.
func NewItemAmount(item NewItem) float64 {
	netWeight := NewItemNetWeightGm(item)
	netAmount := netWeight * num(item.RatePerGm)
	mc := MakingCharge(item, netWeight, netAmount)
	return Round2(netAmount + mc + num(item.HallmarkCost) + num(item.StoneCost))
}

// OldItemPayableWeightGm is weight less wastage, floored at zero.
func OldItemPayableWeightGm(item OldItem) float64 {
	w := num(item.WeightGm) - num(item.WastageGm)
	if w < 0 {
		return 0
	}
	return w
}

// OldItemAmount is the exchange value of an old item.
func OldItemAmount(item OldItem) float64 {
	return Round2(OldItemPayableWeightGm(item) * num(item.RatePerGm))
}

// MiscItemAmount treats the amount as a finished currency value.
func MiscItemAmount(item MiscItem) float64 {
	return Round2(num(item.Amount))
}

// ComputeTotals aggregates a bill. Every step is rounded where it is
// computed so the totals always equal the sum of the displayed parts.
// Taxes are charged on new + misc only; the old exchange is a payment
// offset applied after tax.
func ComputeTotals(bill BillInput) BillTotals {
	var newSum, oldSum, miscSum float64
	for _, it := range bill.NewItems {
		newSum += NewItemAmount(it)
	}
	for _, it := range bill.OldItems {
		oldSum += OldItemAmount(it)
	}
	for _, it := range bill.MiscItems {
		miscSum += MiscItemAmount(it)
	}

	t := BillTotals{
		NewItemsTotal: Round2(newSum),
		OldItemsTotal: Round2(oldSum),
		MiscTotal:     Round2(miscSum),
	}
	t.GrossTotal = Round2(t.NewItemsTotal + t.MiscTotal)
	t.CgstAmount = Round2(t.GrossTotal * num(bill.CgstPct) / 100)
	t.SgstAmount = Round2(t.GrossTotal * num(bill.SgstPct) / 100)
	t.NetAmount = Round2(t.GrossTotal + t.CgstAmount + t.SgstAmount - t.OldItemsTotal)
	t.GrandTotal = t.NetAmount
	return t
}
