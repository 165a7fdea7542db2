package assistant

import (
	"testing"

	"go-jewel-billing/internal/billing"

	"github.com/stretchr/testify/require"
)

func TestExtractCustomer(t *testing.T) {
	tests := []struct {
		name, text, wantName, wantMobile string
		ok                               bool
	}{
		{"colon form", "generate bill customer: Asha Rao 9876543210, 22k 5g ring", "Asha Rao", "9876543210", true},
		{"for and mobile", "create invoice for Ravi Kumar mobile number 91234 56780", "", "", false},
		{"for and mobile digits", "create invoice for Ravi Kumar mobile number 9123456780 22k 4g chain", "Ravi Kumar", "9123456780", true},
		{"and mobile", "bill for Meena and mobile: 9000011111", "Meena", "9000011111", true},
		{"name without mobile", "generate bill for Asha 22k 5g ring", "", "", false},
		{"nothing", "22k 5g ring", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, ok := extractCustomer(tc.text)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.wantName, f.CustomerName)
			require.Equal(t, tc.wantMobile, f.CustomerMobile)
		})
	}
}

func TestExtractKaratItems(t *testing.T) {
	f, ok := extractKaratItems("generate bill 22K 10g ring, 18 karat 2.5 grams stud for Asha, 24kt 1gm coin")
	require.True(t, ok)
	require.Equal(t, []ItemSpec{
		{Description: "ring", WeightGm: 10, Karat: billing.Karat22},
		{Description: "stud", WeightGm: 2.5, Karat: billing.Karat18},
		{Description: "coin", WeightGm: 1, Karat: billing.Karat24},
	}, f.Items)

	f, ok = extractKaratItems("22k 5g")
	require.True(t, ok)
	require.Equal(t, billing.DefaultNewItemDescription, f.Items[0].Description)

	_, ok = extractKaratItems("23k 5g ring")
	require.False(t, ok)
}

func TestExtractQuantityItems(t *testing.T) {
	f, ok := extractQuantityItems("generate bill 2x ring each 2g 18K and 1 x chain 8.5g 22k")
	require.True(t, ok)
	require.Len(t, f.Items, 3)
	require.Equal(t, ItemSpec{Description: "ring", WeightGm: 2, Karat: billing.Karat18}, f.Items[0])
	require.Equal(t, f.Items[0], f.Items[1])
	require.Equal(t, ItemSpec{Description: "chain", WeightGm: 8.5, Karat: billing.Karat22}, f.Items[2])

	f, ok = extractQuantityItems("3x bangle 10g")
	require.True(t, ok)
	require.Len(t, f.Items, 3)
	require.Equal(t, billing.Karat18, f.Items[0].Karat)
}

func TestKaratFormWinsOverQuantityForm(t *testing.T) {
	f := Extract("generate bill 22K 5g ring", DefaultRules)
	require.Len(t, f.Items, 1)
	require.Equal(t, billing.Karat22, f.Items[0].Karat)
	require.Equal(t, 5.0, f.Items[0].WeightGm)

	// Once the karat rule claims the items group the quantity form is ignored.
	f = Extract("generate bill 22K 5g ring and 2x stud 1g", DefaultRules)
	require.Len(t, f.Items, 1)
}

func TestExtractChargesAndRate(t *testing.T) {
	f := Extract("generate bill 22k 10g ring @6100, making charge 12%, HM 100, old chain 5g @5000, misc polish 250", DefaultRules)

	require.NotNil(t, f.MakingPct)
	require.Equal(t, 12.0, *f.MakingPct)
	require.NotNil(t, f.Hallmark)
	require.Equal(t, 100.0, *f.Hallmark)
	require.NotNil(t, f.Rate)
	require.Equal(t, 6100.0, *f.Rate)
	require.Equal(t, []billing.OldItem{{Description: "chain", WeightGm: 5, RatePerGm: 5000}}, f.OldItems)
	require.Equal(t, []billing.MiscItem{{Description: "polish", Amount: 250}}, f.MiscItems)
}

func TestRateIgnoresOldItemRate(t *testing.T) {
	f := Extract("create bill exchange 5g @5000 then 22k 10g ring", DefaultRules)
	require.Nil(t, f.Rate)
	require.Len(t, f.OldItems, 1)
	require.Equal(t, billing.DefaultOldItemDescription, f.OldItems[0].Description)
}

func TestMakingChargeIsNotMisc(t *testing.T) {
	_, ok := extractMiscItems("22k 10g ring making charge 12%")
	require.False(t, ok)

	f, ok := extractMiscItems("service charge 150")
	require.True(t, ok)
	require.Equal(t, []billing.MiscItem{{Description: "charge", Amount: 150}}, f.MiscItems)
}

func TestCleanDescription(t *testing.T) {
	require.Equal(t, "ring", cleanDescription("ring for Asha"))
	require.Equal(t, "gold drop ear", cleanDescription("gold drop ear rings"))
	require.Equal(t, "chain", cleanDescription("chain old"))
	require.Equal(t, billing.DefaultNewItemDescription, cleanDescription("  "))
}
