package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return NewStore(db)
}

func sampleBill(name, mobile string) billing.BillInput {
	return billing.BillInput{
		CustomerName:    name,
		CustomerMobile:  mobile,
		CustomerAddress: "MG Road",
		CgstPct:         1.5,
		SgstPct:         1.5,
		NewItems: []billing.NewItem{{
			ID:                "n1",
			Description:       "Ring",
			Karat:             billing.Karat22,
			GrossWeightGm:     10,
			RatePerGm:         6000,
			MakingChargeMode:  billing.MakingPercent,
			MakingChargeValue: 10,
			HallmarkCost:      100,
		}},
		OldItems:  []billing.OldItem{{ID: "o1", Description: "Old chain", WeightGm: 5, RatePerGm: 5000}},
		MiscItems: []billing.MiscItem{{ID: "m1", Description: "Polish", Amount: 500}},
	}
}

func record(bill billing.BillInput, color string, no int, at time.Time) InvoiceRecord {
	bill = bill.Normalized()
	return InvoiceRecord{
		InvoiceNo: no,
		Color:     color,
		IssuedAt:  at,
		Bill:      bill,
		Breakdown: billing.Breakdown(bill),
	}
}

func mustCreate(t *testing.T, s *Store, rec InvoiceRecord) *InvoiceResult {
	t.Helper()
	res, err := s.CreateInvoice(context.Background(), rec)
	require.NoError(t, err)
	return res
}

var march = time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

func TestCreateInvoiceNumbersPerColor(t *testing.T) {
	s := newTestStore(t)
	bill := sampleBill("Asha", "9876543210")

	require.Equal(t, 1, mustCreate(t, s, record(bill, "white", 0, march)).Number)
	require.Equal(t, 2, mustCreate(t, s, record(bill, "white", 0, march)).Number)
	require.Equal(t, 1, mustCreate(t, s, record(bill, "Yellow", 0, march)).Number)

	res := mustCreate(t, s, record(bill, "", 0, march))
	require.Equal(t, DefaultColor, res.Color)
	require.Equal(t, 3, res.Number)
}

func TestCreateInvoiceExplicitNumberRaisesCounter(t *testing.T) {
	s := newTestStore(t)
	bill := sampleBill("Asha", "9876543210")

	require.Equal(t, 10, mustCreate(t, s, record(bill, "white", 10, march)).Number)
	require.Equal(t, 11, mustCreate(t, s, record(bill, "white", 0, march)).Number)
	require.Equal(t, 5, mustCreate(t, s, record(bill, "white", 5, march)).Number)
	require.Equal(t, 12, mustCreate(t, s, record(bill, "white", 0, march)).Number)
}

func TestCreateInvoiceDuplicateNumberWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, record(sampleBill("Asha", "9876543210"), "white", 7, march))

	_, err := s.CreateInvoice(ctx, record(sampleBill("Ravi", "9123456780"), "white", 7, march))
	require.ErrorIs(t, err, ErrDuplicateInvoiceNo)

	var invoices, items, customers int64
	require.NoError(t, s.DB().Model(&models.Invoice{}).Count(&invoices).Error)
	require.NoError(t, s.DB().Model(&models.InvoiceItem{}).Count(&items).Error)
	require.NoError(t, s.DB().Model(&models.Customer{}).Count(&customers).Error)
	require.EqualValues(t, 1, invoices)
	require.EqualValues(t, 1, items)
	require.EqualValues(t, 1, customers)

	require.Equal(t, 8, mustCreate(t, s, record(sampleBill("Ravi", "9123456780"), "white", 0, march)).Number)
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateInvoice(ctx, record(sampleBill("Asha", "  "), "white", 0, march))
	require.ErrorIs(t, err, ErrInvalidInvoice)

	rec := record(sampleBill("Asha", "9876543210"), "white", 0, march)
	rec.Breakdown.NewItems = nil
	_, err = s.CreateInvoice(ctx, rec)
	require.ErrorIs(t, err, ErrInvalidInvoice)

	_, err = s.CreateInvoice(ctx, record(sampleBill("Asha", "9876543210"), "white", -1, march))
	require.ErrorIs(t, err, ErrInvalidInvoice)
}

func TestCreateInvoiceStoresBreakdownAndSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := record(sampleBill("Asha", "9876543210"), "white", 0, march)
	res := mustCreate(t, s, rec)

	require.Equal(t, 43598.00, res.Totals.GrandTotal)

	var items []models.InvoiceItem
	require.NoError(t, s.DB().Where("invoice_id = ?", res.ID).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, "n1", items[0].ItemRef)
	require.Equal(t, rec.Breakdown.NewItems[0].LineTotal, items[0].LineTotal)
	require.Equal(t, 10.0, items[0].Net)
	require.Equal(t, "PERCENT", items[0].MakingMode)

	var old models.OldInvoiceItem
	require.NoError(t, s.DB().Where("invoice_id = ?", res.ID).First(&old).Error)
	require.Equal(t, 25000.00, old.Total)

	stored, err := s.GetInvoice(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, res.Number, stored.Number)
	require.Equal(t, stored.Total, billing.ComputeTotals(stored.Bill).GrandTotal)
	require.Equal(t, "Ring", stored.Bill.NewItems[0].Description)

	_, err = s.GetInvoice(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateInvoiceAssignsMissingItemIDs(t *testing.T) {
	s := newTestStore(t)
	bill := sampleBill("Asha", "9876543210")
	bill.NewItems[0].ID = ""
	res := mustCreate(t, s, record(bill, "white", 0, march))

	stored, err := s.GetInvoice(context.Background(), res.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.Bill.NewItems[0].ID)

	var item models.InvoiceItem
	require.NoError(t, s.DB().Where("invoice_id = ?", res.ID).First(&item).Error)
	require.Equal(t, stored.Bill.NewItems[0].ID, item.ItemRef)
}

func TestCreateInvoiceUpsertsCustomer(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, record(sampleBill("Asha", "9876543210"), "white", 0, march))
	mustCreate(t, s, record(sampleBill("Asha Rao", "9876543210"), "white", 0, march))

	var c models.Customer
	require.NoError(t, s.DB().First(&c, "mobile = ?", "9876543210").Error)
	require.Equal(t, "Asha Rao", c.Name)
	require.Equal(t, "MG Road", c.Address)
}

func TestRates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.SeedDefaultRates(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	seeded, err = s.SeedDefaultRates(ctx)
	require.NoError(t, err)
	require.False(t, seeded)

	rows, err := s.ListRates(ctx)
	require.NoError(t, err)
	require.Equal(t, "24K", rows[0].Karat)
	require.Equal(t, "SILVER", rows[len(rows)-1].Karat)

	require.NoError(t, s.UpsertRates(ctx, map[billing.Karat]float64{billing.Karat22: 6100, billing.Karat19: 5300}))
	table, err := s.RateTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 6100.0, table[billing.Karat22])
	require.Equal(t, 5300.0, table[billing.Karat19])

	err = s.UpsertRates(ctx, map[billing.Karat]float64{billing.Karat22: 1, "99K": 5})
	require.ErrorIs(t, err, ErrInvalidRate)
	err = s.UpsertRates(ctx, map[billing.Karat]float64{billing.Karat22: -3})
	require.ErrorIs(t, err, ErrInvalidRate)

	table, err = s.RateTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 6100.0, table[billing.Karat22])
}

func TestCustomersAndPurchases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, record(sampleBill("asha", "9876543210"), "white", 0, march))
	mustCreate(t, s, record(sampleBill("Ravi", "9123456780"), "white", 0, march))
	mustCreate(t, s, record(sampleBill("Ravi", "9123456780"), "white", 0, march.AddDate(0, 1, 0)))

	list, err := s.ListCustomers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "asha", list[0].Name)

	list, err = s.ListCustomers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	found, err := s.SearchCustomers(ctx, "RAV")
	require.NoError(t, err)
	require.Len(t, found, 1)
	found, err = s.SearchCustomers(ctx, " ")
	require.NoError(t, err)
	require.Empty(t, found)

	hist, err := s.CustomerWithPurchases(ctx, "9123456780")
	require.NoError(t, err)
	require.Equal(t, "Ravi", hist.Customer.Name)
	require.Len(t, hist.Purchases, 2)
	require.True(t, hist.Purchases[0].IssuedAt.After(hist.Purchases[1].IssuedAt))

	decoded, err := billing.DecodeSnapshot(hist.Purchases[0].DataParam)
	require.NoError(t, err)
	require.Equal(t, "Ravi", decoded.CustomerName)

	_, err = s.CustomerWithPurchases(ctx, "000")
	require.ErrorIs(t, err, ErrNotFound)

	byName, err := s.PurchasesByName(ctx, "ravi", 40000, 2026)
	require.NoError(t, err)
	require.Len(t, byName, 2)
	require.Equal(t, "Ravi", byName[0].CustomerName)

	byName, err = s.PurchasesByName(ctx, "ravi", 50000, 2026)
	require.NoError(t, err)
	require.Empty(t, byName)

	byName, err = s.PurchasesByName(ctx, "ravi", 0, 2025)
	require.NoError(t, err)
	require.Empty(t, byName)
}

func TestMonthlyReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, record(sampleBill("Asha", "9876543210"), "white", 0, march))
	mustCreate(t, s, record(sampleBill("Asha", "9876543210"), "white", 0, march.AddDate(0, 0, 1)))
	mustCreate(t, s, record(sampleBill("Ravi", "9123456780"), "white", 0, march.AddDate(0, 0, 1)))
	mustCreate(t, s, record(sampleBill("Ravi", "9123456780"), "white", 0, march.AddDate(0, 1, 0)))

	r, err := s.MonthlyReport(ctx, 2026, 3)
	require.NoError(t, err)
	require.Equal(t, "2026-03", r.Month)
	require.Equal(t, 3, r.KPIs.InvoiceCount)
	require.Equal(t, 2, r.KPIs.UniqueCustomers)
	require.Equal(t, 199800.00, r.KPIs.Gross)
	require.Equal(t, 75000.00, r.KPIs.OldExchange)
	require.Equal(t, 2997.00, r.KPIs.TotalCGST)
	require.Equal(t, 130794.00, r.KPIs.Net)
	require.Len(t, r.ByDay, 2)
	require.Equal(t, "2026-03-15", r.ByDay[0].Day)
	require.Equal(t, 87196.00, r.ByDay[1].NetAmount)
	require.Len(t, r.KaratBreakdown, 1)
	require.Equal(t, KaratTotal{Karat: "22K", Amount: 198300, Grams: 30, AvgRate: 6000}, r.KaratBreakdown[0])
	require.Equal(t, 300.00, r.Extras.HallmarkTotal)
	require.Len(t, r.Invoices, 3)

	empty, err := s.MonthlyReport(ctx, 2026, 1)
	require.NoError(t, err)
	require.Zero(t, empty.KPIs.InvoiceCount)
	require.NotNil(t, empty.ByDay)

	_, err = s.MonthlyReport(ctx, 2026, 13)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestCompareMonthsAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, record(sampleBill("Asha", "9876543210"), "white", 0, march))
	mustCreate(t, s, record(sampleBill("Ravi", "9123456780"), "yellow", 4, march.AddDate(0, 1, 0)))
	mustCreate(t, s, record(sampleBill("Ravi", "9123456780"), "yellow", 0, march.AddDate(0, 1, 1)))

	cmp, err := s.CompareMonths(ctx, march.AddDate(0, 1, 2))
	require.NoError(t, err)
	require.Equal(t, 4, cmp.Current.Month)
	require.Equal(t, 2, cmp.Current.Count)
	require.Equal(t, 3, cmp.Previous.Month)
	require.Equal(t, 1, cmp.Previous.Count)
	require.Equal(t, 43598.00, cmp.Previous.Net)
	require.Equal(t, 1998.00, cmp.Previous.Tax)

	jan, err := s.CompareMonths(ctx, time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.Equal(t, 2025, jan.Previous.Year)
	require.Equal(t, 12, jan.Previous.Month)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, st.TotalCustomers)
	require.EqualValues(t, 3, st.TotalInvoices)
	require.Equal(t, 5, st.LastInvoiceNo)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateUser(ctx, "owner", "hash-1", "staff")
	require.NoError(t, err)
	require.Equal(t, "admin", first.Role)

	second, err := s.CreateUser(ctx, " clerk ", "hash-2", "staff")
	require.NoError(t, err)
	require.Equal(t, "staff", second.Role)
	require.Equal(t, "clerk", second.Username)

	_, err = s.CreateUser(ctx, "clerk", "hash-3", "staff")
	require.ErrorIs(t, err, ErrUserExists)

	got, err := s.UserByUsername(ctx, "clerk")
	require.NoError(t, err)
	require.Equal(t, "hash-2", got.PasswordHash)

	_, err = s.UserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}
