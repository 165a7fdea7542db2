package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/models"
)

// MonthlyKPIs are the headline figures for a month. Gross is the sum of
// line totals plus misc, before tax and exchange.
type MonthlyKPIs struct {
	InvoiceCount    int     `json:"invoiceCount"`
	UniqueCustomers int     `json:"uniqueCustomers"`
	Gross           float64 `json:"gross"`
	OldExchange     float64 `json:"oldExchange"`
	TotalCGST       float64 `json:"totalCGST"`
	TotalSGST       float64 `json:"totalSGST"`
	Net             float64 `json:"net"`
}

type DayTotal struct {
	Day       string  `json:"day"`
	NetAmount float64 `json:"netAmount"`
}

type KaratTotal struct {
	Karat   string  `json:"karat"`
	Amount  float64 `json:"amount"`
	Grams   float64 `json:"grams"`
	AvgRate float64 `json:"avgRate"`
}

type ReportInvoice struct {
	ID        string    `json:"id"`
	Mobile    string    `json:"mobile"`
	InvoiceNo int       `json:"invoiceNo"`
	Color     string    `json:"color"`
	IssuedAt  time.Time `json:"issuedAt"`
	Total     float64   `json:"total"`
	Cgst      float64   `json:"cgst"`
	Sgst      float64   `json:"sgst"`
}

type ReportExtras struct {
	HallmarkTotal float64 `json:"hallmarkTotal"`
	StoneTotal    float64 `json:"stoneTotal"`
}

// MonthlyReport is the full month view used by the dashboard.
type MonthlyReport struct {
	Month          string          `json:"month"`
	KPIs           MonthlyKPIs     `json:"kpis"`
	ByDay          []DayTotal      `json:"byDay"`
	KaratBreakdown []KaratTotal    `json:"karatBreakdown"`
	Invoices       []ReportInvoice `json:"invoices"`
	Extras         ReportExtras    `json:"extras"`
}

// MonthSummary is the compact form used when comparing months.
type MonthSummary struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Count       int     `json:"count"`
	Gross       float64 `json:"gross"`
	OldExchange float64 `json:"oldExchange"`
	Tax         float64 `json:"tax"`
	Net         float64 `json:"net"`
}

type MonthComparison struct {
	Current  MonthSummary `json:"current"`
	Previous MonthSummary `json:"previous"`
}

// Stats are shop-wide counters.
type Stats struct {
	TotalCustomers int64 `json:"totalCustomers"`
	TotalInvoices  int64 `json:"totalInvoices"`
	LastInvoiceNo  int   `json:"lastInvoiceNo"`
}

// MonthlyReport aggregates every invoice issued in the given calendar month.
func (s *Store) MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	invoices, err := s.invoicesInMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{
		Month:          fmt.Sprintf("%04d-%02d", year, month),
		ByDay:          []DayTotal{},
		KaratBreakdown: []KaratTotal{},
		Invoices:       make([]ReportInvoice, 0, len(invoices)),
	}
	report.KPIs = kpisFor(invoices)

	customers := make(map[string]struct{})
	days := make(map[string]float64)
	type karatAcc struct {
		amount, grams, rateSum float64
		n                      int
	}
	karats := make(map[string]*karatAcc)

	for _, inv := range invoices {
		customers[inv.CustomerMobile] = struct{}{}
		issued := inv.IssuedAt.In(s.loc)
		days[issued.Format("2006-01-02")] += inv.Total

		for _, it := range inv.Items {
			acc, ok := karats[it.Karat]
			if !ok {
				acc = &karatAcc{}
				karats[it.Karat] = acc
			}
			acc.amount += it.LineTotal
			acc.grams += it.Net
			acc.rateSum += it.Rate
			acc.n++
			report.Extras.HallmarkTotal += it.Hallmark
			report.Extras.StoneTotal += it.StoneCost
		}

		report.Invoices = append(report.Invoices, ReportInvoice{
			ID:        inv.ID,
			Mobile:    inv.CustomerMobile,
			InvoiceNo: inv.InvoiceNo,
			Color:     inv.Color,
			IssuedAt:  issued,
			Total:     inv.Total,
			Cgst:      inv.Cgst,
			Sgst:      inv.Sgst,
		})
	}
	report.KPIs.UniqueCustomers = len(customers)
	report.Extras.HallmarkTotal = billing.Round2(report.Extras.HallmarkTotal)
	report.Extras.StoneTotal = billing.Round2(report.Extras.StoneTotal)

	for day, total := range days {
		report.ByDay = append(report.ByDay, DayTotal{Day: day, NetAmount: billing.Round2(total)})
	}
	sort.Slice(report.ByDay, func(i, j int) bool { return report.ByDay[i].Day < report.ByDay[j].Day })

	for k, acc := range karats {
		report.KaratBreakdown = append(report.KaratBreakdown, KaratTotal{
			Karat:   k,
			Amount:  billing.Round2(acc.amount),
			Grams:   billing.Round2(acc.grams),
			AvgRate: billing.Round2(acc.rateSum / float64(acc.n)),
		})
	}
	sort.Slice(report.KaratBreakdown, func(i, j int) bool {
		oi, oj := karatOrder(report.KaratBreakdown[i].Karat), karatOrder(report.KaratBreakdown[j].Karat)
		if oi != oj {
			return oi < oj
		}
		return report.KaratBreakdown[i].Karat < report.KaratBreakdown[j].Karat
	})
	return report, nil
}

// MonthSummary returns the compact KPIs of one month.
func (s *Store) MonthSummary(ctx context.Context, year, month int) (*MonthSummary, error) {
	invoices, err := s.invoicesInMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	k := kpisFor(invoices)
	return &MonthSummary{
		Year:        year,
		Month:       month,
		Count:       k.InvoiceCount,
		Gross:       k.Gross,
		OldExchange: k.OldExchange,
		Tax:         billing.Round2(k.TotalCGST + k.TotalSGST),
		Net:         k.Net,
	}, nil
}

// CompareMonths summarises the month containing now and the one before it.
func (s *Store) CompareMonths(ctx context.Context, now time.Time) (*MonthComparison, error) {
	now = now.In(s.loc)
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc).AddDate(0, -1, 0)

	cur, err := s.MonthSummary(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}
	before, err := s.MonthSummary(ctx, prev.Year(), int(prev.Month()))
	if err != nil {
		return nil, err
	}
	return &MonthComparison{Current: *cur, Previous: *before}, nil
}

// Stats counts customers and invoices and reports the highest invoice number in any series.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Customer{}).Count(&st.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := db.Model(&models.Invoice{}).Count(&st.TotalInvoices).Error; err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}
	// COALESCE gives 0 instead of NULL on an empty table
	if err := db.Model(&models.Invoice{}).
		Select("COALESCE(MAX(invoice_no), 0)").
		Scan(&st.LastInvoiceNo).Error; err != nil {
		return nil, fmt.Errorf("last invoice number: %w", err)
	}
	return &st, nil
}

func (s *Store) invoicesInMonth(ctx context.Context, year, month int) ([]models.Invoice, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidPeriod, year, month)
	}
	from, to := monthRange(year, month, s.loc)

	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("OldItems").
		Preload("MiscItems").
		Where("issued_at >= ? AND issued_at < ?", from, to).
		Order("issued_at").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("load invoices for %04d-%02d: %w", year, month, err)
	}
	return invoices, nil
}

func kpisFor(invoices []models.Invoice) MonthlyKPIs {
	var k MonthlyKPIs
	k.InvoiceCount = len(invoices)
	for _, inv := range invoices {
		for _, it := range inv.Items {
			k.Gross += it.LineTotal
		}
		for _, it := range inv.MiscItems {
			k.Gross += it.Amount
		}
		for _, it := range inv.OldItems {
			k.OldExchange += it.Total
		}
		k.TotalCGST += inv.Cgst
		k.TotalSGST += inv.Sgst
	}
	k.Gross = billing.Round2(k.Gross)
	k.OldExchange = billing.Round2(k.OldExchange)
	k.TotalCGST = billing.Round2(k.TotalCGST)
	k.TotalSGST = billing.Round2(k.TotalSGST)
	k.Net = billing.Round2(k.Gross + k.TotalCGST + k.TotalSGST - k.OldExchange)
	return k
}
