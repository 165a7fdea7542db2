package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRecord is a finalized bill ready to be stored. Breakdown must be
// billing.Breakdown of Bill; rows are written from it as-is.
type InvoiceRecord struct {
	ID        string
	InvoiceNo int // 0 assigns the next number in the color series
	Color     string
	IssuedAt  time.Time
	Bill      billing.BillInput
	Breakdown billing.InvoiceBreakdown
}

// InvoiceResult is what a successful submission hands back.
type InvoiceResult struct {
	ID       string             `json:"id"`
	Number   int                `json:"number"`
	Color    string             `json:"color"`
	IssuedAt time.Time          `json:"issuedAt"`
	Totals   billing.BillTotals `json:"totals"`
	Bill     billing.BillInput  `json:"-"`
}

// StoredInvoice is an invoice header with its decoded snapshot.
type StoredInvoice struct {
	ID             string
	Number         int
	Color          string
	IssuedAt       time.Time
	CustomerMobile string
	Total          float64
	Bill           billing.BillInput
}

// CreateInvoice stores the customer, the numbered header and every line in
// one transaction. Nothing is written when any step fails.
func (s *Store) CreateInvoice(ctx context.Context, rec InvoiceRecord) (*InvoiceResult, error) {
	bill := rec.Bill.Normalized()
	if bill.CustomerMobile == "" {
		return nil, fmt.Errorf("%w: customer mobile required", ErrInvalidInvoice)
	}
	if rec.InvoiceNo < 0 {
		return nil, fmt.Errorf("%w: negative invoice number", ErrInvalidInvoice)
	}
	bd := rec.Breakdown
	if len(bd.NewItems) != len(bill.NewItems) || len(bd.OldItems) != len(bill.OldItems) || len(bd.MiscItems) != len(bill.MiscItems) {
		return nil, fmt.Errorf("%w: breakdown does not match bill", ErrInvalidInvoice)
	}

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	color := strings.ToLower(strings.TrimSpace(rec.Color))
	if color == "" {
		color = DefaultColor
	}
	issuedAt := rec.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	for i := range bill.NewItems {
		if bill.NewItems[i].ID == "" {
			bill.NewItems[i].ID = uuid.NewString()
		}
	}
	for i := range bill.OldItems {
		if bill.OldItems[i].ID == "" {
			bill.OldItems[i].ID = uuid.NewString()
		}
	}
	for i := range bill.MiscItems {
		if bill.MiscItems[i].ID == "" {
			bill.MiscItems[i].ID = uuid.NewString()
		}
	}
	snapshot, err := billing.MarshalSnapshot(bill)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	inv := models.Invoice{
		ID:             id,
		CustomerMobile: bill.CustomerMobile,
		Color:          color,
		IssuedAt:       issuedAt.UTC(),
		Cgst:           bd.Totals.CgstAmount,
		Sgst:           bd.Totals.SgstAmount,
		Total:          bd.Totals.GrandTotal,
		Snapshot:       string(snapshot),
	}
	for i, line := range bd.NewItems {
		inv.Items = append(inv.Items, models.InvoiceItem{
			ID:          uuid.NewString(),
			ItemRef:     bill.NewItems[i].ID,
			Description: bill.NewItems[i].Description,
			Karat:       string(line.Karat),
			Gross:       line.GrossWeightGm,
			Stone:       line.StoneWeightGm,
			Net:         line.NetWeightGm,
			Rate:        line.RatePerGm,
			MakingMode:  string(line.MakingChargeMode),
			MakingValue: line.MakingChargeValue,
			Hallmark:    line.HallmarkCost,
			StoneCost:   line.StoneCost,
			LineTotal:   line.LineTotal,
		})
	}
	for i, line := range bd.OldItems {
		inv.OldItems = append(inv.OldItems, models.OldInvoiceItem{
			ID:          uuid.NewString(),
			ItemRef:     bill.OldItems[i].ID,
			Description: bill.OldItems[i].Description,
			Weight:      line.WeightGm,
			Wastage:     line.WastageGm,
			Rate:        line.RatePerGm,
			Total:       line.LineTotal,
		})
	}
	for i, line := range bd.MiscItems {
		inv.MiscItems = append(inv.MiscItems, models.MiscInvoiceItem{
			ID:          uuid.NewString(),
			ItemRef:     bill.MiscItems[i].ID,
			Description: bill.MiscItems[i].Description,
			Amount:      line.LineTotal,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer := models.Customer{
			Mobile:  bill.CustomerMobile,
			Name:    bill.CustomerName,
			Address: bill.CustomerAddress,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mobile"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "address", "updated_at"}),
		}).Create(&customer).Error; err != nil {
			return fmt.Errorf("upsert customer: %w", err)
		}

		number, err := nextInvoiceNo(tx, color, rec.InvoiceNo)
		if err != nil {
			return err
		}
		inv.InvoiceNo = number

		// GORM inserts the item slices along with the header.
		if err := tx.Create(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s #%d", ErrDuplicateInvoiceNo, color, number)
			}
			return fmt.Errorf("insert invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &InvoiceResult{
		ID:       inv.ID,
		Number:   inv.InvoiceNo,
		Color:    color,
		IssuedAt: issuedAt,
		Totals:   bd.Totals,
		Bill:     bill,
	}, nil
}

// nextInvoiceNo locks the color's counter row, picks the number and moves
// the counter forward. An explicit number is honoured and never lowers it.
func nextInvoiceNo(tx *gorm.DB, color string, explicit int) (int, error) {
	var counter models.InvoiceCounter
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(models.InvoiceCounter{Color: color}).
		FirstOrCreate(&counter).Error; err != nil {
		return 0, fmt.Errorf("lock invoice counter: %w", err)
	}

	if counter.LastNo == 0 {
		// Series that predate the counter table start after their highest number.
		var maxNo int
		if err := tx.Model(&models.Invoice{}).
			Where("color = ?", color).
			Select("COALESCE(MAX(invoice_no), 0)").
			Scan(&maxNo).Error; err != nil {
			return 0, fmt.Errorf("read max invoice number: %w", err)
		}
		counter.LastNo = maxNo
	}

	number := counter.LastNo + 1
	if explicit > 0 {
		number = explicit
	}
	if number > counter.LastNo {
		counter.LastNo = number
	}
	if err := tx.Model(&models.InvoiceCounter{}).
		Where("color = ?", color).
		Update("last_no", counter.LastNo).Error; err != nil {
		return 0, fmt.Errorf("advance invoice counter: %w", err)
	}
	return number, nil
}

// GetInvoice loads a stored invoice and decodes its snapshot.
func (s *Store) GetInvoice(ctx context.Context, id string) (*StoredInvoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, notFound(err)
	}
	bill, err := billing.UnmarshalSnapshot([]byte(inv.Snapshot))
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", id, err)
	}
	return &StoredInvoice{
		ID:             inv.ID,
		Number:         inv.InvoiceNo,
		Color:          inv.Color,
		IssuedAt:       inv.IssuedAt.In(s.loc),
		CustomerMobile: inv.CustomerMobile,
		Total:          inv.Total,
		Bill:           bill,
	}, nil
}
