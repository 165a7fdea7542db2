package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/models"

	"gorm.io/gorm"
)

const (
	defaultCustomerLimit = 200
	maxCustomerLimit     = 500
	searchLimit          = 25
)

// Purchase is one past invoice as shown in a customer's history.
type Purchase struct {
	ID           string    `json:"id"`
	InvoiceNo    int       `json:"invoiceNo"`
	Color        string    `json:"color"`
	IssuedAt     time.Time `json:"issuedAt"`
	TotalAmount  float64   `json:"totalAmount"`
	CustomerName string    `json:"customerName,omitempty"`
	Mobile       string    `json:"mobile"`
	// DataParam is the snapshot in the shareable base64 form.
	DataParam string `json:"dataParam,omitempty"`
}

// CustomerHistory is a customer and their purchases, newest first.
type CustomerHistory struct {
	Customer  *models.Customer `json:"customer"`
	Purchases []Purchase       `json:"purchases"`
}

// ListCustomers returns customers by name; limit is clamped to 1..500 and defaults to 200.
func (s *Store) ListCustomers(ctx context.Context, limit int) ([]models.Customer, error) {
	if limit <= 0 {
		limit = defaultCustomerLimit
	}
	if limit > maxCustomerLimit {
		limit = maxCustomerLimit
	}
	var rows []models.Customer
	if err := s.db.WithContext(ctx).Order("LOWER(name)").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return rows, nil
}

// SearchCustomers matches a name fragment, case-insensitively, up to 25 rows.
func (s *Store) SearchCustomers(ctx context.Context, name string) ([]models.Customer, error) {
	name = strings.TrimSpace(name)
	rows := []models.Customer{}
	if name == "" {
		return rows, nil
	}
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%").
		Order("name").
		Limit(searchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return rows, nil
}

// CustomerWithPurchases returns ErrNotFound only when the mobile has neither a customer row nor invoices.
func (s *Store) CustomerWithPurchases(ctx context.Context, mobile string) (*CustomerHistory, error) {
	mobile = strings.TrimSpace(mobile)
	out := &CustomerHistory{Purchases: []Purchase{}}

	var c models.Customer
	err := s.db.WithContext(ctx).Where("mobile = ?", mobile).First(&c).Error
	switch {
	case err == nil:
		out.Customer = &c
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load customer: %w", err)
	}

	purchases, err := s.PurchasesByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if out.Customer == nil && len(purchases) == 0 {
		return nil, ErrNotFound
	}
	out.Purchases = purchases
	return out, nil
}

// PurchasesByMobile lists every invoice billed to mobile, newest first.
func (s *Store) PurchasesByMobile(ctx context.Context, mobile string) ([]Purchase, error) {
	var rows []models.Invoice
	err := s.db.WithContext(ctx).
		Where("customer_mobile = ?", strings.TrimSpace(mobile)).
		Order("issued_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("purchases by mobile: %w", err)
	}
	return s.toPurchases(rows, nil), nil
}

// PurchasesByName lists invoices in year whose customer name contains name
// and whose total is strictly above minTotal, newest first.
func (s *Store) PurchasesByName(ctx context.Context, name string, minTotal float64, year int) ([]Purchase, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return []Purchase{}, nil
	}
	from, to := time.Date(year, 1, 1, 0, 0, 0, 0, s.loc).UTC(), time.Date(year+1, 1, 1, 0, 0, 0, 0, s.loc).UTC()

	var customers []models.Customer
	if err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+name+"%").
		Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("purchases by name: %w", err)
	}
	if len(customers) == 0 {
		return []Purchase{}, nil
	}
	names := make(map[string]string, len(customers))
	mobiles := make([]string, 0, len(customers))
	for _, c := range customers {
		names[c.Mobile] = c.Name
		mobiles = append(mobiles, c.Mobile)
	}

	var rows []models.Invoice
	err := s.db.WithContext(ctx).
		Where("customer_mobile IN ?", mobiles).
		Where("total > ?", minTotal).
		Where("issued_at >= ? AND issued_at < ?", from, to).
		Order("issued_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("purchases by name: %w", err)
	}
	return s.toPurchases(rows, names), nil
}

func (s *Store) toPurchases(rows []models.Invoice, names map[string]string) []Purchase {
	out := make([]Purchase, 0, len(rows))
	for _, r := range rows {
		p := Purchase{
			ID:           r.ID,
			InvoiceNo:    r.InvoiceNo,
			Color:        r.Color,
			IssuedAt:     r.IssuedAt.In(s.loc),
			TotalAmount:  r.Total,
			CustomerName: names[r.CustomerMobile],
			Mobile:       r.CustomerMobile,
		}
		if r.Snapshot != "" {
			p.DataParam = billing.EncodeSnapshotJSON([]byte(r.Snapshot))
		}
		out = append(out, p)
	}
	return out
}
