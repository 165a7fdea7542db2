package models

import (
	"time"
)

// User - a shop operator allowed to sign in
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"size:20" json:"role"` // 'admin', 'staff'
	CreatedAt    time.Time `json:"created_at"`
}

// Customer - keyed by mobile number, name and address follow the latest invoice
type Customer struct {
	Mobile    string    `gorm:"primaryKey;size:20" json:"mobile"`
	Name      string    `gorm:"size:120;index" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invoice - the header. Snapshot holds the bill JSON exactly as it was priced.
type Invoice struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	CustomerMobile string            `gorm:"size:20;index" json:"customer_mobile"`
	Color          string            `gorm:"size:20;uniqueIndex:idx_invoice_color_no" json:"color"`
	InvoiceNo      int               `gorm:"uniqueIndex:idx_invoice_color_no" json:"invoice_no"`
	IssuedAt       time.Time         `gorm:"index" json:"issued_at"`
	Cgst           float64           `json:"cgst"`
	Sgst           float64           `json:"sgst"`
	Total          float64           `json:"total"`
	Snapshot       string            `gorm:"type:text" json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []InvoiceItem     `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	OldItems       []OldInvoiceItem  `gorm:"foreignKey:InvoiceID" json:"old_items,omitempty"`
	MiscItems      []MiscInvoiceItem `gorm:"foreignKey:InvoiceID" json:"misc_items,omitempty"`
}

// InvoiceItem - a new piece as it was priced on the invoice
type InvoiceItem struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string  `gorm:"size:36;index" json:"invoice_id"`
	ItemRef     string  `gorm:"size:64" json:"item_ref"` // id the bill used for the line
	Description string  `gorm:"size:120" json:"description"`
	Karat       string  `gorm:"size:10;index" json:"karat"`
	Gross       float64 `json:"gross"`
	Stone       float64 `json:"stone"`
	Net         float64 `json:"net"`
	Rate        float64 `json:"rate"`
	MakingMode  string  `gorm:"size:10" json:"making_mode"`
	MakingValue float64 `json:"making_value"`
	Hallmark    float64 `json:"hallmark"`
	StoneCost   float64 `json:"stone_cost"`
	LineTotal   float64 `json:"line_total"`
}

// OldInvoiceItem - exchange material deducted from the invoice
type OldInvoiceItem struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string  `gorm:"size:36;index" json:"invoice_id"`
	ItemRef     string  `gorm:"size:64" json:"item_ref"`
	Description string  `gorm:"size:120" json:"description"`
	Weight      float64 `json:"weight"`
	Wastage     float64 `json:"wastage"`
	Rate        float64 `json:"rate"`
	Total       float64 `json:"total"`
}

// MiscInvoiceItem - flat charge
type MiscInvoiceItem struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string  `gorm:"size:36;index" json:"invoice_id"`
	ItemRef     string  `gorm:"size:64" json:"item_ref"`
	Description string  `gorm:"size:120" json:"description"`
	Amount      float64 `json:"amount"`
}

// Rate - today's per-gram price for a karat
type Rate struct {
	Karat     string    `gorm:"primaryKey;size:10" json:"karat"`
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceCounter - last number handed out for a color series
type InvoiceCounter struct {
	Color  string `gorm:"primaryKey;size:20" json:"color"`
	LastNo int    `json:"last_no"`
}
