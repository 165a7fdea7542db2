package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInvoice     = errors.New("invalid invoice")
	ErrDuplicateInvoiceNo = errors.New("invoice number already used for this color")
	ErrInvalidRate        = errors.New("invalid rate")
	ErrInvalidPeriod      = errors.New("invalid report period")
)

// DefaultColor is the numbering series used when an invoice names none.
const DefaultColor = "white"

// Store is the persistence layer for invoices, rates and customers.
type Store struct {
	db  *gorm.DB
	loc *time.Location
}

// NewStore wraps an open connection. Reporting periods are calendar months in the local zone.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, loc: time.Local}
}

// DB exposes the underlying connection for callers that need raw access (login, registration).
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func monthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}
