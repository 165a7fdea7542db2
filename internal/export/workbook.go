package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-jewel-billing/internal/billing"

	"github.com/xuri/excelize/v2"
)

const (
	SheetInvoices  = "Invoices"
	SheetItems     = "Items"
	SheetOldItems  = "OldItems"
	SheetMisc      = "Misc"
	SheetCustomers = "Customers"
)

var headers = map[string][]interface{}{
	SheetInvoices:  {"id", "invoice_no", "date_iso", "customer_mobile", "cgst", "sgst", "total", "color"},
	SheetItems:     {"invoice_id", "item_id", "description", "karat", "gross", "stone", "net", "rate", "making_mode", "making_value", "hallmark", "stone_cost", "line_total"},
	SheetOldItems:  {"invoice_id", "old_id", "description", "weight", "wastage", "rate", "total"},
	SheetMisc:      {"invoice_id", "misc_id", "description", "amount"},
	SheetCustomers: {"mobile", "name", "address"},
}

var sheetOrder = []string{SheetInvoices, SheetItems, SheetOldItems, SheetMisc, SheetCustomers}

// Invoice is a committed invoice as written to the backup.
type Invoice struct {
	ID        string
	Number    int
	Color     string
	IssuedAt  time.Time
	Bill      billing.BillInput
	Breakdown billing.InvoiceBreakdown
}

// Workbook appends committed invoices to a spreadsheet on disk. The file is
// a plain copy of the database rows, not a source of truth.
type Workbook struct {
	path string
	mu   sync.Mutex
}

func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

func (w *Workbook) Path() string { return w.path }

// AppendInvoice adds the invoice, its lines and its customer to the workbook,
// creating the file and sheet headers on first use.
func (w *Workbook) AppendInvoice(inv Invoice) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for _, name := range sheetOrder {
		if err := ensureSheet(f, name); err != nil {
			return err
		}
	}
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	bill, bd := inv.Bill, inv.Breakdown
	t := bd.Totals
	if err := appendRow(f, SheetInvoices, []interface{}{
		inv.ID, inv.Number, inv.IssuedAt.Format(time.RFC3339), bill.CustomerMobile, t.CgstAmount, t.SgstAmount, t.GrandTotal, inv.Color,
	}); err != nil {
		return err
	}
	for _, it := range bd.NewItems {
		if err := appendRow(f, SheetItems, []interface{}{
			inv.ID, it.ID, it.Description, string(it.Karat), it.GrossWeightGm, it.StoneWeightGm, it.NetWeightGm,
			it.RatePerGm, string(it.MakingChargeMode), it.MakingChargeValue, it.HallmarkCost, it.StoneCost, it.LineTotal,
		}); err != nil {
			return err
		}
	}
	for _, it := range bd.OldItems {
		if err := appendRow(f, SheetOldItems, []interface{}{
			inv.ID, it.ID, it.Description, it.WeightGm, it.WastageGm, it.RatePerGm, it.LineTotal,
		}); err != nil {
			return err
		}
	}
	for _, it := range bd.MiscItems {
		if err := appendRow(f, SheetMisc, []interface{}{inv.ID, it.ID, it.Description, it.LineTotal}); err != nil {
			return err
		}
	}
	if err := appendRow(f, SheetCustomers, []interface{}{bill.CustomerMobile, bill.CustomerName, bill.CustomerAddress}); err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create backup dir: %w", err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save backup workbook: %w", err)
	}
	return nil
}

func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), nil
	}
	return nil, fmt.Errorf("open backup workbook: %w", err)
}

func ensureSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return appendRow(f, name, headers[name])
	}
	return nil
}

func appendRow(f *excelize.File, sheet string, values []interface{}) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row: %w", sheet, err)
	}
	return nil
}
