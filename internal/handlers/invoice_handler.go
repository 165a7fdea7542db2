package handlers

import (
	"net/http"
	"time"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/database"
	"go-jewel-billing/internal/export"

	"github.com/gin-gonic/gin"
)

type PreviewRequest struct {
	Bill billing.BillInput `json:"bill"`
}

type PreviewResponse struct {
	Bill      billing.BillInput        `json:"bill"`
	Breakdown billing.InvoiceBreakdown `json:"breakdown"`
	Totals    billing.BillTotals       `json:"totals"`
	Warnings  []billing.Warning        `json:"warnings"`
}

type CreateInvoiceRequest struct {
	Bill      billing.BillInput `json:"bill"`
	InvoiceNo int               `json:"invoiceNo"`
	Color     string            `json:"color"`
	IssuedAt  *time.Time        `json:"issuedAt"`
}

type InvoiceResponse struct {
	ID             string                   `json:"id"`
	Number         int                      `json:"number"`
	Color          string                   `json:"color"`
	IssuedAt       time.Time                `json:"issuedAt"`
	CustomerMobile string                   `json:"customerMobile"`
	Bill           billing.BillInput        `json:"bill"`
	Breakdown      billing.InvoiceBreakdown `json:"breakdown"`
	Totals         billing.BillTotals       `json:"totals"`
	DataParam      string                   `json:"dataParam"`
}

// priced fills rates the client left empty from today's table and collects warnings.
func (h *Handler) priced(c *gin.Context, bill billing.BillInput) (billing.BillInput, []billing.Warning, bool) {
	table, err := h.store.RateTable(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "load rates")
		return bill, nil, false
	}
	bill = billing.ApplyRates(bill.Normalized(), table)
	warnings := append(billing.RateWarnings(bill, table), billing.Warnings(bill)...)
	if warnings == nil {
		warnings = []billing.Warning{}
	}
	return bill, warnings, true
}

// --- POST: /api/bills/preview ---
func (h *Handler) PreviewBill(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill"})
		return
	}
	bill, warnings, ok := h.priced(c, req.Bill)
	if !ok {
		return
	}
	bd := billing.Breakdown(bill)
	c.JSON(http.StatusOK, PreviewResponse{Bill: bill, Breakdown: bd, Totals: bd.Totals, Warnings: warnings})
}

// --- POST: /api/invoices ---
// The invoice is committed first; the spreadsheet backup follows and its
// failure never fails the request.
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice"})
		return
	}
	if req.Bill.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bill has no items"})
		return
	}
	bill, warnings, ok := h.priced(c, req.Bill)
	if !ok {
		return
	}

	issuedAt := h.now()
	if req.IssuedAt != nil && !req.IssuedAt.IsZero() {
		issuedAt = *req.IssuedAt
	}
	res, err := h.store.CreateInvoice(c.Request.Context(), database.InvoiceRecord{
		InvoiceNo: req.InvoiceNo,
		Color:     req.Color,
		IssuedAt:  issuedAt,
		Bill:      bill,
		Breakdown: billing.Breakdown(bill),
	})
	if err != nil {
		h.storeError(c, err, "save invoice")
		return
	}

	h.metrics.InvoiceCreated(res.Color, res.Totals.GrandTotal)
	h.log.Info().
		Str("invoice_id", res.ID).
		Int("invoice_no", res.Number).
		Str("color", res.Color).
		Float64("grand_total", res.Totals.GrandTotal).
		Msg("invoice created")

	if h.backup != nil {
		err := h.backup.AppendInvoice(export.Invoice{
			ID:        res.ID,
			Number:    res.Number,
			Color:     res.Color,
			IssuedAt:  res.IssuedAt,
			Bill:      res.Bill,
			Breakdown: billing.Breakdown(res.Bill),
		})
		if err != nil {
			h.log.Warn().Err(err).Str("invoice_id", res.ID).Msg("spreadsheet backup failed")
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       res.ID,
		"number":   res.Number,
		"color":    res.Color,
		"issuedAt": res.IssuedAt,
		"totals":   res.Totals,
		"warnings": warnings,
	})
}

// --- GET: /api/invoices/:id ---
// Totals are recomputed from the stored snapshot on every read.
func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.store.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err, "load invoice")
		return
	}
	data, err := billing.EncodeSnapshot(inv.Bill)
	if err != nil {
		h.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("snapshot encode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode invoice"})
		return
	}
	bd := billing.Breakdown(inv.Bill)
	c.JSON(http.StatusOK, InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		Color:          inv.Color,
		IssuedAt:       inv.IssuedAt,
		CustomerMobile: inv.CustomerMobile,
		Bill:           inv.Bill,
		Breakdown:      bd,
		Totals:         bd.Totals,
		DataParam:      data,
	})
}

// --- GET: /api/invoices/decode?data= ---
func (h *Handler) DecodeInvoice(c *gin.Context) {
	bill, err := billing.DecodeSnapshot(c.Query("data"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice data"})
		return
	}
	bd := billing.Breakdown(bill)
	c.JSON(http.StatusOK, gin.H{"bill": bill, "breakdown": bd, "totals": bd.Totals})
}
