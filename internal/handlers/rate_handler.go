package handlers

import (
	"net/http"

	"go-jewel-billing/internal/billing"
	"go-jewel-billing/internal/models"

	"github.com/gin-gonic/gin"
)

type RatesResponse struct {
	Rates   []models.Rate `json:"rates"`
	Summary string        `json:"summary"`
	CgstPct float64       `json:"defaultCgstPct"`
	SgstPct float64       `json:"defaultSgstPct"`
}

type UpdateRatesRequest struct {
	Rates map[string]float64 `json:"rates" binding:"required"`
}

type DeriveRatesRequest struct {
	Pure24K   float64            `json:"pure24k" binding:"required"`
	Silver    float64            `json:"silver"`
	Overrides map[string]float64 `json:"overrides"`
	Save      bool               `json:"save"`
}

// --- GET: /api/rates ---
func (h *Handler) GetRates(c *gin.Context) {
	rows, err := h.store.ListRates(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "fetch rates")
		return
	}
	table := make(billing.RateTable, len(rows))
	for _, r := range rows {
		table[billing.Karat(r.Karat)] = r.Rate
	}
	c.JSON(http.StatusOK, RatesResponse{
		Rates:   rows,
		Summary: table.Summary(),
		CgstPct: h.defaults.CgstPct,
		SgstPct: h.defaults.SgstPct,
	})
}

// --- PUT: /api/rates ---
// All rates are written or none are.
func (h *Handler) UpdateRates(c *gin.Context) {
	var req UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	rates, bad := parseKaratMap(req.Rates)
	if bad != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown karat " + bad})
		return
	}
	if err := h.store.UpsertRates(c.Request.Context(), rates); err != nil {
		h.storeError(c, err, "update rates")
		return
	}
	h.log.Info().Int("count", len(rates)).Msg("rates updated")
	h.GetRates(c)
}

// --- POST: /api/rates/derive ---
// Derives every gold grade from the pure rate; with save it also stores them.
func (h *Handler) DeriveRates(c *gin.Context) {
	var req DeriveRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	overrides, bad := parseKaratMap(req.Overrides)
	if bad != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown karat " + bad})
		return
	}
	table := billing.DeriveRates(req.Pure24K, req.Silver, overrides)

	if req.Save {
		if err := h.store.UpsertRates(c.Request.Context(), table); err != nil {
			h.storeError(c, err, "save rates")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"rates": table, "summary": table.Summary(), "saved": req.Save})
}

// parseKaratMap converts user keys like "22k" to grades. It returns the first
// key it cannot read.
func parseKaratMap(in map[string]float64) (map[billing.Karat]float64, string) {
	out := make(map[billing.Karat]float64, len(in))
	for raw, v := range in {
		k, ok := billing.ParseKarat(raw)
		if !ok {
			return nil, raw
		}
		out[k] = v
	}
	return out, ""
}
