package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/reports/monthly?year=&month= ---
// Missing parameters default to the current month.
func (h *Handler) GetMonthlyReport(c *gin.Context) {
	now := h.now()
	year, month := now.Year(), int(now.Month())
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}
		month = m
	}

	report, err := h.store.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		h.storeError(c, err, "build report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- GET: /api/reports/compare ---
func (h *Handler) CompareMonths(c *gin.Context) {
	cmp, err := h.store.CompareMonths(c.Request.Context(), h.now())
	if err != nil {
		h.storeError(c, err, "compare months")
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// --- GET: /api/stats ---
func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "fetch stats")
		return
	}
	c.JSON(http.StatusOK, st)
}
