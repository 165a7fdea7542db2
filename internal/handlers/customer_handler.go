package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/customers?limit= ---
func (h *Handler) ListCustomers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.store.ListCustomers(c.Request.Context(), limit)
	if err != nil {
		h.storeError(c, err, "fetch customers")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// --- GET: /api/customers/search?name= ---
func (h *Handler) SearchCustomers(c *gin.Context) {
	rows, err := h.store.SearchCustomers(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.storeError(c, err, "search customers")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// --- GET: /api/customers/:mobile ---
// Returns the customer with every purchase, newest first.
func (h *Handler) GetCustomer(c *gin.Context) {
	hist, err := h.store.CustomerWithPurchases(c.Request.Context(), c.Param("mobile"))
	if err != nil {
		h.storeError(c, err, "fetch customer")
		return
	}
	c.JSON(http.StatusOK, hist)
}
