package handlers

import (
	"fmt"

	"go-jewel-billing/internal/auth"
	"go-jewel-billing/internal/middleware"

	"github.com/gin-gonic/gin"
)

type RouteOptions struct {
	AllowRegistration bool
	AllowedOrigins    []string
	AssistantRate     string
}

// Routes mounts the login endpoints and the protected /api group on r.
func (h *Handler) Routes(r gin.IRouter, opts RouteOptions) error {
	assistantLimit, err := middleware.RateLimit(opts.AssistantRate)
	if err != nil {
		return fmt.Errorf("assistant rate limit: %w", err)
	}
	sameOrigin := middleware.SameOrigin(opts.AllowedOrigins)

	r.POST("/login", sameOrigin, h.Login)
	if opts.AllowRegistration {
		r.POST("/register", sameOrigin, h.Register)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.tokens), sameOrigin)
	{
		// STAFF & ADMIN
		api.POST("/bills/preview", h.PreviewBill)
		api.POST("/invoices", h.CreateInvoice)
		api.GET("/invoices/decode", h.DecodeInvoice)
		api.GET("/invoices/:id", h.GetInvoice)
		api.GET("/rates", h.GetRates)
		api.GET("/customers", h.ListCustomers)
		api.GET("/customers/search", h.SearchCustomers)
		api.GET("/customers/:mobile", h.GetCustomer)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(auth.RoleAdmin))
		{
			admin.PUT("/rates", h.UpdateRates)
			admin.POST("/rates/derive", h.DeriveRates)
			admin.GET("/reports/monthly", h.GetMonthlyReport)
			admin.GET("/reports/compare", h.CompareMonths)
			admin.GET("/stats", h.GetStats)
			admin.POST("/assistant", assistantLimit, h.Ask)
		}
	}
	return nil
}
