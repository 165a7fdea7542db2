package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-jewel-billing/internal/assistant"
	"go-jewel-billing/internal/auth"
	"go-jewel-billing/internal/database"
	"go-jewel-billing/internal/export"
	"go-jewel-billing/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Assistant answers free-text shop questions.
type Assistant interface {
	Respond(ctx context.Context, text string) (*assistant.Reply, error)
}

// Backup receives every committed invoice.
type Backup interface {
	AppendInvoice(inv export.Invoice) error
}

// Deps are the collaborators shared by all handlers. Assistant, Backup and
// Metrics are optional.
type Deps struct {
	Store     *database.Store
	Tokens    *auth.Issuer
	Assistant Assistant
	Backup    Backup
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	Defaults  assistant.Defaults
}

type Handler struct {
	store     *database.Store
	tokens    *auth.Issuer
	assistant Assistant
	backup    Backup
	metrics   *metrics.Metrics
	log       zerolog.Logger
	defaults  assistant.Defaults
	now       func() time.Time
}

func New(d Deps) *Handler {
	return &Handler{
		store:     d.Store,
		tokens:    d.Tokens,
		assistant: d.Assistant,
		backup:    d.Backup,
		metrics:   d.Metrics,
		log:       d.Log,
		defaults:  d.Defaults,
		now:       time.Now,
	}
}

// storeError maps store sentinels to the status codes the frontend expects and
// logs anything unexpected.
func (h *Handler) storeError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, database.ErrDuplicateInvoiceNo):
		c.JSON(http.StatusConflict, gin.H{"error": "Invoice number already used for this color"})
	case errors.Is(err, database.ErrInvalidInvoice),
		errors.Is(err, database.ErrInvalidRate),
		errors.Is(err, database.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("action", action).Msg("store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}
