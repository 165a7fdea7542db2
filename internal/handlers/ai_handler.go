package handlers

import (
	"errors"
	"net/http"

	"go-jewel-billing/internal/assistant"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// --- POST: /api/assistant ---
func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
		return
	}

	reply, err := h.assistant.Respond(c.Request.Context(), req.Message)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("assistant failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assistant failed to answer"})
		return
	}

	h.metrics.AssistantHandled(string(reply.Intent))
	c.JSON(http.StatusOK, reply)
}
