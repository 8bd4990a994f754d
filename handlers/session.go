package handlers

import (
	"net/http"
	"strconv"

	"mentorlink/models"

	"github.com/gin-gonic/gin"
)

func sessionIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session index must be a non-negative integer"})
		return 0, false
	}
	return index, true
}

// UpdateSessionHandler handles PATCH /api/bookings/:id/sessions/:index.
func (h *BookingHandler) UpdateSessionHandler(c *gin.Context) {
	index, ok := sessionIndex(c)
	if !ok {
		return
	}
	var req models.SessionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	b, err := h.Service.UpdateSession(c.Request.Context(), actorFrom(c).ID, c.Param("id"), index, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelSessionHandler handles POST /api/bookings/:id/sessions/:index/cancel.
func (h *BookingHandler) CancelSessionHandler(c *gin.Context) {
	index, ok := sessionIndex(c)
	if !ok {
		return
	}
	var req models.CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a cancellation reason is required", "details": err.Error()})
		return
	}
	b, err := h.Service.CancelSession(c.Request.Context(), actorFrom(c).ID, c.Param("id"), index, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
