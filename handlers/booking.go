package handlers

import (
	"net/http"

	"mentorlink/middleware"
	"mentorlink/models"
	"mentorlink/services/booking"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes booking creation, lookup and lifecycle transitions.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(service booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{
		ID:   c.GetString(middleware.ContextUserID),
		Role: c.GetString(middleware.ContextRole),
	}
}

// CreateBookingHandler handles POST /api/bookings. The mentee is always the caller; a body
// mentee_id naming someone else is refused.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	actor := actorFrom(c)
	if req.MenteeID != "" && req.MenteeID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot book on behalf of another mentee"})
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		MentorID: req.MentorID,
		MenteeID: actor.ID,
		Sessions: req.Sessions,
		Note:     req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListMentorBookingsHandler handles GET /api/bookings/mentor.
func (h *BookingHandler) ListMentorBookingsHandler(c *gin.Context) {
	bookings, err := h.Service.ListMentorBookings(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListMenteeBookingsHandler handles GET /api/bookings/mentee.
func (h *BookingHandler) ListMenteeBookingsHandler(c *gin.Context) {
	bookings, err := h.Service.ListMenteeBookings(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// AcceptBookingHandler handles POST /api/bookings/:id/accept.
func (h *BookingHandler) AcceptBookingHandler(c *gin.Context) {
	b, err := h.Service.AcceptBooking(c.Request.Context(), actorFrom(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler handles POST /api/bookings/:id/cancel. The body is optional for mentees.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var req models.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
	}
	b, err := h.Service.CancelBooking(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
