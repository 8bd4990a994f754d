package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers passed to routes.
type HandlerBundle struct {
	// Booking endpoints
	CreateBooking      gin.HandlerFunc
	GetBooking         gin.HandlerFunc
	ListMentorBookings gin.HandlerFunc
	ListMenteeBookings gin.HandlerFunc
	AcceptBooking      gin.HandlerFunc
	CancelBooking      gin.HandlerFunc

	// Session endpoints
	UpdateSession gin.HandlerFunc
	CancelSession gin.HandlerFunc

	// Payment endpoints
	PaymentWebhook gin.HandlerFunc
}

// NewHandlerBundle wires the bundle from the booking and webhook handlers.
func NewHandlerBundle(bh *BookingHandler, wh *WebhookHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateBooking:      bh.CreateBookingHandler,
		GetBooking:         bh.GetBookingHandler,
		ListMentorBookings: bh.ListMentorBookingsHandler,
		ListMenteeBookings: bh.ListMenteeBookingsHandler,
		AcceptBooking:      bh.AcceptBookingHandler,
		CancelBooking:      bh.CancelBookingHandler,
		UpdateSession:      bh.UpdateSessionHandler,
		CancelSession:      bh.CancelSessionHandler,
		PaymentWebhook:     wh.PaymentWebhookHandler,
	}
}
