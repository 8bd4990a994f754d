package notification

import (
	"context"

	"mentorlink/models"
)

// Event types published on the booking topic.
const (
	EventBookingCreated      = "booking.created"
	EventBookingConfirmed    = "booking.confirmed"
	EventBookingCancelled    = "booking.cancelled"
	EventBookingCompleted    = "booking.completed"
	EventSessionUpdated      = "booking.session_updated"
	EventSessionCancelled    = "booking.session_cancelled"
	EventPaymentPaid         = "payment.paid"
	EventPaymentFailed       = "payment.failed"
	EventPaymentUnmatched    = "payment.unmatched"
	EventCompensationFailed  = "payment.compensation_failed"
	EventCompensationApplied = "payment.compensation_applied"
)

// Publisher fans booking and payment lifecycle changes out to downstream consumers
// (mentor/mentee notifications, analytics). Publishing never affects booking state.
type Publisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
	Close() error
}

// NewBookingEvent fills the event from the booking's current state.
func NewBookingEvent(eventType string, b *models.Booking, note string) models.BookingEvent {
	return models.BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		MentorID:      b.MentorID,
		MenteeID:      b.MenteeID,
		OrderCode:     b.OrderCode,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Price:         b.Price,
		Note:          note,
		OccurredAt:    b.UpdatedAt,
	}
}
