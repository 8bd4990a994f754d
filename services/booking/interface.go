package booking

import (
	"context"

	"mentorlink/models"
)

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	ID   string
	Role string
}

// CreateBookingInput is a mentee's request for one or more sessions with a mentor.
type CreateBookingInput struct {
	MentorID string
	MenteeID string
	Sessions []models.TimeRange
	Note     string
}

// BookingService defines the booking operations exposed over HTTP.
type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	AcceptBooking(ctx context.Context, mentorID, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, actor Actor, bookingID, reason string) (*models.Booking, error)
	UpdateSession(ctx context.Context, mentorID, bookingID string, index int, req models.SessionUpdateRequest) (*models.Booking, error)
	CancelSession(ctx context.Context, mentorID, bookingID string, index int, reason string) (*models.Booking, error)
	GetBooking(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error)
	ListMentorBookings(ctx context.Context, mentorID string) ([]models.Booking, error)
	ListMenteeBookings(ctx context.Context, menteeID string) ([]models.Booking, error)
}
