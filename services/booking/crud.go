package booking

import (
	"context"
	"fmt"

	"mentorlink/models"
)

// GetBooking returns the booking when the caller is its mentor or its mentee.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(b, actor) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *DefaultBookingService) ListMentorBookings(ctx context.Context, mentorID string) ([]models.Booking, error) {
	bookings, err := s.repo.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for mentor %s: %w", mentorID, err)
	}
	return nonNil(bookings), nil
}

func (s *DefaultBookingService) ListMenteeBookings(ctx context.Context, menteeID string) ([]models.Booking, error) {
	bookings, err := s.repo.ListByMentee(ctx, menteeID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for mentee %s: %w", menteeID, err)
	}
	return nonNil(bookings), nil
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil(bookings []models.Booking) []models.Booking {
	if bookings == nil {
		return []models.Booking{}
	}
	return bookings
}
