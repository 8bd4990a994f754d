package booking

import (
	"context"

	"mentorlink/models"
	"mentorlink/services/notification"
	"mentorlink/utils"

	"go.uber.org/zap"
)

// AcceptBooking is the mentor's explicit PENDING to CONFIRMED trigger. Accepting twice is harmless.
func (s *DefaultBookingService) AcceptBooking(ctx context.Context, mentorID, bookingID string) (*models.Booking, error) {
	b, changed, err := s.mutate(ctx, bookingID, func(b *models.Booking) (bool, error) {
		if b.MentorID != mentorID {
			return false, ErrForbidden
		}
		return Confirm(b)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("Booking accepted", zap.String("bookingID", b.ID), zap.String("mentorID", mentorID))
		s.publish(ctx, notification.EventBookingConfirmed, b, "accepted by mentor")
	}
	return b, nil
}

// CancelBooking cancels on behalf of the mentee or the mentor, frees the calendar and, if the
// booking was already paid, refunds. A failed refund is recorded but the cancellation stands.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, actor Actor, bookingID, reason string) (*models.Booking, error) {
	b, _, err := s.mutate(ctx, bookingID, func(b *models.Booking) (bool, error) {
		if !isParticipant(b, actor) {
			return false, ErrForbidden
		}
		if err := Cancel(b, actor, reason); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.releaseHolds(ctx, b, nil)
	s.logger.Info("Booking cancelled",
		zap.String("bookingID", b.ID),
		zap.String("cancelledBy", actor.Role),
		zap.String("paymentStatus", string(b.PaymentStatus)))
	s.publish(ctx, notification.EventBookingCancelled, b, b.CancelReason)

	if b.PaymentStatus == models.PaymentPaid {
		if err := s.compensation.Run(ctx, b); err != nil {
			s.logger.Warn("Booking cancelled with pending compensation",
				zap.String("bookingID", b.ID),
				zap.Error(err))
		}
	}
	return b, nil
}

func isParticipant(b *models.Booking, actor Actor) bool {
	switch actor.Role {
	case utils.RoleMentor:
		return b.MentorID == actor.ID
	case utils.RoleMentee:
		return b.MenteeID == actor.ID
	}
	return false
}
