package booking

import (
	"context"

	"mentorlink/models"
	"mentorlink/services/notification"

	"go.uber.org/zap"
)

// UpdateSession applies the mentor's patch to one session. Marking it completed also sets
// mentorConfirmed, and completes the booking when it was the last open session.
func (s *DefaultBookingService) UpdateSession(ctx context.Context, mentorID, bookingID string, index int, req models.SessionUpdateRequest) (*models.Booking, error) {
	var completedSession, completedBooking bool
	b, changed, err := s.mutate(ctx, bookingID, func(b *models.Booking) (bool, error) {
		completedSession, completedBooking = false, false
		if b.MentorID != mentorID {
			return false, ErrForbidden
		}
		changed, err := UpdateSessionDetails(b, index, req.MeetingLink, req.Note)
		if err != nil {
			return false, err
		}
		if req.MarkCompleted != nil && *req.MarkCompleted {
			done, err := CompleteSession(b, index, s.now())
			if err != nil {
				return false, err
			}
			completedSession = done
			completedBooking = MaybeComplete(b)
			changed = changed || done
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return b, nil
	}

	switch {
	case completedBooking:
		s.releaseHolds(ctx, b, nil)
		s.logger.Info("Booking completed", zap.String("bookingID", b.ID))
		s.publish(ctx, notification.EventBookingCompleted, b, "")
	case completedSession:
		// The slot stays held until the whole booking completes or is cancelled.
		s.publish(ctx, notification.EventSessionUpdated, b, "session completed")
	default:
		s.publish(ctx, notification.EventSessionUpdated, b, "")
	}
	return b, nil
}

// CancelSession cancels a single upcoming session and frees its calendar slot.
func (s *DefaultBookingService) CancelSession(ctx context.Context, mentorID, bookingID string, index int, reason string) (*models.Booking, error) {
	b, _, err := s.mutate(ctx, bookingID, func(b *models.Booking) (bool, error) {
		if b.MentorID != mentorID {
			return false, ErrForbidden
		}
		if err := CancelSession(b, index, reason); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.releaseHolds(ctx, b, []int{index})
	s.logger.Info("Session cancelled",
		zap.String("bookingID", b.ID),
		zap.Int("session", index))
	s.publish(ctx, notification.EventSessionCancelled, b, reason)
	return b, nil
}
