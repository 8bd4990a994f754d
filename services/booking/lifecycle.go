package booking

import (
	"strings"
	"time"

	"mentorlink/models"
	"mentorlink/utils"
)

// The functions below mutate a booking in memory only. They return changed=false when the booking
// is already in the requested state, which is how repeated triggers stay idempotent.

// Confirm moves PENDING to CONFIRMED. Confirming a CONFIRMED booking is a no-op.
func Confirm(b *models.Booking) (bool, error) {
	switch b.Status {
	case models.BookingPending:
		b.Status = models.BookingConfirmed
		return true, nil
	case models.BookingConfirmed:
		return false, nil
	default:
		return false, bookingTransition(b.Status, models.BookingConfirmed)
	}
}

// Cancel moves PENDING or CONFIRMED to CANCELLED. Mentees may only cancel before payment;
// mentors must give a reason. Open sessions are cancelled with the booking.
func Cancel(b *models.Booking, actor Actor, reason string) error {
	if !b.Status.Holding() {
		return bookingTransition(b.Status, models.BookingCancelled)
	}
	reason = strings.TrimSpace(reason)
	switch actor.Role {
	case utils.RoleMentee:
		if b.PaymentStatus == models.PaymentPaid {
			return &InvalidStateTransitionError{Entity: "booking", From: "PAID", To: string(models.BookingCancelled)}
		}
	case utils.RoleMentor:
		if reason == "" {
			return &ValidationError{Field: "reason", Message: "a reason is required when the mentor cancels"}
		}
	}

	b.Status = models.BookingCancelled
	b.CancelReason = reason
	b.CancelledBy = actor.Role
	for i := range b.Sessions {
		if b.Sessions[i].Status == models.SessionUpcoming {
			b.Sessions[i].Status = models.SessionCancelled
			b.Sessions[i].CancelReason = reason
		}
	}
	return nil
}

func sessionAt(b *models.Booking, index int) (*models.Session, error) {
	if index < 0 || index >= len(b.Sessions) {
		return nil, &ValidationError{Field: "index", Message: "session index out of range"}
	}
	return &b.Sessions[index], nil
}

// UpdateSessionDetails sets the meeting link and note. The link is frozen once the session is completed.
func UpdateSessionDetails(b *models.Booking, index int, meetingLink, note *string) (bool, error) {
	if b.Status == models.BookingCancelled {
		return false, bookingTransition(b.Status, "UPDATED")
	}
	s, err := sessionAt(b, index)
	if err != nil {
		return false, err
	}

	changed := false
	if meetingLink != nil && *meetingLink != s.MeetingLink {
		if s.Status != models.SessionUpcoming {
			return false, sessionTransition(s.Status, "meeting link change")
		}
		s.MeetingLink = *meetingLink
		changed = true
	}
	if note != nil && *note != s.Note {
		s.Note = *note
		changed = true
	}
	return changed, nil
}

// CompleteSession marks an UPCOMING session COMPLETED together with mentorConfirmed.
// Only sessions of a CONFIRMED booking can complete.
func CompleteSession(b *models.Booking, index int, at time.Time) (bool, error) {
	s, err := sessionAt(b, index)
	if err != nil {
		return false, err
	}
	if s.Status == models.SessionCompleted {
		return false, nil
	}
	if b.Status != models.BookingConfirmed {
		return false, bookingTransition(b.Status, "SESSION_COMPLETED")
	}
	if s.Status != models.SessionUpcoming {
		return false, sessionTransition(s.Status, string(models.SessionCompleted))
	}
	completedAt := at
	s.Status = models.SessionCompleted
	s.MentorConfirmed = true
	s.CompletedAt = &completedAt
	return true, nil
}

// CancelSession moves one UPCOMING session to CANCELLED. A reason is mandatory.
func CancelSession(b *models.Booking, index int, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return &ValidationError{Field: "reason", Message: "a reason is required to cancel a session"}
	}
	if !b.Status.Holding() {
		return bookingTransition(b.Status, "SESSION_CANCELLED")
	}
	s, err := sessionAt(b, index)
	if err != nil {
		return err
	}
	if s.Status != models.SessionUpcoming {
		return sessionTransition(s.Status, string(models.SessionCancelled))
	}
	s.Status = models.SessionCancelled
	s.CancelReason = reason
	return nil
}

// MaybeComplete moves a CONFIRMED booking to COMPLETED once every session is COMPLETED.
func MaybeComplete(b *models.Booking) bool {
	if b.Status != models.BookingConfirmed || len(b.Sessions) == 0 {
		return false
	}
	for _, s := range b.Sessions {
		if s.Status != models.SessionCompleted {
			return false
		}
	}
	b.Status = models.BookingCompleted
	return true
}
