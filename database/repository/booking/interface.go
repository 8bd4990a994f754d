package bookingRepo

import (
	"context"
	"time"

	"mentorlink/models"
)

// BookingRepository is the durable store for bookings and mentor calendars.
// Every mutating method is a single conditional update (or one transaction) against the store;
// none of them reads first and writes later.
type BookingRepository interface {
	// NextOrderCode allocates a globally unique payment correlation key.
	NextOrderCode(ctx context.Context) (int64, error)
	// CreateWithHolds inserts the booking and commits each session as a hold on the mentor calendar.
	// It fails with *SlotTakenError when any session overlaps an existing hold.
	CreateWithHolds(ctx context.Context, booking *models.Booking) error
	// GetByID returns ErrNotFound for unknown ids.
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// GetByOrderCode returns ErrNotFound for unknown order codes.
	GetByOrderCode(ctx context.Context, orderCode int64) (*models.Booking, error)
	// FindOverlapping returns holding bookings of the mentor with an upcoming session overlapping any range.
	FindOverlapping(ctx context.Context, mentorID string, ranges []models.TimeRange) ([]models.Booking, error)
	ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error)
	ListByMentee(ctx context.Context, menteeID string) ([]models.Booking, error)

	// SaveTransition writes the mentor/mentee-owned fields (status, sessions, cancellation) when the
	// stored version still equals expectedVersion. Payment fields are never written here.
	SaveTransition(ctx context.Context, booking *models.Booking, expectedVersion int64) error
	// ReleaseHolds removes the booking's holds from the mentor calendar. A nil sessionIndexes releases all.
	ReleaseHolds(ctx context.Context, mentorID, bookingID string, sessionIndexes []int) error

	// ConfirmPayment sets PAID/CONFIRMED on the holding booking matching both orderCode and amount.
	// ErrNotFound when nothing matched.
	ConfirmPayment(ctx context.Context, orderCode, amount int64, paymentLinkID string, at time.Time) (*models.Booking, error)
	// MarkPaymentFailed sets FAILED on the booking with orderCode unless it is already PAID.
	// ErrNotFound when nothing matched.
	MarkPaymentFailed(ctx context.Context, orderCode int64, at time.Time) (*models.Booking, error)
	// RecordLatePayment sets PAID on a CANCELLED booking matching orderCode and amount without reviving it.
	// ErrNotFound when nothing matched.
	RecordLatePayment(ctx context.Context, orderCode, amount int64, paymentLinkID string, at time.Time) (*models.Booking, error)
}
