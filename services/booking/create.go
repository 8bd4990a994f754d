package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "mentorlink/database/repository/booking"
	mentorRepo "mentorlink/database/repository/mentor"
	"mentorlink/models"
	"mentorlink/services/notification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateBooking validates the requested sessions, prices them at the mentor's current rate and
// commits the booking together with its calendar holds.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if strings.TrimSpace(in.MentorID) == "" {
		return nil, &ValidationError{Field: "mentor_id", Message: "is required"}
	}
	if strings.TrimSpace(in.MenteeID) == "" {
		return nil, &ValidationError{Field: "mentee_id", Message: "is required"}
	}
	if in.MentorID == in.MenteeID {
		return nil, &ValidationError{Field: "mentor_id", Message: "cannot book yourself"}
	}

	conflict, err := s.checker.FindConflict(ctx, in.MentorID, in.Sessions)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &SlotConflictError{Range: *conflict}
	}

	mentor, err := s.mentors.GetByID(ctx, in.MentorID)
	if errors.Is(err, mentorRepo.ErrMentorNotFound) {
		return nil, ErrMentorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load mentor rate: %w", err)
	}
	if mentor.HourlyRate <= 0 {
		return nil, &ValidationError{Field: "mentor_id", Message: "mentor has no hourly rate configured"}
	}

	hours, price := ComputePrice(decimal.NewFromInt(mentor.HourlyRate), in.Sessions)
	currency := mentor.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	now := s.now()
	sessions := make([]models.Session, 0, len(in.Sessions))
	for _, r := range in.Sessions {
		sessions = append(sessions, models.Session{
			StartTime: r.Start.UTC(),
			EndTime:   r.End.UTC(),
			Status:    models.SessionUpcoming,
		})
	}
	b := &models.Booking{
		ID:                 uuid.New().String(),
		MentorID:           in.MentorID,
		MenteeID:           in.MenteeID,
		Sessions:           sessions,
		TotalDurationHours: hours.InexactFloat64(),
		HourlyRate:         mentor.HourlyRate,
		Price:              price.IntPart(),
		Currency:           currency,
		Status:             models.BookingPending,
		PaymentStatus:      models.PaymentPending,
		Note:               in.Note,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.insert(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("bookingID", b.ID),
		zap.String("mentorID", b.MentorID),
		zap.String("menteeID", b.MenteeID),
		zap.Int64("orderCode", b.OrderCode),
		zap.Int64("price", b.Price))
	s.publish(ctx, notification.EventBookingCreated, b, "")
	return b, nil
}

// insert allocates an order code and writes the booking, retrying only on an order-code collision.
func (s *DefaultBookingService) insert(ctx context.Context, b *models.Booking) error {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		code, err := s.repo.NextOrderCode(ctx)
		if err != nil {
			return fmt.Errorf("allocate order code: %w", err)
		}
		b.OrderCode = code

		err = s.repo.CreateWithHolds(ctx, b)
		if err == nil {
			return nil
		}
		var taken *bookingRepo.SlotTakenError
		if errors.As(err, &taken) {
			return &SlotConflictError{Range: taken.Conflict}
		}
		if !errors.Is(err, bookingRepo.ErrDuplicateOrderCode) {
			return fmt.Errorf("create booking: %w", err)
		}
		s.logger.Warn("Order code collision, allocating another", zap.Int64("orderCode", code))
	}
	return ErrConcurrentUpdate
}
