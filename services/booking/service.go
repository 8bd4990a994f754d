package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "mentorlink/database/repository/booking"
	mentorRepo "mentorlink/database/repository/mentor"
	"mentorlink/models"
	"mentorlink/services/notification"
	"mentorlink/services/payment"

	"go.uber.org/zap"
)

// maxWriteAttempts bounds the reload-and-retry loop when another writer bumped the version.
const maxWriteAttempts = 3

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	repo            bookingRepo.BookingRepository
	mentors         mentorRepo.MentorRepository
	checker         *SlotConflictChecker
	compensation    *payment.Compensation
	publisher       notification.Publisher
	logger          *zap.Logger
	defaultCurrency string
	now             func() time.Time
}

func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	mentors mentorRepo.MentorRepository,
	compensation *payment.Compensation,
	publisher notification.Publisher,
	logger *zap.Logger,
	defaultCurrency string,
) *DefaultBookingService {
	return &DefaultBookingService{
		repo:            repo,
		mentors:         mentors,
		checker:         NewSlotConflictChecker(repo),
		compensation:    compensation,
		publisher:       publisher,
		logger:          logger,
		defaultCurrency: defaultCurrency,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	return b, nil
}

// mutate applies fn to a fresh copy of the booking and writes it back guarded by the version it
// was read at. A lost race reloads and re-runs fn against the new state.
func (s *DefaultBookingService) mutate(ctx context.Context, bookingID string, fn func(b *models.Booking) (bool, error)) (*models.Booking, bool, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		b, err := s.load(ctx, bookingID)
		if err != nil {
			return nil, false, err
		}
		expected := b.Version
		changed, err := fn(b)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return b, false, nil
		}
		b.UpdatedAt = s.now()

		err = s.repo.SaveTransition(ctx, b, expected)
		if err == nil {
			return b, true, nil
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) {
			return nil, false, fmt.Errorf("save booking %s: %w", bookingID, err)
		}
		s.logger.Debug("Booking version conflict, retrying",
			zap.String("bookingID", bookingID),
			zap.Int("attempt", attempt))
	}
	return nil, false, ErrConcurrentUpdate
}

// releaseHolds frees calendar time after the booking write succeeded. A failure leaves a stale
// hold that blocks the slot, never a double booking, so it is logged rather than returned.
func (s *DefaultBookingService) releaseHolds(ctx context.Context, b *models.Booking, sessionIndexes []int) {
	if err := s.repo.ReleaseHolds(ctx, b.MentorID, b.ID, sessionIndexes); err != nil {
		s.logger.Error("Failed to release calendar holds",
			zap.String("bookingID", b.ID),
			zap.String("mentorID", b.MentorID),
			zap.Ints("sessions", sessionIndexes),
			zap.Error(err))
	}
}

func (s *DefaultBookingService) publish(ctx context.Context, eventType string, b *models.Booking, note string) {
	if err := s.publisher.Publish(ctx, notification.NewBookingEvent(eventType, b, note)); err != nil {
		s.logger.Warn("Failed to publish booking event",
			zap.String("bookingID", b.ID),
			zap.String("type", eventType),
			zap.Error(err))
	}
}
