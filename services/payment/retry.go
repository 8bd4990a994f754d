package payment

import (
	"context"
	"errors"

	paymentRepo "mentorlink/database/repository/payment"
	"mentorlink/models"
	"mentorlink/services/notification"

	"go.uber.org/zap"
)

// RetryScheduler queues a failed compensation for another attempt.
type RetryScheduler interface {
	ScheduleRetry(ctx context.Context, record *models.CompensationRecord) error
}

// WithRetryScheduler makes Run queue every failed refund for a background retry.
func (c *Compensation) WithRetryScheduler(s RetryScheduler) *Compensation {
	c.scheduler = s
	return c
}

func (c *Compensation) scheduleRetry(ctx context.Context, record *models.CompensationRecord) {
	if c.scheduler == nil {
		return
	}
	if err := c.scheduler.ScheduleRetry(ctx, record); err != nil {
		c.logger.Warn("Failed to schedule compensation retry",
			zap.String("recordID", record.ID),
			zap.String("bookingID", record.BookingID),
			zap.Error(err))
	}
}

// Retry runs the refund again for a stored record and closes the record on success.
// The refund itself is idempotent per booking, so a retry after a lost acknowledgement is safe.
func (c *Compensation) Retry(ctx context.Context, recordID string, booking *models.Booking) error {
	if err := c.compensator.Refund(ctx, booking); err != nil {
		c.logger.Warn("Compensation retry failed",
			zap.String("recordID", recordID),
			zap.String("bookingID", booking.ID),
			zap.Error(err))
		return &CompensationError{BookingID: booking.ID, Err: err}
	}

	err := c.records.MarkResolved(ctx, recordID, c.now())
	if errors.Is(err, paymentRepo.ErrCompensationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	c.logger.Info("Compensation resolved on retry",
		zap.String("recordID", recordID),
		zap.String("bookingID", booking.ID))
	c.publish(ctx, notification.NewBookingEvent(notification.EventCompensationApplied, booking, "refund issued on retry"))
	return nil
}
