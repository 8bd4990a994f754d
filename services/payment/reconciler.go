package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "mentorlink/database/repository/booking"
	paymentRepo "mentorlink/database/repository/payment"
	"mentorlink/models"
	"mentorlink/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	NoteMismatch       = "not updated: orderCode or amount mismatch"
	NoteUnknownOrder   = "not updated: unknown orderCode"
	NoteAlreadyPaid    = "ignored: payment already PAID"
	NoteMarkedFailed   = "payment marked FAILED"
	NoteConfirmed      = "payment confirmed"
	NoteLateRefund     = "booking already cancelled: payment recorded, refund initiated"
	NoteLateRefundFail = "booking already cancelled: payment recorded, refund pending review"
	NoteLateRecorded   = "booking already cancelled: payment already recorded"
)

// Reconciler applies verified payment events to bookings. Every path is one conditional update
// in the repository, so repeated or reordered deliveries converge on the same state.
type Reconciler struct {
	bookings     bookingRepo.BookingRepository
	events       paymentRepo.PaymentEventRepository
	compensation *Compensation
	publisher    notification.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewReconciler(
	bookings bookingRepo.BookingRepository,
	events paymentRepo.PaymentEventRepository,
	compensation *Compensation,
	publisher notification.Publisher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		bookings:     bookings,
		events:       events,
		compensation: compensation,
		publisher:    publisher,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// IsSuccess treats the provider code, the status and the success flag as equally authoritative.
func IsSuccess(ev *models.VerifiedPaymentEvent) bool {
	if ev.ProviderCode == "00" || ev.Status == "PAID" {
		return true
	}
	return ev.Success != nil && *ev.Success
}

// Reconcile applies one event. Business outcomes (mismatch, unknown order) come back in the
// result; only storage failures are returned as errors.
func (r *Reconciler) Reconcile(ctx context.Context, ev *models.VerifiedPaymentEvent) (models.ReconciliationResult, error) {
	var (
		res    models.ReconciliationResult
		review bool
		err    error
	)
	if IsSuccess(ev) {
		res, review, err = r.applySuccess(ctx, ev)
	} else {
		res, err = r.applyFailure(ctx, ev)
	}
	if err != nil {
		r.logger.Error("Payment reconciliation failed",
			zap.Int64("orderCode", ev.OrderCode),
			zap.Error(err))
		return models.ReconciliationResult{}, err
	}

	r.record(ctx, ev, res, review)
	r.logger.Info("Payment event reconciled",
		zap.Int64("orderCode", ev.OrderCode),
		zap.String("amount", ev.Amount.String()),
		zap.Bool("ok", res.OK),
		zap.Bool("paid", res.Paid),
		zap.String("note", res.Note))
	return res, nil
}

func (r *Reconciler) applySuccess(ctx context.Context, ev *models.VerifiedPaymentEvent) (models.ReconciliationResult, bool, error) {
	at := r.now()
	if !ev.Amount.IsInteger() {
		return r.classifyUnmatched(ctx, ev, at)
	}
	amount := ev.Amount.IntPart()

	booking, err := r.bookings.ConfirmPayment(ctx, ev.OrderCode, amount, ev.PaymentLinkID, at)
	if err == nil {
		r.publish(ctx, notification.NewBookingEvent(notification.EventPaymentPaid, booking, NoteConfirmed))
		return models.ReconciliationResult{OK: true, Paid: true, Note: NoteConfirmed, BookingID: booking.ID}, false, nil
	}
	if !errors.Is(err, bookingRepo.ErrNotFound) {
		return models.ReconciliationResult{}, false, fmt.Errorf("confirm payment for order %d: %w", ev.OrderCode, err)
	}
	return r.classifyUnmatched(ctx, ev, at)
}

// classifyUnmatched explains why a success event matched nothing. It never writes on the order
// code alone, except for the cancelled-booking case where the amount still has to match.
func (r *Reconciler) classifyUnmatched(ctx context.Context, ev *models.VerifiedPaymentEvent, at time.Time) (models.ReconciliationResult, bool, error) {
	booking, err := r.bookings.GetByOrderCode(ctx, ev.OrderCode)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		r.logger.Warn("Payment for unknown order", zap.Int64("orderCode", ev.OrderCode))
		return models.ReconciliationResult{OK: false, Paid: false, Note: NoteMismatch}, true, nil
	}
	if err != nil {
		return models.ReconciliationResult{}, false, fmt.Errorf("lookup order %d: %w", ev.OrderCode, err)
	}

	if !ev.Amount.IsInteger() || ev.Amount.IntPart() != booking.Price {
		mismatch := &AmountMismatchError{OrderCode: ev.OrderCode, Expected: booking.Price, Got: ev.Amount.String()}
		r.logger.Warn("Payment amount mismatch, flagged for review",
			zap.String("bookingID", booking.ID),
			zap.Error(mismatch))
		r.publish(ctx, notification.NewBookingEvent(notification.EventPaymentUnmatched, booking, mismatch.Error()))
		return models.ReconciliationResult{OK: false, Paid: false, Note: NoteMismatch, BookingID: booking.ID}, true, nil
	}

	switch {
	case booking.Status == models.BookingCancelled:
		return r.applyLatePayment(ctx, ev, booking, at)
	case booking.PaymentStatus == models.PaymentPaid:
		// Already reconciled, e.g. a COMPLETED booking receiving a duplicate delivery.
		return models.ReconciliationResult{OK: true, Paid: true, Note: NoteConfirmed, BookingID: booking.ID}, false, nil
	default:
		r.logger.Warn("Payment matched a booking in an unpayable state",
			zap.String("bookingID", booking.ID),
			zap.String("status", string(booking.Status)))
		return models.ReconciliationResult{OK: false, Paid: false, Note: NoteMismatch, BookingID: booking.ID}, true, nil
	}
}

// applyLatePayment records money that arrived after cancellation and refunds it.
func (r *Reconciler) applyLatePayment(ctx context.Context, ev *models.VerifiedPaymentEvent, booking *models.Booking, at time.Time) (models.ReconciliationResult, bool, error) {
	paid, err := r.bookings.RecordLatePayment(ctx, ev.OrderCode, booking.Price, ev.PaymentLinkID, at)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return models.ReconciliationResult{OK: true, Paid: true, Note: NoteLateRecorded, BookingID: booking.ID}, false, nil
	}
	if err != nil {
		return models.ReconciliationResult{}, false, fmt.Errorf("record late payment for order %d: %w", ev.OrderCode, err)
	}

	r.publish(ctx, notification.NewBookingEvent(notification.EventPaymentPaid, paid, NoteLateRefund))
	if err := r.compensation.Run(ctx, paid); err != nil {
		return models.ReconciliationResult{OK: true, Paid: true, Note: NoteLateRefundFail, BookingID: paid.ID}, true, nil
	}
	return models.ReconciliationResult{OK: true, Paid: true, Note: NoteLateRefund, BookingID: paid.ID}, false, nil
}

func (r *Reconciler) applyFailure(ctx context.Context, ev *models.VerifiedPaymentEvent) (models.ReconciliationResult, error) {
	booking, err := r.bookings.MarkPaymentFailed(ctx, ev.OrderCode, r.now())
	if err == nil {
		r.publish(ctx, notification.NewBookingEvent(notification.EventPaymentFailed, booking, NoteMarkedFailed))
		return models.ReconciliationResult{OK: true, Paid: false, Note: NoteMarkedFailed, BookingID: booking.ID}, nil
	}
	if !errors.Is(err, bookingRepo.ErrNotFound) {
		return models.ReconciliationResult{}, fmt.Errorf("mark payment failed for order %d: %w", ev.OrderCode, err)
	}

	existing, err := r.bookings.GetByOrderCode(ctx, ev.OrderCode)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return models.ReconciliationResult{OK: false, Paid: false, Note: NoteUnknownOrder}, nil
	}
	if err != nil {
		return models.ReconciliationResult{}, fmt.Errorf("lookup order %d: %w", ev.OrderCode, err)
	}
	r.logger.Info("Stale failure event ignored, booking already paid",
		zap.String("bookingID", existing.ID),
		zap.Int64("orderCode", ev.OrderCode))
	return models.ReconciliationResult{OK: true, Paid: false, Note: NoteAlreadyPaid, BookingID: existing.ID}, nil
}

// record appends the delivery to the audit log. A logging failure does not undo the reconciliation.
func (r *Reconciler) record(ctx context.Context, ev *models.VerifiedPaymentEvent, res models.ReconciliationResult, review bool) {
	entry := &models.PaymentEvent{
		ID:            uuid.New().String(),
		OrderCode:     ev.OrderCode,
		Amount:        ev.Amount.String(),
		ProviderCode:  ev.ProviderCode,
		Status:        ev.Status,
		PaymentLinkID: ev.PaymentLinkID,
		BookingID:     res.BookingID,
		Paid:          res.Paid,
		Note:          res.Note,
		NeedsReview:   review,
		ReceivedAt:    r.now(),
	}
	if err := r.events.Record(ctx, entry); err != nil {
		r.logger.Error("Failed to record payment event",
			zap.Int64("orderCode", ev.OrderCode),
			zap.Error(err))
	}
}

func (r *Reconciler) publish(ctx context.Context, event models.BookingEvent) {
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish payment event",
			zap.String("bookingID", event.BookingID),
			zap.String("type", event.Type),
			zap.Error(err))
	}
}
