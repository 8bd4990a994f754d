package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paymentRepo "mentorlink/database/repository/payment"
	"mentorlink/models"
	"mentorlink/services/notification"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

var errRefundUnavailable = errors.New("refund provider not configured")

// Compensator reverses a captured payment for a booking that was cancelled after paying.
type Compensator interface {
	Refund(ctx context.Context, booking *models.Booking) error
}

// StripeCompensator refunds through Stripe. The payment link id comes from the payment provider,
// so it is only used directly when it already names a Stripe PaymentIntent or Charge. Otherwise
// the intent is found by the order_code metadata the checkout attaches to it.
type StripeCompensator struct {
	logger *zap.Logger
	lookup func(ctx context.Context, booking *models.Booking) (string, error)
}

func NewStripeCompensator(logger *zap.Logger) *StripeCompensator {
	return &StripeCompensator{logger: logger, lookup: searchPaymentIntent}
}

// ErrNoRefundTarget means no Stripe object could be matched to the booking's payment.
var ErrNoRefundTarget = errors.New("no stripe payment matches booking")

// RefundTarget classifies a payment reference. kind is "payment_intent", "charge" or "" when
// the reference is not a Stripe id.
func RefundTarget(reference string) (kind, id string) {
	switch {
	case strings.HasPrefix(reference, "pi_"):
		return "payment_intent", reference
	case strings.HasPrefix(reference, "ch_"), strings.HasPrefix(reference, "py_"):
		return "charge", reference
	default:
		return "", ""
	}
}

func searchPaymentIntent(ctx context.Context, booking *models.Booking) (string, error) {
	params := &stripe.PaymentIntentSearchParams{}
	params.Context = ctx
	params.Query = fmt.Sprintf("metadata['order_code']:'%d'", booking.OrderCode)
	iter := paymentintent.Search(params)
	for iter.Next() {
		pi := iter.PaymentIntent()
		if pi.Status == stripe.PaymentIntentStatusSucceeded {
			return pi.ID, nil
		}
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("stripe payment intent search failed: %w", err)
	}
	return "", fmt.Errorf("order %d: %w", booking.OrderCode, ErrNoRefundTarget)
}

func (s *StripeCompensator) refundParams(ctx context.Context, booking *models.Booking) (*stripe.RefundParams, error) {
	params := &stripe.RefundParams{
		Amount: stripe.Int64(booking.Price),
		Reason: stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	switch kind, id := RefundTarget(booking.PaymentLinkID); kind {
	case "payment_intent":
		params.PaymentIntent = stripe.String(id)
	case "charge":
		params.Charge = stripe.String(id)
	default:
		intentID, err := s.lookup(ctx, booking)
		if err != nil {
			return nil, err
		}
		params.PaymentIntent = stripe.String(intentID)
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + booking.ID)
	params.AddMetadata("booking_id", booking.ID)
	params.AddMetadata("order_code", fmt.Sprint(booking.OrderCode))
	params.AddMetadata("payment_link_id", booking.PaymentLinkID)
	return params, nil
}

func (s *StripeCompensator) Refund(ctx context.Context, booking *models.Booking) error {
	if stripe.Key == "" {
		return errRefundUnavailable
	}
	params, err := s.refundParams(ctx, booking)
	if err != nil {
		return err
	}

	r, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("stripe refund failed: %w", err)
	}
	s.logger.Info("Refund issued",
		zap.String("bookingID", booking.ID),
		zap.String("refundID", r.ID),
		zap.String("refundStatus", string(r.Status)))
	return nil
}

// Compensation runs the compensating action and makes sure a failure is never dropped:
// it is logged, stored for operator follow-up and published.
type Compensation struct {
	compensator Compensator
	records     paymentRepo.CompensationRepository
	publisher   notification.Publisher
	scheduler   RetryScheduler
	logger      *zap.Logger
	now         func() time.Time
}

func NewCompensation(compensator Compensator, records paymentRepo.CompensationRepository, publisher notification.Publisher, logger *zap.Logger) *Compensation {
	return &Compensation{
		compensator: compensator,
		records:     records,
		publisher:   publisher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run returns a *CompensationError when the refund failed; callers treat it as soft.
func (c *Compensation) Run(ctx context.Context, booking *models.Booking) error {
	err := c.compensator.Refund(ctx, booking)
	if err == nil {
		c.publish(ctx, notification.NewBookingEvent(notification.EventCompensationApplied, booking, "refund issued"))
		return nil
	}

	c.logger.Error("Compensating refund failed",
		zap.String("bookingID", booking.ID),
		zap.Int64("orderCode", booking.OrderCode),
		zap.Error(err))

	record := &models.CompensationRecord{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		OrderCode:     booking.OrderCode,
		PaymentLinkID: booking.PaymentLinkID,
		Amount:        booking.Price,
		Error:         err.Error(),
		CreatedAt:     c.now(),
	}
	if saveErr := c.records.Save(ctx, record); saveErr != nil {
		c.logger.Error("Failed to persist compensation record",
			zap.String("bookingID", booking.ID),
			zap.Error(saveErr))
	} else {
		c.scheduleRetry(ctx, record)
	}
	c.publish(ctx, notification.NewBookingEvent(notification.EventCompensationFailed, booking, err.Error()))
	return &CompensationError{BookingID: booking.ID, Err: err}
}

func (c *Compensation) publish(ctx context.Context, event models.BookingEvent) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("Failed to publish compensation event", zap.String("bookingID", event.BookingID), zap.Error(err))
	}
}
