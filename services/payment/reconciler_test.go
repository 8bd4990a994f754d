package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "mentorlink/database/repository/booking"
	paymentRepo "mentorlink/database/repository/payment"
	"mentorlink/models"
	"mentorlink/services/notification"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCompensator struct {
	mock.Mock
}

func (m *mockCompensator) Refund(ctx context.Context, b *models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

type fixture struct {
	repo          *bookingRepo.MemoryBookingRepo
	events        *paymentRepo.MemoryPaymentEventRepo
	compensations *paymentRepo.MemoryCompensationRepo
	publisher     *notification.MemoryPublisher
	compensator   *mockCompensator
	reconciler    *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:          bookingRepo.NewMemoryBookingRepo(),
		events:        paymentRepo.NewMemoryPaymentEventRepo(),
		compensations: paymentRepo.NewMemoryCompensationRepo(),
		publisher:     notification.NewMemoryPublisher(),
		compensator:   &mockCompensator{},
	}
	logger := zap.NewNop()
	comp := NewCompensation(f.compensator, f.compensations, f.publisher, logger)
	f.reconciler = NewReconciler(f.repo, f.events, comp, f.publisher, logger)
	return f
}

func (f *fixture) seed(t *testing.T, orderCode, price int64) *models.Booking {
	t.Helper()
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	b := &models.Booking{
		ID:       "booking-1",
		MentorID: "mentor-1",
		MenteeID: "mentee-1",
		Sessions: []models.Session{
			{StartTime: start, EndTime: start.Add(time.Hour), Status: models.SessionUpcoming},
		},
		Price:         price,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
		OrderCode:     orderCode,
		CreatedAt:     start.Add(-48 * time.Hour),
		UpdatedAt:     start.Add(-48 * time.Hour),
	}
	require.NoError(t, f.repo.CreateWithHolds(context.Background(), b))
	return b
}

func (f *fixture) booking(t *testing.T) *models.Booking {
	t.Helper()
	b, err := f.repo.GetByID(context.Background(), "booking-1")
	require.NoError(t, err)
	return b
}

func successEvent(orderCode, amount int64) *models.VerifiedPaymentEvent {
	return &models.VerifiedPaymentEvent{
		OrderCode:     orderCode,
		Amount:        decimal.NewFromInt(amount),
		ProviderCode:  "00",
		PaymentLinkID: "pl_1",
	}
}

func failedEvent(orderCode, amount int64) *models.VerifiedPaymentEvent {
	return &models.VerifiedPaymentEvent{
		OrderCode:    orderCode,
		Amount:       decimal.NewFromInt(amount),
		ProviderCode: "01",
		Status:       "CANCELLED",
	}
}

func TestIsSuccess(t *testing.T) {
	yes, no := true, false
	assert.True(t, IsSuccess(&models.VerifiedPaymentEvent{ProviderCode: "00"}))
	assert.True(t, IsSuccess(&models.VerifiedPaymentEvent{Status: "PAID"}))
	assert.True(t, IsSuccess(&models.VerifiedPaymentEvent{ProviderCode: "99", Success: &yes}))
	assert.False(t, IsSuccess(&models.VerifiedPaymentEvent{ProviderCode: "01", Status: "FAILED", Success: &no}))
	assert.False(t, IsSuccess(&models.VerifiedPaymentEvent{}))
}

func TestReconcileSuccessConfirmsBooking(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 250000)

	res, err := f.reconciler.Reconcile(context.Background(), successEvent(123, 250000))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.True(t, res.Paid)

	b := f.booking(t)
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	assert.Equal(t, "pl_1", b.PaymentLinkID)
	assert.Contains(t, f.publisher.Types(), notification.EventPaymentPaid)
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 250000)
	ev := successEvent(123, 250000)

	_, err := f.reconciler.Reconcile(context.Background(), ev)
	require.NoError(t, err)
	once := f.booking(t)

	for i := 0; i < 5; i++ {
		res, err := f.reconciler.Reconcile(context.Background(), ev)
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.True(t, res.Paid)
	}
	again := f.booking(t)

	assert.Equal(t, once.Status, again.Status)
	assert.Equal(t, once.PaymentStatus, again.PaymentStatus)
	assert.Equal(t, once.PaymentLinkID, again.PaymentLinkID)
	assert.Equal(t, once.Price, again.Price)
	assert.Equal(t, once.Sessions, again.Sessions)
}

func TestReconcileAmountMismatchLeavesBookingUnchanged(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 300000)
	before := f.booking(t)

	res, err := f.reconciler.Reconcile(context.Background(), successEvent(123, 250000))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.False(t, res.Paid)
	assert.Equal(t, NoteMismatch, res.Note)

	assert.Equal(t, before, f.booking(t))

	review, err := f.events.ListNeedingReview(context.Background())
	require.NoError(t, err)
	require.Len(t, review, 1)
	assert.EqualValues(t, 123, review[0].OrderCode)
	assert.Equal(t, "250000", review[0].Amount)
}

func TestReconcileFractionalAmountNeverMatches(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 250000)

	ev := successEvent(123, 0)
	ev.Amount = decimal.RequireFromString("250000.4")
	res, err := f.reconciler.Reconcile(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, models.PaymentPending, f.booking(t).PaymentStatus)
}

func TestReconcileUnknownOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 250000)

	res, err := f.reconciler.Reconcile(context.Background(), successEvent(999, 250000))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, NoteMismatch, res.Note)

	res, err = f.reconciler.Reconcile(context.Background(), failedEvent(999, 250000))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, NoteUnknownOrder, res.Note)
	assert.Equal(t, models.PaymentPending, f.booking(t).PaymentStatus)
}

func TestReconcilePaidIsNeverOverwritten(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 250000)
	ctx := context.Background()

	_, err := f.reconciler.Reconcile(ctx, successEvent(123, 250000))
	require.NoError(t, err)

	// later deliveries, including ones stamped after the success, cannot regress PAID
	f.reconciler.now = func() time.Time { return time.Now().UTC().Add(24 * time.Hour) }
	for i := 0; i < 3; i++ {
		res, err := f.reconciler.Reconcile(ctx, failedEvent(123, 250000))
		require.NoError(t, err)
		assert.False(t, res.Paid)
		assert.Equal(t, NoteAlreadyPaid, res.Note)
	}

	b := f.booking(t)
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, models.BookingConfirmed, b.Status)
}

func TestReconcileOutOfOrderDeliveries(t *testing.T) {
	t.Run("failed then paid", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, 123, 250000)

		_, err := f.reconciler.Reconcile(context.Background(), failedEvent(123, 250000))
		require.NoError(t, err)
		assert.Equal(t, models.PaymentFailed, f.booking(t).PaymentStatus)

		_, err = f.reconciler.Reconcile(context.Background(), successEvent(123, 250000))
		require.NoError(t, err)
		b := f.booking(t)
		assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
		assert.Equal(t, models.BookingConfirmed, b.Status)
	})

	t.Run("paid then stale failed", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, 123, 250000)

		_, err := f.reconciler.Reconcile(context.Background(), successEvent(123, 250000))
		require.NoError(t, err)
		_, err = f.reconciler.Reconcile(context.Background(), failedEvent(123, 250000))
		require.NoError(t, err)

		b := f.booking(t)
		assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
		assert.Equal(t, models.BookingConfirmed, b.Status)
	})
}

func cancelSeeded(t *testing.T, f *fixture) {
	t.Helper()
	b := f.booking(t)
	b.Status = models.BookingCancelled
	b.CancelReason = "mentor unavailable"
	require.NoError(t, f.repo.SaveTransition(context.Background(), b, b.Version))
}

func TestReconcileLatePaymentOnCancelledBookingRefunds(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 250000)
	cancelSeeded(t, f)
	f.compensator.On("Refund", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil).Once()

	res, err := f.reconciler.Reconcile(context.Background(), successEvent(123, 250000))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.True(t, res.Paid)
	assert.Equal(t, NoteLateRefund, res.Note)

	b := f.booking(t)
	assert.Equal(t, models.BookingCancelled, b.Status, "a late payment never revives a booking")
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus)

	// a duplicate delivery does not refund twice
	res, err = f.reconciler.Reconcile(context.Background(), successEvent(123, 250000))
	require.NoError(t, err)
	assert.Equal(t, NoteLateRecorded, res.Note)
	f.compensator.AssertExpectations(t)
}

func TestReconcileLatePaymentRefundFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 123, 250000)
	cancelSeeded(t, f)
	f.compensator.On("Refund", mock.Anything, mock.Anything).Return(errors.New("provider down")).Once()

	res, err := f.reconciler.Reconcile(context.Background(), successEvent(123, 250000))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, NoteLateRefundFail, res.Note)

	records, err := f.compensations.ListUnresolved(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "booking-1", records[0].BookingID)
	assert.Contains(t, records[0].Error, "provider down")
	assert.Contains(t, f.publisher.Types(), notification.EventCompensationFailed)
}
