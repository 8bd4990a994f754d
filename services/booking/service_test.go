package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "mentorlink/database/repository/booking"
	mentorRepo "mentorlink/database/repository/mentor"
	paymentRepo "mentorlink/database/repository/payment"
	"mentorlink/models"
	"mentorlink/services/notification"
	"mentorlink/services/payment"
	"mentorlink/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCompensator struct {
	mock.Mock
}

func (m *mockCompensator) Refund(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

type serviceFixture struct {
	repo          *bookingRepo.MemoryBookingRepo
	compensations *paymentRepo.MemoryCompensationRepo
	publisher     *notification.MemoryPublisher
	compensator   *mockCompensator
	svc           *DefaultBookingService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		repo:          bookingRepo.NewMemoryBookingRepo(),
		compensations: paymentRepo.NewMemoryCompensationRepo(),
		publisher:     notification.NewMemoryPublisher(),
		compensator:   &mockCompensator{},
	}
	mentors := mentorRepo.NewMemoryMentorRepo(
		models.Mentor{ID: "mentor-1", HourlyRate: 100000},
		models.Mentor{ID: "mentor-2", HourlyRate: 80000, Currency: "USD"},
	)
	logger := zap.NewNop()
	comp := payment.NewCompensation(f.compensator, f.compensations, f.publisher, logger)
	f.svc = NewDefaultBookingService(f.repo, mentors, comp, f.publisher, logger, "VND")
	return f
}

var (
	mentee = Actor{ID: "mentee-1", Role: utils.RoleMentee}
	mentor = Actor{ID: "mentor-1", Role: utils.RoleMentor}
)

func (f *serviceFixture) create(t *testing.T, ranges ...models.TimeRange) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{
		MentorID: "mentor-1",
		MenteeID: "mentee-1",
		Sessions: ranges,
	})
	require.NoError(t, err)
	return b
}

func (f *serviceFixture) pay(t *testing.T, b *models.Booking) {
	t.Helper()
	_, err := f.repo.ConfirmPayment(context.Background(), b.OrderCode, b.Price, "pi_123", time.Now().UTC())
	require.NoError(t, err)
}

func hourRange(startHour, startMin, endHour, endMin int) models.TimeRange {
	return models.TimeRange{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

func TestCreateBookingPricesSessions(t *testing.T) {
	f := newServiceFixture(t)

	b := f.create(t, hourRange(9, 0, 10, 0), hourRange(14, 0, 15, 30))

	assert.Equal(t, 2.5, b.TotalDurationHours)
	assert.EqualValues(t, 250000, b.Price)
	assert.EqualValues(t, 100000, b.HourlyRate)
	assert.Equal(t, "VND", b.Currency)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)
	assert.NotZero(t, b.OrderCode)
	require.Len(t, b.Sessions, 2)
	for _, s := range b.Sessions {
		assert.Equal(t, models.SessionUpcoming, s.Status)
		assert.False(t, s.MentorConfirmed)
	}
	assert.Len(t, f.repo.Holds("mentor-1"), 2)
	assert.Equal(t, []string{notification.EventBookingCreated}, f.publisher.Types())
}

func TestCreateBookingConflictNamesExistingRange(t *testing.T) {
	f := newServiceFixture(t)
	existing := f.create(t, hourRange(10, 0, 11, 0))
	_, err := f.svc.AcceptBooking(context.Background(), "mentor-1", existing.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(context.Background(), CreateBookingInput{
		MentorID: "mentor-1",
		MenteeID: "mentee-2",
		Sessions: []models.TimeRange{hourRange(10, 30, 11, 30)},
	})
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, hourRange(10, 0, 11, 0), conflict.Range)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, CreateBookingInput{MentorID: "mentor-1", MenteeID: "mentee-1"})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = f.svc.CreateBooking(ctx, CreateBookingInput{
		MentorID: "mentor-1", MenteeID: "mentee-1",
		Sessions: []models.TimeRange{hourRange(11, 0, 10, 0)},
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = f.svc.CreateBooking(ctx, CreateBookingInput{
		MentorID: "mentor-1", MenteeID: "mentee-1",
		Sessions: []models.TimeRange{{Start: at(9, 0), End: at(9, 0).AddDate(300, 0, 0)}},
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Empty(t, f.repo.Holds("mentor-1"))

	_, err = f.svc.CreateBooking(ctx, CreateBookingInput{
		MentorID: "nobody", MenteeID: "mentee-1",
		Sessions: []models.TimeRange{hourRange(10, 0, 11, 0)},
	})
	assert.ErrorIs(t, err, ErrMentorNotFound)

	_, err = f.svc.CreateBooking(ctx, CreateBookingInput{
		MentorID: "mentor-1", MenteeID: "mentor-1",
		Sessions: []models.TimeRange{hourRange(10, 0, 11, 0)},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBookingConcurrentRequestsForSameSlot(t *testing.T) {
	f := newServiceFixture(t)

	const requests = 16
	var wg sync.WaitGroup
	errs := make([]error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateBooking(context.Background(), CreateBookingInput{
				MentorID: "mentor-1",
				MenteeID: "mentee-1",
				Sessions: []models.TimeRange{hourRange(10, 0, 11, 0)},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotConflict)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAcceptBookingIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	b := f.create(t, hourRange(10, 0, 11, 0))

	first, err := f.svc.AcceptBooking(context.Background(), "mentor-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, first.Status)

	second, err := f.svc.AcceptBooking(context.Background(), "mentor-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, second.Status)
	assert.Equal(t, first.Version, second.Version)

	_, err = f.svc.AcceptBooking(context.Background(), "mentor-2", b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelBookingReleasesSlot(t *testing.T) {
	f := newServiceFixture(t)
	b := f.create(t, hourRange(10, 0, 11, 0))

	cancelled, err := f.svc.CancelBooking(context.Background(), mentee, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, utils.RoleMentee, cancelled.CancelledBy)
	assert.Equal(t, models.SessionCancelled, cancelled.Sessions[0].Status)
	assert.Empty(t, f.repo.Holds("mentor-1"))

	// the freed window can be booked again
	f.create(t, hourRange(10, 0, 11, 0))

	_, err = f.svc.CancelBooking(context.Background(), mentee, b.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelBookingRules(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	b := f.create(t, hourRange(10, 0, 11, 0))

	_, err := f.svc.CancelBooking(ctx, mentor, b.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation, "mentor must give a reason")

	_, err = f.svc.CancelBooking(ctx, Actor{ID: "mentee-9", Role: utils.RoleMentee}, b.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	f.pay(t, b)
	_, err = f.svc.CancelBooking(ctx, mentee, b.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalidTransition, "mentee cannot cancel after paying")

	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
}

func TestMentorCancelAfterPaymentRefunds(t *testing.T) {
	f := newServiceFixture(t)
	b := f.create(t, hourRange(10, 0, 11, 0))
	f.pay(t, b)
	f.compensator.On("Refund", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.PaymentLinkID == "pi_123" && b.Price == 100000
	})).Return(nil).Once()

	cancelled, err := f.svc.CancelBooking(context.Background(), mentor, b.ID, "illness")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentPaid, cancelled.PaymentStatus, "payment status is never regressed")
	f.compensator.AssertExpectations(t)
	assert.Contains(t, f.publisher.Types(), notification.EventCompensationApplied)
}

func TestMentorCancelAfterPaymentRefundFailureStillCancels(t *testing.T) {
	f := newServiceFixture(t)
	b := f.create(t, hourRange(10, 0, 11, 0))
	f.pay(t, b)
	f.compensator.On("Refund", mock.Anything, mock.Anything).Return(errors.New("gateway timeout")).Once()

	cancelled, err := f.svc.CancelBooking(context.Background(), mentor, b.ID, "illness")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	records, err := f.compensations.ListUnresolved(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, b.ID, records[0].BookingID)
	assert.EqualValues(t, b.Price, records[0].Amount)
	assert.Contains(t, f.publisher.Types(), notification.EventCompensationFailed)
}

func TestUpdateSessionCompletesBooking(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	b := f.create(t, hourRange(9, 0, 10, 0), hourRange(11, 0, 12, 0))
	f.pay(t, b)

	link := "https://meet.example.com/abc"
	updated, err := f.svc.UpdateSession(ctx, "mentor-1", b.ID, 0, models.SessionUpdateRequest{MeetingLink: &link})
	require.NoError(t, err)
	assert.Equal(t, link, updated.Sessions[0].MeetingLink)

	done := true
	updated, err = f.svc.UpdateSession(ctx, "mentor-1", b.ID, 0, models.SessionUpdateRequest{MarkCompleted: &done})
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, updated.Sessions[0].Status)
	assert.True(t, updated.Sessions[0].MentorConfirmed)
	assert.NotNil(t, updated.Sessions[0].CompletedAt)
	assert.Equal(t, models.BookingConfirmed, updated.Status, "one session still upcoming")
	assert.Len(t, f.repo.Holds("mentor-1"), 2, "completed session keeps its slot while the booking is open")

	other := "https://meet.example.com/xyz"
	_, err = f.svc.UpdateSession(ctx, "mentor-1", b.ID, 0, models.SessionUpdateRequest{MeetingLink: &other})
	assert.ErrorIs(t, err, ErrInvalidTransition, "link is frozen after completion")

	updated, err = f.svc.UpdateSession(ctx, "mentor-1", b.ID, 1, models.SessionUpdateRequest{MarkCompleted: &done})
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, updated.Status)
	assert.Empty(t, f.repo.Holds("mentor-1"))
	assert.Contains(t, f.publisher.Types(), notification.EventBookingCompleted)
}

func TestCompletedSessionStillBlocksSlot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	b := f.create(t, hourRange(9, 0, 10, 0), hourRange(11, 0, 12, 0))
	f.pay(t, b)

	done := true
	updated, err := f.svc.UpdateSession(ctx, "mentor-1", b.ID, 0, models.SessionUpdateRequest{MarkCompleted: &done})
	require.NoError(t, err)
	require.Equal(t, models.BookingConfirmed, updated.Status)

	_, err = f.svc.CreateBooking(ctx, CreateBookingInput{
		MentorID: "mentor-1",
		MenteeID: "mentee-2",
		Sessions: []models.TimeRange{hourRange(9, 30, 10, 30)},
	})
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, hourRange(9, 0, 10, 0), conflict.Range)

	checker := NewSlotConflictChecker(f.repo)
	taken, err := checker.HasConflict(ctx, "mentor-1", []models.TimeRange{hourRange(9, 30, 10, 30)})
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUpdateSessionGuards(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	b := f.create(t, hourRange(9, 0, 10, 0))
	done := true

	_, err := f.svc.UpdateSession(ctx, "mentor-2", b.ID, 0, models.SessionUpdateRequest{MarkCompleted: &done})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateSession(ctx, "mentor-1", b.ID, 0, models.SessionUpdateRequest{MarkCompleted: &done})
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending bookings cannot complete sessions")

	_, err = f.svc.UpdateSession(ctx, "mentor-1", b.ID, 5, models.SessionUpdateRequest{MarkCompleted: &done})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.UpdateSession(ctx, "mentor-1", "missing", 0, models.SessionUpdateRequest{MarkCompleted: &done})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	b := f.create(t, hourRange(9, 0, 10, 0), hourRange(11, 0, 12, 0))

	_, err := f.svc.CancelSession(ctx, "mentor-1", b.ID, 1, "")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.svc.CancelSession(ctx, "mentor-1", b.ID, 1, "conference")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, updated.Sessions[1].Status)
	assert.Equal(t, "conference", updated.Sessions[1].CancelReason)
	assert.Equal(t, models.BookingPending, updated.Status)

	holds := f.repo.Holds("mentor-1")
	require.Len(t, holds, 1)
	assert.Equal(t, 0, holds[0].SessionIndex)

	_, err = f.svc.CancelSession(ctx, "mentor-1", b.ID, 1, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetAndListBookings(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	b := f.create(t, hourRange(9, 0, 10, 0))

	got, err := f.svc.GetBooking(ctx, mentee, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.GetBooking(ctx, Actor{ID: "mentor-2", Role: utils.RoleMentor}, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := f.svc.ListMentorBookings(ctx, "mentor-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.svc.ListMenteeBookings(ctx, "mentee-unknown")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
