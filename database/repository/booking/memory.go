package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorlink/models"
)

// MemoryBookingRepo is an in-process BookingRepository. A single mutex makes every method
// atomic, which gives it the same conditional-write semantics as the Mongo implementation.
type MemoryBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]*models.Booking
	byOrder   map[int64]string
	calendars map[string][]models.SlotHold
	seq       int64
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		bookings:  make(map[string]*models.Booking),
		byOrder:   make(map[int64]string),
		calendars: make(map[string][]models.SlotHold),
	}
}

func (m *MemoryBookingRepo) NextOrderCode(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return orderCodeBase + m.seq, nil
}

func (m *MemoryBookingRepo) CreateWithHolds(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byOrder[booking.OrderCode]; exists {
		return ErrDuplicateOrderCode
	}
	held := m.calendars[booking.MentorID]
	for _, r := range booking.Ranges() {
		for _, h := range held {
			hr := models.TimeRange{Start: h.StartTime, End: h.EndTime}
			if hr.Overlaps(r) {
				return &SlotTakenError{Conflict: hr}
			}
		}
	}
	m.calendars[booking.MentorID] = append(held, holdsFor(booking)...)
	m.bookings[booking.ID] = booking.Clone()
	m.byOrder[booking.OrderCode] = booking.ID
	return nil
}

func (m *MemoryBookingRepo) GetByID(_ context.Context, bookingID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

func (m *MemoryBookingRepo) GetByOrderCode(_ context.Context, orderCode int64) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byOrder[orderCode]
	if !ok {
		return nil, ErrNotFound
	}
	return m.bookings[id].Clone(), nil
}

func (m *MemoryBookingRepo) FindOverlapping(_ context.Context, mentorID string, ranges []models.TimeRange) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Booking
	for _, b := range m.bookings {
		if b.MentorID != mentorID || !b.Status.Holding() {
			continue
		}
		if overlapsAny(b, ranges) {
			out = append(out, *b.Clone())
		}
	}
	return out, nil
}

func overlapsAny(b *models.Booking, ranges []models.TimeRange) bool {
	for _, s := range b.Sessions {
		if s.Status == models.SessionCancelled {
			continue
		}
		for _, r := range ranges {
			if s.Range().Overlaps(r) {
				return true
			}
		}
	}
	return false
}

func (m *MemoryBookingRepo) ListByMentor(_ context.Context, mentorID string) ([]models.Booking, error) {
	return m.list(func(b *models.Booking) bool { return b.MentorID == mentorID }), nil
}

func (m *MemoryBookingRepo) ListByMentee(_ context.Context, menteeID string) ([]models.Booking, error) {
	return m.list(func(b *models.Booking) bool { return b.MenteeID == menteeID }), nil
}

func (m *MemoryBookingRepo) list(keep func(*models.Booking) bool) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Booking
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, *b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryBookingRepo) SaveTransition(_ context.Context, booking *models.Booking, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.bookings[booking.ID]
	if !ok || stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	stored.Status = booking.Status
	stored.Sessions = append([]models.Session(nil), booking.Sessions...)
	stored.CancelReason = booking.CancelReason
	stored.CancelledBy = booking.CancelledBy
	touch(stored, booking.UpdatedAt)
	booking.Version = stored.Version
	return nil
}

func (m *MemoryBookingRepo) ReleaseHolds(_ context.Context, mentorID, bookingID string, sessionIndexes []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	release := func(h models.SlotHold) bool {
		if h.BookingID != bookingID {
			return false
		}
		if sessionIndexes == nil {
			return true
		}
		for _, idx := range sessionIndexes {
			if h.SessionIndex == idx {
				return true
			}
		}
		return false
	}
	held := m.calendars[mentorID]
	kept := held[:0]
	for _, h := range held {
		if !release(h) {
			kept = append(kept, h)
		}
	}
	m.calendars[mentorID] = kept
	return nil
}

func (m *MemoryBookingRepo) ConfirmPayment(_ context.Context, orderCode, amount int64, paymentLinkID string, at time.Time) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.byOrderLocked(orderCode)
	if b == nil || b.Price != amount || !b.Status.Holding() {
		return nil, ErrNotFound
	}
	b.PaymentStatus = models.PaymentPaid
	b.Status = models.BookingConfirmed
	if paymentLinkID != "" {
		b.PaymentLinkID = paymentLinkID
	}
	touch(b, at)
	return b.Clone(), nil
}

func (m *MemoryBookingRepo) MarkPaymentFailed(_ context.Context, orderCode int64, at time.Time) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.byOrderLocked(orderCode)
	if b == nil || b.PaymentStatus == models.PaymentPaid {
		return nil, ErrNotFound
	}
	b.PaymentStatus = models.PaymentFailed
	touch(b, at)
	return b.Clone(), nil
}

func (m *MemoryBookingRepo) RecordLatePayment(_ context.Context, orderCode, amount int64, paymentLinkID string, at time.Time) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.byOrderLocked(orderCode)
	if b == nil || b.Price != amount || b.Status != models.BookingCancelled || b.PaymentStatus == models.PaymentPaid {
		return nil, ErrNotFound
	}
	b.PaymentStatus = models.PaymentPaid
	if paymentLinkID != "" {
		b.PaymentLinkID = paymentLinkID
	}
	touch(b, at)
	return b.Clone(), nil
}

// Holds returns a copy of the mentor's calendar holds.
func (m *MemoryBookingRepo) Holds(mentorID string) []models.SlotHold {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SlotHold(nil), m.calendars[mentorID]...)
}

func (m *MemoryBookingRepo) byOrderLocked(orderCode int64) *models.Booking {
	id, ok := m.byOrder[orderCode]
	if !ok {
		return nil
	}
	return m.bookings[id]
}

// touch bumps the version and moves updated_at forward only.
func touch(b *models.Booking, at time.Time) {
	b.Version++
	if at.After(b.UpdatedAt) {
		b.UpdatedAt = at
	}
}
