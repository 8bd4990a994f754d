package models

import "time"

// BookingStatus is the booking-level lifecycle state.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Holding reports whether a booking in this status still claims its mentor's time.
func (s BookingStatus) Holding() bool {
	return s == BookingPending || s == BookingConfirmed
}

// HoldingStatuses lists the statuses whose sessions block a mentor's calendar.
var HoldingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// PaymentStatus is the payment record state of a booking.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Booking is the aggregate covering one or more sessions between a mentor and a mentee.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	MentorID           string        `bson:"mentor_id" json:"mentor_id"`
	MenteeID           string        `bson:"mentee_id" json:"mentee_id"`
	Sessions           []Session     `bson:"sessions" json:"sessions"`
	TotalDurationHours float64       `bson:"total_duration_hours" json:"total_duration_hours"`
	HourlyRate         int64         `bson:"hourly_rate" json:"hourly_rate"` // rate at creation, smallest currency unit
	Price              int64         `bson:"price" json:"price"`             // smallest currency unit, never recalculated
	Currency           string        `bson:"currency" json:"currency"`
	Status             BookingStatus `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus `bson:"payment_status" json:"payment_status"`
	OrderCode          int64         `bson:"order_code" json:"order_code"`
	PaymentLinkID      string        `bson:"payment_link_id,omitempty" json:"payment_link_id,omitempty"`
	CancelReason       string        `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	CancelledBy        string        `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	Note               string        `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updated_at"`
	Version            int64         `bson:"version" json:"-"` // bumped by every write, used for compare-and-swap
}

// Ranges returns the time ranges of every session, in order.
func (b *Booking) Ranges() []TimeRange {
	out := make([]TimeRange, 0, len(b.Sessions))
	for _, s := range b.Sessions {
		out = append(out, s.Range())
	}
	return out
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Sessions = append([]Session(nil), b.Sessions...)
	return &cp
}

// CreateBookingRequest is the payload accepted by the booking creation endpoint.
type CreateBookingRequest struct {
	MentorID string      `json:"mentor_id" binding:"required"`
	MenteeID string      `json:"mentee_id"`
	Sessions []TimeRange `json:"sessions" binding:"required,min=1"`
	Note     string      `json:"note"`
}

// CancelBookingRequest carries the optional reason for a cancellation.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}
