package models

import "time"

// BookingEvent is published for every booking and payment lifecycle change.
type BookingEvent struct {
	Type          string        `json:"type"`
	BookingID     string        `json:"booking_id"`
	MentorID      string        `json:"mentor_id"`
	MenteeID      string        `json:"mentee_id"`
	OrderCode     int64         `json:"order_code"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Price         int64         `json:"price"`
	Note          string        `json:"note,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
