package models

import "time"

// SlotHold is a committed claim on a mentor's time by one session of a booking.
type SlotHold struct {
	BookingID    string    `bson:"booking_id" json:"booking_id"`
	SessionIndex int       `bson:"session_index" json:"session_index"`
	StartTime    time.Time `bson:"start_time" json:"start_time"`
	EndTime      time.Time `bson:"end_time" json:"end_time"`
}

// MentorCalendar holds every active slot claim for one mentor in a single document,
// so committing new holds is one conditional update.
type MentorCalendar struct {
	MentorID  string     `bson:"mentor_id" json:"mentor_id"`
	Holds     []SlotHold `bson:"holds" json:"holds"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// Mentor is the subset of the mentor profile the booking engine reads.
type Mentor struct {
	ID         string `bson:"id" json:"id"`
	HourlyRate int64  `bson:"hourly_rate" json:"hourly_rate"` // smallest currency unit
	Currency   string `bson:"currency,omitempty" json:"currency,omitempty"`
}
