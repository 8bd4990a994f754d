package models

import "time"

// SessionStatus is the sub-status of a single session within a booking.
type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "UPCOMING"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// Session is one scheduled time block within a booking.
type Session struct {
	StartTime       time.Time     `bson:"start_time" json:"start_time"`
	EndTime         time.Time     `bson:"end_time" json:"end_time"`
	MeetingLink     string        `bson:"meeting_link,omitempty" json:"meeting_link,omitempty"`
	Status          SessionStatus `bson:"status" json:"status"`
	MentorConfirmed bool          `bson:"mentor_confirmed" json:"mentor_confirmed"`
	Note            string        `bson:"note,omitempty" json:"note,omitempty"`
	CancelReason    string        `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	CompletedAt     *time.Time    `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Range returns the session's interval.
func (s Session) Range() TimeRange {
	return TimeRange{Start: s.StartTime, End: s.EndTime}
}

// SessionUpdateRequest is the mentor-authored patch for one session.
type SessionUpdateRequest struct {
	MeetingLink   *string `json:"meeting_link"`
	Note          *string `json:"note"`
	MarkCompleted *bool   `json:"markCompleted"`
}

// CancelSessionRequest requires a reason for cancelling a single session.
type CancelSessionRequest struct {
	Reason string `json:"reason" binding:"required"`
}
