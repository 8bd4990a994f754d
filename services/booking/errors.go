package booking

import (
	"errors"
	"fmt"

	"mentorlink/models"
)

var (
	ErrInvalidRange      = errors.New("invalid time range")
	ErrSlotConflict      = errors.New("requested slot conflicts with an existing session")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotFound          = errors.New("booking not found")
	ErrMentorNotFound    = errors.New("mentor not found")
	ErrForbidden         = errors.New("not permitted for this booking")
	ErrValidation        = errors.New("invalid request")
	ErrConcurrentUpdate  = errors.New("booking is being modified, retry")
)

// InvalidRangeError reports a malformed candidate range. Index is -1 when the list itself is empty.
type InvalidRangeError struct {
	Index  int
	Range  models.TimeRange
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid time range: %s", e.Reason)
	}
	return fmt.Sprintf("invalid time range %d %s: %s", e.Index, e.Range, e.Reason)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// SlotConflictError carries the window that blocked the request.
type SlotConflictError struct {
	Range models.TimeRange
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot conflict with %s", e.Range)
}

func (e *SlotConflictError) Is(target error) bool { return target == ErrSlotConflict }

// InvalidStateTransitionError is returned when the current state does not allow the change.
type InvalidStateTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot move %s from %s to %s", e.Entity, e.From, e.To)
}

func (e *InvalidStateTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func bookingTransition(from models.BookingStatus, to models.BookingStatus) error {
	return &InvalidStateTransitionError{Entity: "booking", From: string(from), To: string(to)}
}

func sessionTransition(from models.SessionStatus, to string) error {
	return &InvalidStateTransitionError{Entity: "session", From: string(from), To: to}
}

// ValidationError is a request that is well formed but not acceptable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
