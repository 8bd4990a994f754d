package payment

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("webhook authentication failed")
	ErrMalformedEvent = errors.New("malformed payment event")
	ErrAmountMismatch = errors.New("payment amount does not match booking price")
	ErrCompensation   = errors.New("compensating action failed")
)

// AuthenticationError means the signature was absent, wrong, or could not be checked.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("webhook authentication failed: %s", e.Reason)
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// MalformedEventError means the payload could not be read into a payment event.
type MalformedEventError struct {
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed payment event: %s", e.Reason)
}

func (e *MalformedEventError) Is(target error) bool { return target == ErrMalformedEvent }

// AmountMismatchError is soft: the webhook still gets a 200 and the event is flagged for review.
type AmountMismatchError struct {
	OrderCode int64
	Expected  int64
	Got       string
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("order %d: expected amount %d, got %s", e.OrderCode, e.Expected, e.Got)
}

func (e *AmountMismatchError) Is(target error) bool { return target == ErrAmountMismatch }

// CompensationError is soft: the cancellation stands and the failure is recorded for follow-up.
type CompensationError struct {
	BookingID string
	Err       error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation for booking %s failed: %v", e.BookingID, e.Err)
}

func (e *CompensationError) Unwrap() error { return e.Err }

func (e *CompensationError) Is(target error) bool { return target == ErrCompensation }
