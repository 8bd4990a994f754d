package bookingRepo

import (
	"errors"
	"fmt"

	"mentorlink/models"
)

var (
	ErrNotFound           = errors.New("booking not found")
	ErrVersionConflict    = errors.New("booking was modified concurrently")
	ErrSlotTaken          = errors.New("slot already held")
	ErrDuplicateOrderCode = errors.New("order code already in use")
)

// SlotTakenError names the held range that blocked a reservation.
type SlotTakenError struct {
	Conflict models.TimeRange
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("slot already held: %s", e.Conflict)
}

func (e *SlotTakenError) Is(target error) bool {
	return target == ErrSlotTaken
}
