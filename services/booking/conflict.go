package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "mentorlink/database/repository/booking"
	"mentorlink/models"
)

// MaxSessionLength bounds a single session.
const MaxSessionLength = 24 * time.Hour

// ValidateRanges rejects an empty list, any range whose end is not after its start and any
// session longer than MaxSessionLength.
func ValidateRanges(ranges []models.TimeRange) error {
	if len(ranges) == 0 {
		return &InvalidRangeError{Index: -1, Reason: "at least one session is required"}
	}
	for i, r := range ranges {
		if r.Start.IsZero() || r.End.IsZero() {
			return &InvalidRangeError{Index: i, Range: r, Reason: "start_time and end_time are required"}
		}
		if !r.Valid() {
			return &InvalidRangeError{Index: i, Range: r, Reason: "end_time must be after start_time"}
		}
		if r.Duration() > MaxSessionLength {
			return &InvalidRangeError{Index: i, Range: r, Reason: fmt.Sprintf("a session may last at most %s", MaxSessionLength)}
		}
	}
	return nil
}

// SlotConflictChecker is the fast-path overlap check run before a booking is written.
// The calendar hold written by the repository is what actually guarantees no double booking.
type SlotConflictChecker struct {
	repo bookingRepo.BookingRepository
}

func NewSlotConflictChecker(repo bookingRepo.BookingRepository) *SlotConflictChecker {
	return &SlotConflictChecker{repo: repo}
}

// HasConflict reports whether any candidate overlaps another candidate or a held session.
func (c *SlotConflictChecker) HasConflict(ctx context.Context, mentorID string, ranges []models.TimeRange) (bool, error) {
	conflict, err := c.FindConflict(ctx, mentorID, ranges)
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}

// FindConflict returns the first offending range, or nil. For a clash with an existing booking
// the returned range is the existing session's.
func (c *SlotConflictChecker) FindConflict(ctx context.Context, mentorID string, ranges []models.TimeRange) (*models.TimeRange, error) {
	if err := ValidateRanges(ranges); err != nil {
		return nil, err
	}
	if r := selfOverlap(ranges); r != nil {
		return r, nil
	}

	existing, err := c.repo.FindOverlapping(ctx, mentorID, ranges)
	if err != nil {
		return nil, fmt.Errorf("conflict lookup for mentor %s: %w", mentorID, err)
	}
	for _, b := range existing {
		if !b.Status.Holding() {
			continue
		}
		for _, s := range b.Sessions {
			if s.Status == models.SessionCancelled {
				continue
			}
			held := s.Range()
			for _, r := range ranges {
				if held.Overlaps(r) {
					return &held, nil
				}
			}
		}
	}
	return nil, nil
}

func selfOverlap(ranges []models.TimeRange) *models.TimeRange {
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].Overlaps(ranges[j]) {
				r := ranges[j]
				return &r
			}
		}
	}
	return nil
}
