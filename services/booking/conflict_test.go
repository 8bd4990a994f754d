package booking

import (
	"context"
	"math/rand"
	"testing"
	"time"

	bookingRepo "mentorlink/database/repository/booking"
	"mentorlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestValidateRanges(t *testing.T) {
	assert.ErrorIs(t, ValidateRanges(nil), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRanges([]models.TimeRange{{Start: at(10, 0), End: at(10, 0)}}), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRanges([]models.TimeRange{{Start: at(11, 0), End: at(10, 0)}}), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRanges([]models.TimeRange{{End: at(10, 0)}}), ErrInvalidRange)
	assert.NoError(t, ValidateRanges([]models.TimeRange{{Start: at(10, 0), End: at(10, 1)}}))
}

func TestValidateRangesCapsSessionLength(t *testing.T) {
	start := at(9, 0)
	assert.NoError(t, ValidateRanges([]models.TimeRange{{Start: start, End: start.Add(MaxSessionLength)}}))

	err := ValidateRanges([]models.TimeRange{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start.Add(48 * time.Hour), End: start.Add(48*time.Hour + MaxSessionLength + time.Minute)},
	})
	var invalid *InvalidRangeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Index)

	err = ValidateRanges([]models.TimeRange{
		{Start: start, End: start.AddDate(300, 0, 0)},
		{Start: start.AddDate(301, 0, 0), End: start.AddDate(600, 0, 0)},
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestFindConflictSelfOverlap(t *testing.T) {
	checker := NewSlotConflictChecker(bookingRepo.NewMemoryBookingRepo())

	conflict, err := checker.FindConflict(context.Background(), "mentor-1", []models.TimeRange{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(9, 30), End: at(10, 30)},
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, at(9, 30), conflict.Start)

	has, err := checker.HasConflict(context.Background(), "mentor-1", []models.TimeRange{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(10, 0), End: at(11, 0)},
	})
	require.NoError(t, err)
	assert.False(t, has, "back-to-back sessions do not overlap")
}

func TestFindConflictIgnoresReleasedSessions(t *testing.T) {
	repo := bookingRepo.NewMemoryBookingRepo()
	ctx := context.Background()
	cancelled := &models.Booking{
		ID: "b-cancelled", MentorID: "mentor-1", MenteeID: "mentee-1", OrderCode: 1,
		Status: models.BookingCancelled,
		Sessions: []models.Session{{StartTime: at(10, 0), EndTime: at(11, 0), Status: models.SessionCancelled}},
	}
	require.NoError(t, repo.CreateWithHolds(ctx, cancelled))

	checker := NewSlotConflictChecker(repo)
	has, err := checker.HasConflict(ctx, "mentor-1", []models.TimeRange{{Start: at(10, 0), End: at(11, 0)}})
	require.NoError(t, err)
	assert.False(t, has)

	has, err = checker.HasConflict(ctx, "mentor-2", []models.TimeRange{{Start: at(10, 0), End: at(11, 0)}})
	require.NoError(t, err)
	assert.False(t, has)
}

// Random requests against one mentor: whatever gets accepted must be pairwise disjoint, and a
// request is rejected exactly when it overlaps itself or something already accepted.
func TestNoOverlapInvariantRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	f := newServiceFixture(t)
	ctx := context.Background()

	var accepted []models.TimeRange
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(3)
		ranges := make([]models.TimeRange, 0, n)
		for j := 0; j < n; j++ {
			start := at(0, 0).Add(time.Duration(rng.Intn(7*24*4)) * 15 * time.Minute)
			ranges = append(ranges, models.TimeRange{Start: start, End: start.Add(time.Duration(1+rng.Intn(8)) * 15 * time.Minute)})
		}

		expectConflict := false
		for a := range ranges {
			for b := a + 1; b < len(ranges); b++ {
				if ranges[a].Overlaps(ranges[b]) {
					expectConflict = true
				}
			}
			for _, held := range accepted {
				if ranges[a].Overlaps(held) {
					expectConflict = true
				}
			}
		}

		_, err := f.svc.CreateBooking(ctx, CreateBookingInput{MentorID: "mentor-1", MenteeID: "mentee-1", Sessions: ranges})
		if expectConflict {
			assert.ErrorIs(t, err, ErrSlotConflict, "request %d", i)
			continue
		}
		require.NoError(t, err, "request %d", i)
		accepted = append(accepted, ranges...)
	}

	bookings, err := f.repo.ListByMentor(ctx, "mentor-1")
	require.NoError(t, err)
	var held []models.TimeRange
	for _, b := range bookings {
		if b.Status.Holding() {
			held = append(held, b.Ranges()...)
		}
	}
	require.NotEmpty(t, held)
	for a := range held {
		for b := a + 1; b < len(held); b++ {
			assert.False(t, held[a].Overlaps(held[b]), "%s overlaps %s", held[a], held[b])
		}
	}
}
