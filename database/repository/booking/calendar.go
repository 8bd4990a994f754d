package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// holdsFor builds one hold per session of the booking.
func holdsFor(booking *models.Booking) []models.SlotHold {
	holds := make([]models.SlotHold, 0, len(booking.Sessions))
	for i, s := range booking.Sessions {
		holds = append(holds, models.SlotHold{
			BookingID:    booking.ID,
			SessionIndex: i,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
		})
	}
	return holds
}

// overlapClause matches a calendar holding any hold that overlaps r.
func overlapClause(r models.TimeRange) bson.M {
	return bson.M{"holds": bson.M{"$elemMatch": bson.M{
		"start_time": bson.M{"$lt": r.End},
		"end_time":   bson.M{"$gt": r.Start},
	}}}
}

// reserveHolds pushes the holds in one conditional update. The filter only matches a calendar with
// no overlapping hold; when it does not match, the upsert collides with the unique mentor_id index.
func (repo *MongoBookingRepo) reserveHolds(ctx context.Context, mentorID string, holds []models.SlotHold, at time.Time) error {
	nor := make(bson.A, 0, len(holds))
	for _, h := range holds {
		nor = append(nor, overlapClause(models.TimeRange{Start: h.StartTime, End: h.EndTime}))
	}
	filter := bson.M{"mentor_id": mentorID, "$nor": nor}
	update := bson.M{
		"$push": bson.M{"holds": bson.M{"$each": holds}},
		"$max":  bson.M{"updated_at": at},
	}
	res, err := repo.calendarColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error reserving calendar holds: %w", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrSlotTaken
	}
	return nil
}

// conflictingHold finds the first stored hold overlapping any of the ranges.
func (repo *MongoBookingRepo) conflictingHold(ctx context.Context, mentorID string, ranges []models.TimeRange) (*models.TimeRange, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cal models.MentorCalendar
	err := repo.calendarColl.FindOne(ctx, bson.M{"mentor_id": mentorID}).Decode(&cal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading mentor calendar: %w", err)
	}
	for _, r := range ranges {
		for _, h := range cal.Holds {
			held := models.TimeRange{Start: h.StartTime, End: h.EndTime}
			if held.Overlaps(r) {
				return &held, nil
			}
		}
	}
	return nil, nil
}

// ReleaseHolds pulls the booking's holds off the mentor calendar.
func (repo *MongoBookingRepo) ReleaseHolds(ctx context.Context, mentorID, bookingID string, sessionIndexes []int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	match := bson.M{"booking_id": bookingID}
	if sessionIndexes != nil {
		match["session_index"] = bson.M{"$in": sessionIndexes}
	}
	update := bson.M{
		"$pull": bson.M{"holds": match},
		"$max":  bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := repo.calendarColl.UpdateOne(ctx, bson.M{"mentor_id": mentorID}, update); err != nil {
		return fmt.Errorf("error releasing holds for booking %s: %w", bookingID, err)
	}
	return nil
}
