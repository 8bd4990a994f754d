package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the booking and calendar queries rely on.
// The unique mentor_id index on mentor_calendars is what turns a lost reservation race into a conflict.
func (repo *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_booking_id"),
		},
		{
			Keys:    bson.D{{Key: "order_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_order_code"),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("mentor_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "mentee_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("mentee_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "sessions.start_time", Value: 1}},
			Options: options.Index().SetName("mentor_status_session_idx"),
		},
	}
	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	calendarIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_mentor_calendar"),
		},
	}
	if _, err := repo.calendarColl.Indexes().CreateMany(ctx, calendarIndexes); err != nil {
		return fmt.Errorf("failed to create calendar indexes: %w", err)
	}
	return nil
}
