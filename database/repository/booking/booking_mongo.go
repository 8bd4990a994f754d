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

// orderCodeBase keeps order codes well clear of small integers a provider might use for test orders.
const orderCodeBase = 100000

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl  *mongo.Collection
	calendarColl *mongo.Collection
	counterColl  *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{
		bookingColl:  db.Collection("bookings"),
		calendarColl: db.Collection("mentor_calendars"),
		counterColl:  db.Collection("counters"),
	}
}

// NextOrderCode increments the shared order-code sequence.
func (repo *MongoBookingRepo) NextOrderCode(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := repo.counterColl.FindOneAndUpdate(ctx,
		bson.M{"_id": "order_code"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("error allocating order code: %w", err)
	}
	return orderCodeBase + counter.Seq, nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"id": bookingID})
}

// GetByOrderCode retrieves a booking by its payment order code.
func (repo *MongoBookingRepo) GetByOrderCode(ctx context.Context, orderCode int64) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"order_code": orderCode})
}

func (repo *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	return &booking, nil
}

// FindOverlapping returns holding bookings with a non-cancelled session overlapping any of the ranges.
func (repo *MongoBookingRepo) FindOverlapping(ctx context.Context, mentorID string, ranges []models.TimeRange) ([]models.Booking, error) {
	if len(ranges) == 0 {
		return nil, nil
	}
	overlaps := make(bson.A, 0, len(ranges))
	for _, r := range ranges {
		overlaps = append(overlaps, bson.M{
			"sessions": bson.M{"$elemMatch": bson.M{
				"status":     bson.M{"$ne": models.SessionCancelled},
				"start_time": bson.M{"$lt": r.End},
				"end_time":   bson.M{"$gt": r.Start},
			}},
		})
	}
	filter := bson.M{
		"mentor_id": mentorID,
		"status":    bson.M{"$in": models.HoldingStatuses},
		"$or":       overlaps,
	}
	return repo.find(ctx, filter, nil)
}

// ListByMentor returns the mentor's bookings, newest first.
func (repo *MongoBookingRepo) ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error) {
	return repo.find(ctx, bson.M{"mentor_id": mentorID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// ListByMentee returns the mentee's bookings, newest first.
func (repo *MongoBookingRepo) ListByMentee(ctx context.Context, menteeID string) ([]models.Booking, error) {
	return repo.find(ctx, bson.M{"mentee_id": menteeID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := repo.bookingColl.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// SaveTransition writes lifecycle fields guarded by the expected version.
func (repo *MongoBookingRepo) SaveTransition(ctx context.Context, booking *models.Booking, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": booking.ID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"status":        booking.Status,
			"sessions":      booking.Sessions,
			"cancel_reason": booking.CancelReason,
			"cancelled_by":  booking.CancelledBy,
		},
		"$max": bson.M{"updated_at": booking.UpdatedAt},
		"$inc": bson.M{"version": 1},
	}
	res, err := repo.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", booking.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	booking.Version = expectedVersion + 1
	return nil
}

// findOneAndUpdate applies a conditional update and returns the document after it.
func (repo *MongoBookingRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	if err := repo.bookingColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating booking: %w", err)
	}
	return &booking, nil
}
