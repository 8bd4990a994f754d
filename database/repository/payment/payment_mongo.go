package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"mentorlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPaymentEventRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentEventRepo(db *mongo.Database) *MongoPaymentEventRepo {
	return &MongoPaymentEventRepo{coll: db.Collection("payment_events")}
}

func (repo *MongoPaymentEventRepo) Record(ctx context.Context, event *models.PaymentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("error recording payment event for order %d: %w", event.OrderCode, err)
	}
	return nil
}

func (repo *MongoPaymentEventRepo) ListByOrderCode(ctx context.Context, orderCode int64) ([]models.PaymentEvent, error) {
	return repo.find(ctx, bson.M{"order_code": orderCode})
}

func (repo *MongoPaymentEventRepo) ListNeedingReview(ctx context.Context) ([]models.PaymentEvent, error) {
	return repo.find(ctx, bson.M{"needs_review": true})
}

func (repo *MongoPaymentEventRepo) find(ctx context.Context, filter bson.M) ([]models.PaymentEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "received_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding payment events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.PaymentEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding payment events: %w", err)
	}
	return events, nil
}

func (repo *MongoPaymentEventRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_code", Value: 1}, {Key: "received_at", Value: 1}},
			Options: options.Index().SetName("order_received_idx"),
		},
		{
			Keys:    bson.D{{Key: "needs_review", Value: 1}},
			Options: options.Index().SetName("needs_review_idx"),
		},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create payment event indexes: %w", err)
	}
	return nil
}

type MongoCompensationRepo struct {
	coll *mongo.Collection
}

func NewMongoCompensationRepo(db *mongo.Database) *MongoCompensationRepo {
	return &MongoCompensationRepo{coll: db.Collection("compensations")}
}

func (repo *MongoCompensationRepo) Save(ctx context.Context, record *models.CompensationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("error saving compensation for booking %s: %w", record.BookingID, err)
	}
	return nil
}

func (repo *MongoCompensationRepo) ListUnresolved(ctx context.Context) ([]models.CompensationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"resolved": false})
	if err != nil {
		return nil, fmt.Errorf("error finding compensations: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.CompensationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding compensations: %w", err)
	}
	return records, nil
}

func (repo *MongoCompensationRepo) MarkResolved(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "resolved": false}
	update := bson.M{"$set": bson.M{"resolved": true, "resolved_at": at}}
	result, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error resolving compensation %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrCompensationNotFound
	}
	return nil
}
