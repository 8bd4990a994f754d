package mentorRepo

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

type MongoMentorRepo struct {
	coll *mongo.Collection
}

func NewMongoMentorRepo(db *mongo.Database) *MongoMentorRepo {
	return &MongoMentorRepo{coll: db.Collection("mentors")}
}

func (repo *MongoMentorRepo) GetByID(ctx context.Context, mentorID string) (*models.Mentor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var mentor models.Mentor
	if err := repo.coll.FindOne(ctx, bson.M{"id": mentorID}).Decode(&mentor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("error fetching mentor %s: %w", mentorID, err)
	}
	return &mentor, nil
}

func (repo *MongoMentorRepo) Upsert(ctx context.Context, mentor *models.Mentor) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.ReplaceOne(ctx, bson.M{"id": mentor.ID}, mentor, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving mentor %s: %w", mentor.ID, err)
	}
	return nil
}

// EnsureIndexes creates the unique id index on mentors.
func (repo *MongoMentorRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_mentor_id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create mentor indexes: %w", err)
	}
	return nil
}
