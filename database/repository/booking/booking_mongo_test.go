package bookingRepo

import (
	"context"
	"testing"

	"mentorlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func toDoc(t *testing.T, v interface{}) bson.D {
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestMongoBookingRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		stored := newBooking("b1", 100001, hours(0, 2))
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.bookings", mtest.FirstBatch, toDoc(t, stored)))

		got, err := repo.GetByID(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, "b1", got.ID)
		assert.EqualValues(t, 100001, got.OrderCode)
		assert.Len(t, got.Sessions, 1)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.bookings", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("save transition version conflict", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		b := newBooking("b1", 100001, hours(0, 1))
		err := repo.SaveTransition(context.Background(), b, 3)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	mt.Run("save transition bumps version", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		b := newBooking("b1", 100001, hours(0, 1))
		require.NoError(t, repo.SaveTransition(context.Background(), b, 3))
		assert.EqualValues(t, 4, b.Version)
	})

	mt.Run("confirm payment", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		paid := newBooking("b1", 100001, hours(0, 1))
		paid.Status = models.BookingConfirmed
		paid.PaymentStatus = models.PaymentPaid
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: toDoc(t, paid)},
		})

		got, err := repo.ConfirmPayment(context.Background(), 100001, 250000, "link", base)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	})

	mt.Run("confirm payment no match", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		_, err := repo.ConfirmPayment(context.Background(), 100001, 1, "", base)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("next order code", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "_id", Value: "order_code"}, {Key: "seq", Value: int64(7)}}},
		})

		code, err := repo.NextOrderCode(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, orderCodeBase+7, code)
	})
}
