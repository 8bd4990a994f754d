package bookingRepo

import (
	"context"
	"time"

	"mentorlink/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ConfirmPayment matches on order code AND amount; the order code alone is never enough.
// Re-applying the same confirmation rewrites identical values, so repeats are harmless.
func (repo *MongoBookingRepo) ConfirmPayment(ctx context.Context, orderCode, amount int64, paymentLinkID string, at time.Time) (*models.Booking, error) {
	filter := bson.M{
		"order_code": orderCode,
		"price":      amount,
		"status":     bson.M{"$in": models.HoldingStatuses},
	}
	set := bson.M{
		"payment_status": models.PaymentPaid,
		"status":         models.BookingConfirmed,
	}
	if paymentLinkID != "" {
		set["payment_link_id"] = paymentLinkID
	}
	update := bson.M{
		"$set": set,
		"$max": bson.M{"updated_at": at},
		"$inc": bson.M{"version": 1},
	}
	return repo.findOneAndUpdate(ctx, filter, update)
}

// MarkPaymentFailed never touches a PAID booking, so a stale failure cannot regress a success.
func (repo *MongoBookingRepo) MarkPaymentFailed(ctx context.Context, orderCode int64, at time.Time) (*models.Booking, error) {
	filter := bson.M{
		"order_code":     orderCode,
		"payment_status": bson.M{"$ne": models.PaymentPaid},
	}
	update := bson.M{
		"$set": bson.M{"payment_status": models.PaymentFailed},
		"$max": bson.M{"updated_at": at},
		"$inc": bson.M{"version": 1},
	}
	return repo.findOneAndUpdate(ctx, filter, update)
}

// RecordLatePayment marks a cancelled booking as paid so the refund can be issued.
func (repo *MongoBookingRepo) RecordLatePayment(ctx context.Context, orderCode, amount int64, paymentLinkID string, at time.Time) (*models.Booking, error) {
	filter := bson.M{
		"order_code":     orderCode,
		"price":          amount,
		"status":         models.BookingCancelled,
		"payment_status": bson.M{"$ne": models.PaymentPaid},
	}
	set := bson.M{"payment_status": models.PaymentPaid}
	if paymentLinkID != "" {
		set["payment_link_id"] = paymentLinkID
	}
	update := bson.M{
		"$set": set,
		"$max": bson.M{"updated_at": at},
		"$inc": bson.M{"version": 1},
	}
	return repo.findOneAndUpdate(ctx, filter, update)
}
