package paymentRepo

import (
	"context"
	"errors"
	"time"

	"mentorlink/models"
)

// PaymentEventRepository is the append-only audit log of webhook deliveries.
type PaymentEventRepository interface {
	Record(ctx context.Context, event *models.PaymentEvent) error
	ListByOrderCode(ctx context.Context, orderCode int64) ([]models.PaymentEvent, error)
	ListNeedingReview(ctx context.Context) ([]models.PaymentEvent, error)
}

// CompensationRepository stores refunds that could not be completed automatically.
type CompensationRepository interface {
	Save(ctx context.Context, record *models.CompensationRecord) error
	ListUnresolved(ctx context.Context) ([]models.CompensationRecord, error)
	// MarkResolved closes a record; an already resolved or unknown record is ErrCompensationNotFound.
	MarkResolved(ctx context.Context, id string, at time.Time) error
}

var ErrCompensationNotFound = errors.New("unresolved compensation record not found")
