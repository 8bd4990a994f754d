package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VerifiedPaymentEvent is an authenticated, normalized payment notification.
type VerifiedPaymentEvent struct {
	OrderCode     int64           `json:"orderCode"`
	Amount        decimal.Decimal `json:"amount"`
	ProviderCode  string          `json:"code"`
	Status        string          `json:"status"`
	PaymentLinkID string          `json:"paymentLinkId,omitempty"`
	Success       *bool           `json:"success,omitempty"`
	Signature     string          `json:"-"`
}

// ReconciliationResult is what the webhook endpoint reports back to the provider.
type ReconciliationResult struct {
	OK        bool   `json:"ok"`
	Paid      bool   `json:"paid"`
	Note      string `json:"note,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
}

// PaymentEvent is the audit record of one webhook delivery.
type PaymentEvent struct {
	ID            string    `bson:"id" json:"id"`
	OrderCode     int64     `bson:"order_code" json:"order_code"`
	Amount        string    `bson:"amount" json:"amount"`
	ProviderCode  string    `bson:"provider_code" json:"provider_code"`
	Status        string    `bson:"status" json:"status"`
	PaymentLinkID string    `bson:"payment_link_id,omitempty" json:"payment_link_id,omitempty"`
	BookingID     string    `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	Paid          bool      `bson:"paid" json:"paid"`
	Note          string    `bson:"note,omitempty" json:"note,omitempty"`
	NeedsReview   bool      `bson:"needs_review" json:"needs_review"`
	ReceivedAt    time.Time `bson:"received_at" json:"received_at"`
}

// CompensationRecord tracks a refund or link cancellation that failed after a paid booking was cancelled.
type CompensationRecord struct {
	ID            string     `bson:"id" json:"id"`
	BookingID     string     `bson:"booking_id" json:"booking_id"`
	OrderCode     int64      `bson:"order_code" json:"order_code"`
	PaymentLinkID string     `bson:"payment_link_id,omitempty" json:"payment_link_id,omitempty"`
	Amount        int64      `bson:"amount" json:"amount"`
	Error         string     `bson:"error" json:"error"`
	Resolved      bool       `bson:"resolved" json:"resolved"`
	ResolvedAt    *time.Time `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
}
