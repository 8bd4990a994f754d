package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorlink/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateWithHolds inserts the booking and reserves its sessions on the mentor calendar in one
// transaction. Either both writes land or neither does.
func (repo *MongoBookingRepo) CreateWithHolds(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sess, err := repo.bookingColl.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if err := repo.reserveHolds(sc, booking.MentorID, holdsFor(booking), booking.UpdatedAt); err != nil {
			return err
		}
		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateOrderCode
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	err = retryTransient(ctx, maxTxnAttempts, func() error {
		return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			if err := sc.StartTransaction(); err != nil {
				return err
			}
			if err := txnFn(sc); err != nil {
				_ = sc.AbortTransaction(sc)
				return err
			}
			return commitWithRetry(sc, maxTxnAttempts)
		})
	})
	if hasErrorLabel(err, labelTransientTxn) {
		// Another writer kept touching this mentor's calendar; report it as a taken slot.
		err = fmt.Errorf("%w: %v", ErrSlotTaken, err)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSlotTaken) {
		held, lookupErr := repo.conflictingHold(ctx, booking.MentorID, booking.Ranges())
		if lookupErr != nil {
			return fmt.Errorf("slot taken, conflict lookup failed: %w", lookupErr)
		}
		if held == nil {
			// The blocking hold was released between the failed write and the lookup.
			return &SlotTakenError{Conflict: booking.Sessions[0].Range()}
		}
		return &SlotTakenError{Conflict: *held}
	}
	if errors.Is(err, ErrDuplicateOrderCode) {
		return ErrDuplicateOrderCode
	}
	return fmt.Errorf("booking transaction failed: %w", err)
}

const (
	maxTxnAttempts           = 3
	labelTransientTxn        = "TransientTransactionError"
	labelUnknownCommitResult = "UnknownTransactionCommitResult"
)

func hasErrorLabel(err error, label string) bool {
	var labeled mongo.LabeledError
	return errors.As(err, &labeled) && labeled.HasErrorLabel(label)
}

// retryTransient reruns fn while it fails with a TransientTransactionError label.
func retryTransient(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if !hasErrorLabel(err, labelTransientTxn) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func commitWithRetry(sc mongo.SessionContext, attempts int) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = sc.CommitTransaction(sc)
		if !hasErrorLabel(err, labelUnknownCommitResult) || sc.Err() != nil {
			return err
		}
	}
	return err
}
