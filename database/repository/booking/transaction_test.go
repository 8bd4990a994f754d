package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func writeConflict() error {
	return fmt.Errorf("error reserving calendar holds: %w", mongo.CommandError{
		Code:   112,
		Name:   "WriteConflict",
		Labels: []string{labelTransientTxn},
	})
}

func TestRetryTransientRerunsWriteConflicts(t *testing.T) {
	calls := 0
	err := retryTransient(context.Background(), maxTxnAttempts, func() error {
		calls++
		if calls < 2 {
			return writeConflict()
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryTransientGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := retryTransient(context.Background(), maxTxnAttempts, func() error {
		calls++
		return writeConflict()
	})
	assert.Equal(t, maxTxnAttempts, calls)
	assert.True(t, hasErrorLabel(err, labelTransientTxn))
}

func TestRetryTransientStopsOnOtherErrors(t *testing.T) {
	calls := 0
	err := retryTransient(context.Background(), maxTxnAttempts, func() error {
		calls++
		return ErrSlotTaken
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.False(t, hasErrorLabel(err, labelTransientTxn))
	assert.False(t, hasErrorLabel(errors.New("plain"), labelTransientTxn))
}

func TestRetryTransientRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_ = retryTransient(ctx, maxTxnAttempts, func() error {
		calls++
		return writeConflict()
	})
	assert.Equal(t, 1, calls)
}
