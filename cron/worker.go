package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "mentorlink/database/repository/booking"
	paymentRepo "mentorlink/database/repository/payment"
	"mentorlink/services/payment"
	"mentorlink/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// CompensationWorker retries refunds that failed when a paid booking was cancelled.
type CompensationWorker struct {
	bookings     bookingRepo.BookingRepository
	records      paymentRepo.CompensationRepository
	compensation *payment.Compensation
	scheduler    payment.RetryScheduler
	logger       *zap.Logger
}

func NewCompensationWorker(
	bookings bookingRepo.BookingRepository,
	records paymentRepo.CompensationRepository,
	compensation *payment.Compensation,
	scheduler payment.RetryScheduler,
	logger *zap.Logger,
) *CompensationWorker {
	return &CompensationWorker{
		bookings:     bookings,
		records:      records,
		compensation: compensation,
		scheduler:    scheduler,
		logger:       logger,
	}
}

// HandleCompensationTask is the asynq handler for tasks.TypeCompensationRetry. Returning an error
// lets asynq retry with backoff; SkipRetry drops tasks that can never succeed.
func (w *CompensationWorker) HandleCompensationTask(ctx context.Context, task *asynq.Task) error {
	p, err := tasks.ParseCompensationPayload(task)
	if err != nil {
		w.logger.Error("Dropping compensation task", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	b, err := w.bookings.GetByID(ctx, p.BookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		w.logger.Error("Compensation task for unknown booking", zap.String("bookingID", p.BookingID))
		return fmt.Errorf("booking %s not found: %w", p.BookingID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	return w.compensation.Retry(ctx, p.RecordID, b)
}

// Sweep queues every unresolved record. Records that are already queued are skipped by the
// scheduler, so running it on every start is safe.
func (w *CompensationWorker) Sweep(ctx context.Context) (int, error) {
	records, err := w.records.ListUnresolved(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for i := range records {
		if err := w.scheduler.ScheduleRetry(ctx, &records[i]); err != nil {
			w.logger.Warn("Failed to queue compensation", zap.String("recordID", records[i].ID), zap.Error(err))
			continue
		}
		queued++
	}
	return queued, nil
}

// Start runs the asynq server in the background until ctx is done. Start-up is retried with a
// growing delay because Redis may come up after the API.
func (w *CompensationWorker) Start(ctx context.Context, redisOpt asynq.RedisClientOpt) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{tasks.QueueCompensation: 1},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return time.Duration(n+1) * time.Minute
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCompensationRetry, w.HandleCompensationTask)

	go func() {
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := srv.Start(mux)
			if err == nil {
				w.logger.Info("Compensation worker started")
				if n, err := w.Sweep(ctx); err != nil {
					w.logger.Warn("Compensation sweep failed", zap.Error(err))
				} else if n > 0 {
					w.logger.Info("Queued unresolved compensations", zap.Int("count", n))
				}
				<-ctx.Done()
				srv.Shutdown()
				return
			}
			w.logger.Warn("Compensation worker failed to start",
				zap.Int("attempt", attempt),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt*2) * time.Second):
			}
		}
		w.logger.Error("Compensation worker gave up; failed refunds stay recorded for manual follow-up")
	}()
}
