package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mentorlink/models"

	"github.com/hibiken/asynq"
)

const (
	TypeCompensationRetry = "compensation:retry"
	QueueCompensation     = "compensation"

	compensationMaxRetry = 10
	compensationDelay    = time.Minute
)

// CompensationPayload identifies the record and booking a retry works on.
type CompensationPayload struct {
	RecordID  string `json:"recordId"`
	BookingID string `json:"bookingId"`
}

// NewCompensationRetryTask builds the task for one record. The task id is derived from the record
// so the same record is never queued twice.
func NewCompensationRetryTask(record *models.CompensationRecord, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(CompensationPayload{RecordID: record.ID, BookingID: record.BookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCompensationRetry, b)
	opts := []asynq.Option{
		asynq.TaskID("compensation-" + record.ID),
		asynq.Queue(QueueCompensation),
		asynq.MaxRetry(compensationMaxRetry),
		asynq.ProcessIn(delay),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// ParseCompensationPayload decodes and checks a task payload.
func ParseCompensationPayload(task *asynq.Task) (CompensationPayload, error) {
	var p CompensationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid compensation payload: %w", err)
	}
	if p.RecordID == "" || p.BookingID == "" {
		return p, errors.New("compensation payload missing record or booking id")
	}
	return p, nil
}

// AsynqScheduler queues compensation retries on the Redis-backed task queue.
type AsynqScheduler struct {
	client *asynq.Client
	delay  time.Duration
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client, delay: compensationDelay}
}

// ScheduleRetry enqueues the record. A record that is already queued is not an error.
func (s *AsynqScheduler) ScheduleRetry(ctx context.Context, record *models.CompensationRecord) error {
	task, opts, err := NewCompensationRetryTask(record, s.delay)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue compensation retry for %s: %w", record.ID, err)
	}
	return nil
}

func (s *AsynqScheduler) Close() error {
	return s.client.Close()
}
