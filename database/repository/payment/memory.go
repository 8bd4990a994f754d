package paymentRepo

import (
	"context"
	"sync"
	"time"

	"mentorlink/models"
)

type MemoryPaymentEventRepo struct {
	mu     sync.Mutex
	events []models.PaymentEvent
}

func NewMemoryPaymentEventRepo() *MemoryPaymentEventRepo {
	return &MemoryPaymentEventRepo{}
}

func (m *MemoryPaymentEventRepo) Record(_ context.Context, event *models.PaymentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *MemoryPaymentEventRepo) ListByOrderCode(_ context.Context, orderCode int64) ([]models.PaymentEvent, error) {
	return m.filter(func(e models.PaymentEvent) bool { return e.OrderCode == orderCode }), nil
}

func (m *MemoryPaymentEventRepo) ListNeedingReview(_ context.Context) ([]models.PaymentEvent, error) {
	return m.filter(func(e models.PaymentEvent) bool { return e.NeedsReview }), nil
}

func (m *MemoryPaymentEventRepo) filter(keep func(models.PaymentEvent) bool) []models.PaymentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentEvent
	for _, e := range m.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

type MemoryCompensationRepo struct {
	mu      sync.Mutex
	records []models.CompensationRecord
}

func NewMemoryCompensationRepo() *MemoryCompensationRepo {
	return &MemoryCompensationRepo{}
}

func (m *MemoryCompensationRepo) Save(_ context.Context, record *models.CompensationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	return nil
}

func (m *MemoryCompensationRepo) ListUnresolved(_ context.Context) ([]models.CompensationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CompensationRecord
	for _, r := range m.records {
		if !r.Resolved {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryCompensationRepo) MarkResolved(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id && !m.records[i].Resolved {
			m.records[i].Resolved = true
			resolvedAt := at
			m.records[i].ResolvedAt = &resolvedAt
			return nil
		}
	}
	return ErrCompensationNotFound
}
