package notification

import (
	"context"
	"sync"

	"mentorlink/models"
)

// MemoryPublisher keeps every published event; used by tests and local runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of what was published so far.
func (p *MemoryPublisher) Events() []models.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.BookingEvent(nil), p.events...)
}

// Types returns the published event types in order.
func (p *MemoryPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
