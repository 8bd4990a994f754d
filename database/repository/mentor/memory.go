package mentorRepo

import (
	"context"
	"sync"

	"mentorlink/models"
)

type MemoryMentorRepo struct {
	mu      sync.RWMutex
	mentors map[string]models.Mentor
}

func NewMemoryMentorRepo(seed ...models.Mentor) *MemoryMentorRepo {
	repo := &MemoryMentorRepo{mentors: make(map[string]models.Mentor)}
	for _, m := range seed {
		repo.mentors[m.ID] = m
	}
	return repo
}

func (m *MemoryMentorRepo) GetByID(_ context.Context, mentorID string) (*models.Mentor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mentor, ok := m.mentors[mentorID]
	if !ok {
		return nil, ErrMentorNotFound
	}
	return &mentor, nil
}

func (m *MemoryMentorRepo) Upsert(_ context.Context, mentor *models.Mentor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mentors[mentor.ID] = *mentor
	return nil
}
