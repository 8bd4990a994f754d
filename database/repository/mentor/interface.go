package mentorRepo

import (
	"context"
	"errors"

	"mentorlink/models"
)

var ErrMentorNotFound = errors.New("mentor not found")

// MentorRepository is the source of mentor hourly rates.
type MentorRepository interface {
	GetByID(ctx context.Context, mentorID string) (*models.Mentor, error)
	Upsert(ctx context.Context, mentor *models.Mentor) error
}
