package mentorRepo

import (
	"context"
	"encoding/json"
	"time"

	"mentorlink/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const mentorCachePrefix = "mentor:rate:"

// CachedMentorRepo reads mentors through Redis. Cache errors are logged and treated as misses.
type CachedMentorRepo struct {
	inner  MentorRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedMentorRepo(inner MentorRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedMentorRepo {
	return &CachedMentorRepo{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedMentorRepo) GetByID(ctx context.Context, mentorID string) (*models.Mentor, error) {
	key := mentorCachePrefix + mentorID
	if c.cache != nil {
		raw, err := c.cache.Get(ctx, key).Bytes()
		if err == nil {
			var mentor models.Mentor
			if jsonErr := json.Unmarshal(raw, &mentor); jsonErr == nil {
				return &mentor, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("Mentor cache read failed, falling back to store", zap.String("mentorID", mentorID), zap.Error(err))
		}
	}

	mentor, err := c.inner.GetByID(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if raw, err := json.Marshal(mentor); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("Mentor cache write failed", zap.String("mentorID", mentorID), zap.Error(err))
			}
		}
	}
	return mentor, nil
}

// Upsert writes through and drops the cached copy so the next read sees the new rate.
func (c *CachedMentorRepo) Upsert(ctx context.Context, mentor *models.Mentor) error {
	if err := c.inner.Upsert(ctx, mentor); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Del(ctx, mentorCachePrefix+mentor.ID).Err(); err != nil {
			c.logger.Warn("Mentor cache invalidation failed", zap.String("mentorID", mentor.ID), zap.Error(err))
		}
	}
	return nil
}
