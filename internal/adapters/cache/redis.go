package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gatherly/internal/domain"
)

type redisEventCache struct {
	client *redis.Client
}

// NewRedisEventCache returns an EventCache backed by the given Redis client.
func NewRedisEventCache(client *redis.Client) domain.EventCache {
	return &redisEventCache{client: client}
}

func eventKey(eventID string) string {
	return fmt.Sprintf("event:%s", eventID)
}

func (c *redisEventCache) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	data, err := c.client.Get(ctx, eventKey(eventID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	event := &domain.Event{}
	if err := json.Unmarshal(data, event); err != nil {
		// A corrupt entry is treated as a miss; the writer will replace it.
		return nil, nil
	}
	return event, nil
}

func (c *redisEventCache) Set(ctx context.Context, event *domain.Event, ttl time.Duration) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, eventKey(event.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *redisEventCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, eventKey(eventID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
