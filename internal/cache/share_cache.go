package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stocksage/internal/model"
)

// ShareCache stores shared records in Redis. Expiry is delegated to Redis key
// TTLs, so no sweeping is needed for this backend.
type ShareCache struct {
	client    *redisv9.Client
	keyPrefix string
	now       func() time.Time
}

func NewShareCache(client *redisv9.Client, keyPrefix string) *ShareCache {
	if keyPrefix == "" {
		keyPrefix = "share:"
	}
	return &ShareCache{
		client:    client,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (c *ShareCache) Put(ctx context.Context, record *model.SharedRecord) error {
	var ttl time.Duration
	if !record.ExpiresAt.IsZero() {
		ttl = record.ExpiresAt.Sub(c.now())
		if ttl <= 0 {
			return nil
		}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal shared record failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(record.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set shared record failed: %w", err)
	}
	return nil
}

func (c *ShareCache) Get(ctx context.Context, id string) (*model.SharedRecord, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get shared record failed: %w", err)
	}

	var record model.SharedRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("unmarshal shared record failed: %w", err)
	}
	return &record, nil
}

func (c *ShareCache) key(id string) string {
	return c.keyPrefix + id
}
