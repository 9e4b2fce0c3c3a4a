package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"minerva/internal/domain/query"
	"minerva/pkg/errors"
)

// IntentCache stores intent resolutions in Redis with a bounded TTL, so
// identical raw text does not trigger duplicate billable classify calls.
type IntentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIntentCache creates a new intent resolution cache
func NewIntentCache(client *redis.Client, ttl time.Duration) *IntentCache {
	return &IntentCache{client: client, ttl: ttl}
}

// Get retrieves a cached resolution for the raw text
func (c *IntentCache) Get(ctx context.Context, rawText string) (*query.Resolution, error) {
	key := c.key(rawText)

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.Wrap(errors.ErrNotFound, "intent resolution not cached")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get intent resolution from redis")
	}

	var res query.Resolution
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, errors.Wrap(err, "unmarshal cached intent resolution")
	}

	return &res, nil
}

// Save stores a resolution with the configured TTL
func (c *IntentCache) Save(ctx context.Context, rawText string, res query.Resolution) error {
	data, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "marshal intent resolution")
	}

	if err := c.client.Set(ctx, c.key(rawText), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "save intent resolution to redis")
	}

	return nil
}

// key hashes the raw text so arbitrary-length queries map to bounded keys.
func (c *IntentCache) key(rawText string) string {
	sum := sha256.Sum256([]byte(rawText))
	return "intent:" + hex.EncodeToString(sum[:])
}
