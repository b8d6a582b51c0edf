package trivia

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 30 * time.Minute

// Cache persists a fetched question batch in Redis so a restart (or a
// sibling process) can warm its pool without hitting the upstream API.
type Cache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewCache(client *redis.Client, key string, ttl time.Duration) *Cache {
	if key == "" {
		key = "trivia:pool"
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, key: key, ttl: ttl}
}

// Get returns the cached batch, or nil when absent.
func (c *Cache) Get(ctx context.Context) ([]QA, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var qas []QA
	if err := json.Unmarshal(data, &qas); err != nil {
		return nil, err
	}
	return qas, nil
}

// Set stores a batch with the configured TTL.
func (c *Cache) Set(ctx context.Context, qas []QA) error {
	data, err := json.Marshal(qas)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}
