package labeltext

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps fetched label sections in Redis so repeated medication creates
// do not hammer the provider. Nil-safe: a nil cache misses and drops writes.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redisClient *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{redis: redisClient, ttl: ttl}
}

func (c *Cache) key(medName string) string {
	return "label:" + strings.ToLower(strings.TrimSpace(medName))
}

// Get returns the cached sections, or nil on a miss.
func (c *Cache) Get(ctx context.Context, medName string) (*Sections, error) {
	if c == nil || c.redis == nil {
		return nil, nil
	}
	data, err := c.redis.Get(ctx, c.key(medName)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("labeltext: cache get: %w", err)
	}
	var s Sections
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("labeltext: cache decode: %w", err)
	}
	return &s, nil
}

func (c *Cache) Put(ctx context.Context, medName string, s *Sections) error {
	if c == nil || c.redis == nil || s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("labeltext: cache encode: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(medName), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("labeltext: cache set: %w", err)
	}
	return nil
}
