package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/mastermind/internal/mastermind"
	"github.com/redis/go-redis/v9"
)

type RedisScoreCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisScoreCache ttl 0 => keys never expire.
func NewRedisScoreCache(rdb *redis.Client, ttl time.Duration) *RedisScoreCache {
	return &RedisScoreCache{rdb: rdb, ttl: ttl}
}

func (c *RedisScoreCache) key(k string) string {
	return fmt.Sprintf("score:%s", k)
}

func (c *RedisScoreCache) Put(ctx context.Context, key string, s mastermind.Score) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), b, c.ttl).Err()
}

func (c *RedisScoreCache) Get(ctx context.Context, key string) (mastermind.Score, bool, error) {
	val, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return mastermind.Score{}, false, nil
	}
	if err != nil {
		return mastermind.Score{}, false, err
	}

	var s mastermind.Score
	if err := json.Unmarshal(val, &s); err != nil {
		return mastermind.Score{}, false, fmt.Errorf("decode cached score %q: %w", key, err)
	}
	return s, true, nil
}
