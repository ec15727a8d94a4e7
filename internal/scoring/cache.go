package scoring

import (
	"context"
	"sync"

	"example.com/mastermind/internal/mastermind"
)

// ScoreCache memoizes scores of valid (secret, guess) pairs. Scoring is
// pure, so entries never go stale.
type ScoreCache interface {
	Get(ctx context.Context, key string) (mastermind.Score, bool, error)
	Put(ctx context.Context, key string, s mastermind.Score) error
}

// Layer is a named cache tier; lookups go through layers in order.
type Layer struct {
	Name  string
	Cache ScoreCache
}

func Key(secret, guess mastermind.Sequence) string {
	return secret.String() + "|" + guess.String()
}

const DefaultMemoryEntries = 10000

type InMemoryScoreCache struct {
	mu  sync.Mutex
	m   map[string]mastermind.Score
	max int
}

func NewInMemoryScoreCache(maxEntries int) *InMemoryScoreCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &InMemoryScoreCache{
		m:   make(map[string]mastermind.Score),
		max: maxEntries,
	}
}

func (c *InMemoryScoreCache) Get(_ context.Context, key string) (mastermind.Score, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.m[key]
	return s, ok, nil
}

func (c *InMemoryScoreCache) Put(_ context.Context, key string, s mastermind.Score) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.m[key]; !ok && len(c.m) >= c.max {
		// evict an arbitrary entry
		for k := range c.m {
			delete(c.m, k)
			break
		}
	}
	c.m[key] = s
	return nil
}

func (c *InMemoryScoreCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
