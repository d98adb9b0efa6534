package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolution results, misses included, keyed by normalized
// ISBN. Entries are never evicted; cardinality is bounded by the distinct
// ISBNs the process sees.
type Cache interface {
	Get(ctx context.Context, isbn string) (Result, bool, error)
	Set(ctx context.Context, isbn string, res Result) error
}

// MemoryCache keeps results in-process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewMemoryCache initializes an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Result)}
}

func (c *MemoryCache) Get(_ context.Context, isbn string) (Result, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[isbn]
	return res, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, isbn string, res Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[isbn] = res
	return nil
}

// RedisCache shares results across processes via Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects a cache to the given Redis address.
func NewRedisCache(addr, password string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		prefix: "metadata:isbn:",
	}
}

func (c *RedisCache) Get(ctx context.Context, isbn string) (Result, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+isbn).Result()
	if err == redis.Nil {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, false, fmt.Errorf("decode cached metadata: %w", err)
	}
	return res, true, nil
}

func (c *RedisCache) Set(ctx context.Context, isbn string, res Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+isbn, raw, 0).Err()
}
