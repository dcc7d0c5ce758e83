package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"congress-trade-lab/internal/ingestion"
)

// Cache stores raw source pages between runs.
type Cache interface {
	// Get returns the cached value. ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryCache is an in-process Cache with per-entry expiry.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// WithClock sets the time source used for expiry.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set implements Cache. A non-positive ttl stores without expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedSource serves pages from a Cache, falling through to the wrapped
// source on a miss or cache error. Only successful fetches are stored.
type CachedSource struct {
	source ingestion.Source
	cache  Cache
	ttl    time.Duration
	prefix string
}

var _ ingestion.Source = (*CachedSource)(nil)

// NewCachedSource wraps source with cache.
func NewCachedSource(source ingestion.Source, cache Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, cache: cache, ttl: ttl, prefix: "congress-trades:raw:"}
}

// Name implements ingestion.Source.
func (s *CachedSource) Name() string {
	return s.source.Name()
}

// Key returns the cache key for a page.
func (s *CachedSource) Key(page int) string {
	return s.prefix + s.source.Name() + ":" + strconv.Itoa(page)
}

// Fetch implements ingestion.Source.
func (s *CachedSource) Fetch(ctx context.Context, page int) ([]ingestion.RawRecord, error) {
	key := s.Key(page)

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		if records, err := DecodeRecords(data); err == nil {
			return records, nil
		}
	}

	records, err := s.source.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []ingestion.RawRecord{}
	}
	if data, err := json.Marshal(records); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttl)
	}
	return records, nil
}
