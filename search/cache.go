package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"shopify-feed/internal/types"
)

// Cache stores search results by key
type Cache interface {
	Get(ctx context.Context, key string) ([]types.SearchResult, error)
	Set(ctx context.Context, key string, results []types.SearchResult, ttl time.Duration) error
}

type cacheItem struct {
	Results    []types.SearchResult
	Expiration time.Time
}

// MemoryCache is a goroutine-safe in-memory cache with TTL support
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]cacheItem)}
}

// Get retrieves results from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]types.SearchResult, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.Expiration) {
		return nil, types.ErrCacheMiss
	}

	out := make([]types.SearchResult, len(item.Results))
	copy(out, item.Results)
	return out, nil
}

// Set stores results with TTL; expired entries are swept on write
func (c *MemoryCache) Set(ctx context.Context, key string, results []types.SearchResult, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for k, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, k)
		}
	}

	stored := make([]types.SearchResult, len(results))
	copy(stored, results)
	c.data[key] = cacheItem{Results: stored, Expiration: now.Add(ttl)}
	return nil
}

// Size returns the current number of items in the cache
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// RedisCache stores results as JSON strings in Redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the Redis server at rawURL
func NewRedisCache(ctx context.Context, rawURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client, prefix: "feed:search:"}, nil
}

// Get retrieves results from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]types.SearchResult, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, types.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var results []types.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, types.ErrCacheMiss
	}
	return results, nil
}

// Set stores results in Redis with TTL
func (c *RedisCache) Set(ctx context.Context, key string, results []types.SearchResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedSearcher consults a cache before asking the wrapped searcher
type CachedSearcher struct {
	next   Searcher
	cache  Cache
	ttl    time.Duration
	logger types.Logger
}

// NewCachedSearcher wraps next with cache
func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration, logger types.Logger) *CachedSearcher {
	return &CachedSearcher{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Search returns cached results when present, otherwise queries and stores them.
// Empty result sets are not cached.
func (s *CachedSearcher) Search(ctx context.Context, query string, num int) ([]types.SearchResult, error) {
	key := fmt.Sprintf("%d:%s", num, strings.ToLower(strings.TrimSpace(query)))

	results, err := s.cache.Get(ctx, key)
	if err == nil {
		s.logger.Debugf("Search cache hit for %q", query)
		return results, nil
	}
	if !errors.Is(err, types.ErrCacheMiss) {
		s.logger.Warnf("Search cache read failed: %v", err)
	}

	results, err = s.next.Search(ctx, query, num)
	if err != nil {
		return nil, err
	}

	if len(results) > 0 {
		if err := s.cache.Set(ctx, key, results, s.ttl); err != nil {
			s.logger.Warnf("Search cache write failed: %v", err)
		}
	}
	return results, nil
}
