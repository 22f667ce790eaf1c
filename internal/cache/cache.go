// Package cache stores aggregated search responses keyed by the request
// that produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/dharmasatrya/farescout/internal/models"
)

const DefaultTTL = 5 * time.Minute

type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool)
	Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error
	Close() error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and verifies it answers. The client is
// shared by the response cache and the usage counter.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, eris.Wrapf(err, "redis: ping %s", cfg.Addr)
	}
	return client, nil
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if err != nil {
		return nil, false
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return eris.Wrap(err, "cache: encode response")
	}
	return c.client.Set(ctx, Key(req), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryCache keeps responses in process. Entries are stored encoded so
// callers never share mutable state with the cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, req models.SearchRequest) (*models.SearchResponse, bool) {
	key := Key(req)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(e.data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *MemoryCache) Set(_ context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return eris.Wrap(err, "cache: encode response")
	}
	c.mu.Lock()
	c.entries[Key(req)] = memoryEntry{data: data, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(context.Context, models.SearchRequest) (*models.SearchResponse, bool) {
	return nil, false
}

func (c *NoOpCache) Set(context.Context, models.SearchRequest, *models.SearchResponse) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Key hashes every request field that changes the response. Strategy
// order does not matter.
func Key(req models.SearchRequest) string {
	strategies := slices.Clone(req.Strategies)
	slices.Sort(strategies)

	keyData := struct {
		Origin        string
		Destination   string
		DepartureDate string
		ReturnDate    string
		FlexDays      int
		Strategies    []string
		Program       string
		Profile       *models.UserProfile
		Matrix        bool
		Filters       *models.SearchFilters
	}{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		FlexDays:      req.FlexDays,
		Strategies:    strategies,
		Program:       req.Program,
		Profile:       req.Profile,
		Matrix:        req.Matrix,
		Filters:       req.Filters,
	}

	if req.ReturnDate != nil {
		keyData.ReturnDate = *req.ReturnDate
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "farescout:search:" + hex.EncodeToString(hash[:])
}
