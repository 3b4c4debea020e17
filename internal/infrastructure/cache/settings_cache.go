package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nextstock/backend/internal/domain/settings"
)

const settingsKeyPrefix = "settings:store:"

// RedisSettingsCache caches per-store settings in Redis. A cache miss
// returns (nil, nil) so the caller falls through to the repository.
type RedisSettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSettingsCache creates a Redis-backed settings cache
func NewRedisSettingsCache(client *redis.Client, ttl time.Duration) *RedisSettingsCache {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &RedisSettingsCache{client: client, ttl: ttl}
}

func settingsKey(storeID uuid.UUID) string {
	return settingsKeyPrefix + storeID.String()
}

// Get returns the cached settings for a store, nil on a miss
func (c *RedisSettingsCache) Get(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	data, err := c.client.Get(ctx, settingsKey(storeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read settings cache: %w", err)
	}

	var s settings.StoreSettings
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt entry behaves like a miss; the next Set repairs it.
		return nil, nil
	}
	return &s, nil
}

// Set caches the settings for a store
func (c *RedisSettingsCache) Set(ctx context.Context, s *settings.StoreSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := c.client.Set(ctx, settingsKey(s.StoreID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write settings cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached settings for a store
func (c *RedisSettingsCache) Invalidate(ctx context.Context, storeID uuid.UUID) error {
	if err := c.client.Del(ctx, settingsKey(storeID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate settings cache: %w", err)
	}
	return nil
}

// InMemorySettingsCache is a process-local settings cache for
// single-instance deployments and tests
type InMemorySettingsCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]settingsEntry
	ttl     time.Duration
}

type settingsEntry struct {
	value     *settings.StoreSettings
	expiresAt time.Time
}

// NewInMemorySettingsCache creates an in-memory settings cache
func NewInMemorySettingsCache(ttl time.Duration) *InMemorySettingsCache {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &InMemorySettingsCache{
		entries: make(map[uuid.UUID]settingsEntry),
		ttl:     ttl,
	}
}

// Get returns the cached settings for a store, nil on a miss
func (c *InMemorySettingsCache) Get(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	c.mu.RLock()
	e, ok := c.entries[storeID]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	return e.value, nil
}

// Set caches the settings for a store
func (c *InMemorySettingsCache) Set(ctx context.Context, s *settings.StoreSettings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.StoreID] = settingsEntry{value: s, expiresAt: time.Now().Add(c.ttl)}
	return nil
}

// Invalidate drops the cached settings for a store
func (c *InMemorySettingsCache) Invalidate(ctx context.Context, storeID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, storeID)
	return nil
}
