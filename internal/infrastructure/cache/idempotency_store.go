package cache

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nextstock/backend/internal/domain/sync"
)

const idempotencyKeyPrefix = "sync:op:"

// RedisIdempotencyStore remembers offline operation results in Redis so
// replayed pushes get the original answer across instances.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store.
// Entries expire after ttl; a replay later than that is applied fresh.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl == 0 {
		ttl = 72 * time.Hour
	}
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// Remember stores the serialized result for a client op ID. Returns false
// when the ID was already present. SETNX keeps first-write-wins atomic.
func (s *RedisIdempotencyStore) Remember(ctx context.Context, clientOpID string, result []byte) (bool, error) {
	stored, err := s.client.SetNX(ctx, idempotencyKeyPrefix+clientOpID, result, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remember operation: %w", err)
	}
	return stored, nil
}

// Lookup returns the stored result, or nil when unseen
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, clientOpID string) ([]byte, error) {
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+clientOpID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up operation: %w", err)
	}
	return data, nil
}

var _ sync.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// InMemoryIdempotencyStore is a process-local idempotency store for
// single-instance deployments and tests
type InMemoryIdempotencyStore struct {
	mu      gosync.RWMutex
	entries map[string]idempotencyEntry
	ttl     time.Duration
}

type idempotencyEntry struct {
	result    []byte
	expiresAt time.Time
}

// NewInMemoryIdempotencyStore creates an in-memory idempotency store
func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	if ttl == 0 {
		ttl = 72 * time.Hour
	}
	return &InMemoryIdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		ttl:     ttl,
	}
}

// Remember stores the result for a client op ID, returning false when the
// ID was already present and unexpired
func (s *InMemoryIdempotencyStore) Remember(ctx context.Context, clientOpID string, result []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[clientOpID]; ok && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[clientOpID] = idempotencyEntry{result: result, expiresAt: time.Now().Add(s.ttl)}
	return true, nil
}

// Lookup returns the stored result, or nil when unseen or expired
func (s *InMemoryIdempotencyStore) Lookup(ctx context.Context, clientOpID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[clientOpID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	return e.result, nil
}

var _ sync.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
