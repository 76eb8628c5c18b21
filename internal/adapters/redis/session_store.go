package redis

// Package redis provides the Redis-backed session store adapter.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gutp/discux/internal/ports"
)

var _ ports.KVStore = (*KVStore)(nil)

// KVStore is a thin key/value adapter over Redis. Expiry is left to Redis
// TTLs; values are stored as plain strings.
type KVStore struct {
	client redis.UniversalClient
}

// NewKVStore creates a new Redis-based key/value store.
func NewKVStore(client redis.UniversalClient) *KVStore {
	return &KVStore{client: client}
}

// Set writes value with SET EX so the key and its expiry are applied atomically.
func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ports.ErrKeyNotFound
	}

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *KVStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, nil
	}
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis expire: %w", err)
	}
	return ok, nil
}

// TTL maps Redis' -2 (missing key) to ErrKeyNotFound and passes -1 (no expiry) through.
func (s *KVStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	if key == "" {
		return 0, ports.ErrKeyNotFound
	}
	d, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	if d == -2 || d == -2*time.Second {
		return 0, ports.ErrKeyNotFound
	}
	return d, nil
}
