package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

const redisKeyPrefix = "storefront:session:"

// RedisStore keeps the session in a single Redis hash, for deployments where
// several storefront processes share one signed-in session (kiosk setups,
// supervised restarts). Multi-key removal maps to one HDEL and Clear to one
// DEL, so the atomicity contract of Store holds without extra locking.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed session store. The name distinguishes
// independent sessions sharing one Redis.
func NewRedisStore(client *redis.Client, name string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    redisKeyPrefix + name,
	}
}

// Get retrieves a value by key from the session hash.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("session key", key)
		}
		return "", fmt.Errorf("redis get session key: %w", err)
	}
	return v, nil
}

// Set stores a value in the session hash.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis set session key: %w", err)
	}
	return nil
}

// Remove deletes the given keys from the session hash in one command.
func (s *RedisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("redis del session keys: %w", err)
	}
	return nil
}

// Clear drops the whole session hash.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}
