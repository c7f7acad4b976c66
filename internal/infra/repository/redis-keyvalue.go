package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainrepo "call-sentinel/internal/domain/interfaces/repository"

	"github.com/redis/go-redis/v9"
)

// RedisKeyValue is the KeyValue backend shared by a fleet of handlers.
type RedisKeyValue struct {
	client *redis.Client
}

func NewRedisKeyValue(client *redis.Client) *RedisKeyValue {
	return &RedisKeyValue{client: client}
}

func (s *RedisKeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisKeyValue) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisKeyValue) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis expire %s: %w", key, err)
	}
	if !ok {
		return domainrepo.ErrNotFound
	}
	return nil
}

func (s *RedisKeyValue) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
