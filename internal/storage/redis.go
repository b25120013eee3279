package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores slot values in Redis. Values have no TTL: a cart snapshot
// stays until the cart is cleared, a pending-order reference until the order
// is reconciled.
type RedisSlot struct {
	client *redis.Client
}

// NewRedisSlot creates a Slot backed by the given Redis client.
func NewRedisSlot(client *redis.Client) *RedisSlot {
	return &RedisSlot{client: client}
}

func (s *RedisSlot) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSlotEmpty
		}
		return "", fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return val, nil
}

func (s *RedisSlot) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

func (s *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}
