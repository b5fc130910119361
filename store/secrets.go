package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultSecretsKey = "parameters"

// RedisSecrets is a parameter store kept in a single Redis hash.
type RedisSecrets struct {
	client *redis.Client
	key    string
}

func NewRedisSecrets(client *redis.Client, key string) *RedisSecrets {
	if key == "" {
		key = DefaultSecretsKey
	}
	return &RedisSecrets{client: client, key: key}
}

func (s *RedisSecrets) Get(ctx context.Context, name string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.key, name).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading parameter %s: %w", name, err)
	}
	return value, true, nil
}

func (s *RedisSecrets) Put(ctx context.Context, name, value string) error {
	if err := s.client.HSet(ctx, s.key, name, value).Err(); err != nil {
		return fmt.Errorf("writing parameter %s: %w", name, err)
	}
	return nil
}
