package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisEngine stores each key as a plain Redis string without expiry.
type RedisEngine struct {
	client *redis.Client
}

func NewRedisEngine(client *redis.Client) *RedisEngine {
	return &RedisEngine{client: client}
}

func (r *RedisEngine) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisEngine) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisEngine) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisEngine) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisEngine) Name() string { return "redis" }
