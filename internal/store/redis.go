package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisDocuments stores documents as plain Redis strings under a key prefix,
// so several processes can share the same stats and history.
type RedisDocuments struct {
	client *redis.Client
	prefix string
}

// NewRedisDocuments creates a Redis-backed DocumentStore. An empty prefix
// defaults to "trivia:doc:".
func NewRedisDocuments(client *redis.Client, prefix string) *RedisDocuments {
	if prefix == "" {
		prefix = "trivia:doc:"
	}
	return &RedisDocuments{client: client, prefix: prefix}
}

func (r *RedisDocuments) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return raw, nil
}

func (r *RedisDocuments) Put(ctx context.Context, key string, doc []byte) error {
	if err := r.client.Set(ctx, r.key(key), doc, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisDocuments) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (r *RedisDocuments) key(key string) string {
	return r.prefix + key
}
