package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "chat:"

// RedisStore keeps each document as a plain Redis string.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client, prefix: defaultRedisPrefix}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// docKey returns the namespaced Redis key for a document.
func (s *RedisStore) docKey(key string) string {
	return s.prefix + key
}

// Get retrieves the document stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.docKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return v, nil
}

// Set stores the document under key without expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	err := s.client.Set(ctx, s.docKey(key), value, 0).Err()
	// maxmemory with noeviction answers writes with an OOM error
	if err != nil && strings.HasPrefix(err.Error(), "OOM") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.docKey(key)).Err()
}
