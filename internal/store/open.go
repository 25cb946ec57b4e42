package store

import (
	"context"
	"errors"
	"fmt"
)

// Options selects and locates a backend.
type Options struct {
	Backend     string // memory, sqlite, bolt, redis, postgres
	SQLitePath  string
	BoltPath    string
	DatabaseURL string
	RedisURL    string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(ctx, opts.SQLitePath)
	case "bolt":
		return NewBoltStore(opts.BoltPath)
	case "redis":
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires REDIS_URL")
		}
		return NewRedisStore(ctx, opts.RedisURL)
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
		}
		return NewPostgresStore(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// Copy transfers keys from src to dst. Keys missing from src are skipped.
func Copy(ctx context.Context, dst, src KV, keys []string) (copied int, err error) {
	for _, key := range keys {
		value, err := src.Get(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("read %s: %w", key, err)
		}
		if err := dst.Set(ctx, key, value); err != nil {
			return copied, fmt.Errorf("write %s: %w", key, err)
		}
		copied++
	}
	return copied, nil
}
