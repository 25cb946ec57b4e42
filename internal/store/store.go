package store

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by KV.Get when the key is absent.
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned when a write does not fit in the store.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KV defines a synchronous string key-value store holding JSON documents.
// MemoryStore, SQLiteStore, BoltStore, RedisStore and PostgresStore implement
// this interface; Bounded adds capacity accounting on top of any of them.
type KV interface {
	// Connection management
	Close() error
	Ping(ctx context.Context) error

	// Key operations
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// UsageReporter is implemented by stores that track their capacity.
type UsageReporter interface {
	Usage() (used, budget int)
}
