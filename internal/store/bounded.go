package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultQuota is the approximate budget of a browser origin's local storage.
const DefaultQuota = 5 * 1024 * 1024

// Bounded wraps a KV with a byte budget. Each entry costs two bytes per UTF-16
// code unit of its key and value. Sizes of entries written by another process
// are only known once they have been read, so callers should Get every key
// they own before writing.
type Bounded struct {
	kv     KV
	budget int

	mu    sync.Mutex
	sizes map[string]int
	used  int
}

// NewBounded wraps kv with the given budget in bytes. A budget <= 0 disables
// the limit.
func NewBounded(kv KV, budget int) *Bounded {
	return &Bounded{
		kv:     kv,
		budget: budget,
		sizes:  make(map[string]int),
	}
}

// Cost returns the accounted size of an entry.
func Cost(key, value string) int {
	return 2 * (utf16Len(key) + utf16Len(value))
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Close closes the underlying store.
func (b *Bounded) Close() error { return b.kv.Close() }

// Ping checks the underlying store.
func (b *Bounded) Ping(ctx context.Context) error { return b.kv.Ping(ctx) }

// Get reads key and records its size.
func (b *Bounded) Get(ctx context.Context, key string) (string, error) {
	v, err := b.kv.Get(ctx, key)
	switch {
	case err == nil:
		b.mu.Lock()
		b.track(key, Cost(key, v))
		b.mu.Unlock()
	case errors.Is(err, ErrKeyNotFound):
		b.mu.Lock()
		b.track(key, 0)
		b.mu.Unlock()
	}
	return v, err
}

// Set writes key if the result stays within budget.
func (b *Bounded) Set(ctx context.Context, key, value string) error {
	cost := Cost(key, value)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.budget > 0 && b.used-b.sizes[key]+cost > b.budget {
		return fmt.Errorf("set %q (%d bytes, %d/%d used): %w", key, cost, b.used, b.budget, ErrQuotaExceeded)
	}
	if err := b.kv.Set(ctx, key, value); err != nil {
		return err
	}
	b.track(key, cost)
	return nil
}

// Delete removes key and releases its size.
func (b *Bounded) Delete(ctx context.Context, key string) error {
	if err := b.kv.Delete(ctx, key); err != nil {
		return err
	}
	b.mu.Lock()
	b.track(key, 0)
	b.mu.Unlock()
	return nil
}

// Usage returns bytes accounted and the budget.
func (b *Bounded) Usage() (used, budget int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used, b.budget
}

func (b *Bounded) track(key string, size int) {
	b.used += size - b.sizes[key]
	if size == 0 {
		delete(b.sizes, key)
		return
	}
	b.sizes[key] = size
}
