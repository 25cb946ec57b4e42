// Package ids generates identifiers for messages, users and calls.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewUUIDv7 generates a time-ordered UUID v7.
func NewUUIDv7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewUserID returns a fresh user identifier.
func NewUserID() string {
	return NewUUIDv7().String()
}

// NewCallID returns a fresh call log identifier.
func NewCallID() string {
	return NewUUIDv7().String()
}

// NewMessageID returns a ULID for the given Unix ms timestamp.
// IDs generated within the same millisecond are strictly increasing.
func NewMessageID(ms int64) string {
	mu.Lock()
	defer mu.Unlock()
	if ms <= 0 {
		ms = time.Now().UnixMilli()
	}
	return ulid.MustNew(uint64(ms), entropy).String()
}
