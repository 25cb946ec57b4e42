// Package bus fans values out to subscribers synchronously, in the order
// they subscribed.
package bus

import "sync"

// Bus delivers every published value to every current subscriber.
type Bus[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls each subscriber with v before returning. Subscribers added
// or removed during delivery take effect on the next Publish.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	subs := make([]subscriber[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
