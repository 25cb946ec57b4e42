package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInRegistrationOrder(t *testing.T) {
	b := New[int]()
	var got []string

	b.Subscribe(func(v int) { got = append(got, "first") })
	b.Subscribe(func(v int) { got = append(got, "second") })
	b.Subscribe(func(v int) { got = append(got, "third") })

	b.Publish(1)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestEveryPublishIsDelivered(t *testing.T) {
	b := New[int]()
	var got []int
	b.Subscribe(func(v int) { got = append(got, v) })

	for i := 0; i < 5; i++ {
		b.Publish(i)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestUnsubscribe(t *testing.T) {
	b := New[string]()
	var a, c int
	unsubA := b.Subscribe(func(string) { a++ })
	b.Subscribe(func(string) { c++ })

	b.Publish("x")
	unsubA()
	unsubA()
	b.Publish("y")

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1, b.Len())
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	b := New[int]()
	var calls int
	var unsub func()
	unsub = b.Subscribe(func(int) {
		calls++
		unsub()
	})
	b.Subscribe(func(int) { calls++ })

	b.Publish(1)
	assert.Equal(t, 2, calls)

	b.Publish(2)
	assert.Equal(t, 3, calls)
}
