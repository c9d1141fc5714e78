package pubsub

import (
	"context"
	"sync"
)

type memoryBus[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan T
	buffer int
}

// NewMemory creates an in-process bus. buffer caps how many undelivered
// signals a subscriber may hold before further ones are dropped.
func NewMemory[T any](buffer int) Bus[T] {
	if buffer <= 0 {
		buffer = 1
	}

	return &memoryBus[T]{
		subs:   make(map[uint64]chan T),
		buffer: buffer,
	}
}

func (b *memoryBus[T]) Publish(_ context.Context, v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}

	return nil
}

func (b *memoryBus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan T, b.buffer)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		sub, ok := b.subs[id]
		if !ok {
			return
		}

		delete(b.subs, id)
		close(sub)
	}
}
