// Package eventbus provides an in-process publish/subscribe bus with
// non-blocking fan-out.
package eventbus

import (
	"sync"
	"sync/atomic"
)

const bufferSize = 16

// Bus fans events of type T out to every subscriber. A subscriber whose
// buffer is full misses the event; Dropped counts those misses.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	dropped atomic.Uint64
}

// New creates an empty bus.
func New[T any]() *Bus[T] { return &Bus[T]{} }

// Publish delivers e to every subscriber with buffer space and returns how
// many received it. Publishing on a nil or closed bus is a no-op.
func (b *Bus[T]) Publish(e T) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	n := 0
	for _, ch := range b.subs {
		select {
		case ch <- e:
			n++
		default:
			b.dropped.Add(1)
		}
	}
	return n
}

// Subscribe registers a subscriber. On a closed bus the returned channel is
// already closed.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, bufferSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes sub and closes it. Events already buffered can still
// be drained.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Dropped reports how many deliveries were skipped on full buffers.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }

// Close closes every subscriber channel. Further publishes are ignored.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
