// Package bus is the action queue between background producers and the
// single reducer.
package bus

import (
	"context"
	"sync"

	"github.com/Iron-Ham/uniq/internal/action"
)

// Bus is an unbounded many-producer, single-consumer FIFO of actions.
// Send never blocks and never drops while the bus is open; after Close,
// sends are silently ignored because the consumer is gone.
type Bus struct {
	mu     sync.Mutex
	queue  []action.Action
	closed bool
	// ready holds at most one wakeup for the consumer.
	ready chan struct{}
	done  chan struct{}
}

// New returns an open, empty bus.
func New() *Bus {
	return &Bus{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Send enqueues a. It reports false when the bus is closed.
func (b *Bus) Send(a action.Action) bool {
	if a == nil {
		return false
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.queue = append(b.queue, a)
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until an action is available, the bus is closed and
// drained, or ctx is done. ok is false in the latter two cases.
func (b *Bus) Next(ctx context.Context) (a action.Action, ok bool) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			a = b.queue[0]
			b.queue[0] = nil
			b.queue = b.queue[1:]
			if len(b.queue) == 0 {
				// let the backing array go once drained
				b.queue = nil
			}
			b.mu.Unlock()
			return a, true
		}
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-b.ready:
		case <-b.done:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// TryNext returns the next action without blocking.
func (b *Bus) TryNext() (action.Action, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, false
	}
	a := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return a, true
}

// Close stops accepting sends. Actions already queued can still be read.
// Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// Closed reports whether Close was called.
func (b *Bus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Len is the number of queued actions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Sender returns Send as a plain function for producers that should not
// see the rest of the bus.
func (b *Bus) Sender() func(action.Action) {
	return func(a action.Action) { b.Send(a) }
}
