package router

import "sync"

// GrowableBuffer is an unbounded thread-safe ring buffer. The decode loop
// must never block on a slow writer, so Send grows the ring instead of
// waiting; backpressure shows up in Stats rather than in the hot path.
type GrowableBuffer[T any] struct {
	mu     sync.Mutex
	notify *sync.Cond

	ring     []T
	readPos  int
	writePos int
	length   int
	closed   bool

	sent     int64
	received int64
	grows    int
}

// BufferStats contains buffer statistics.
type BufferStats struct {
	Count         int
	Capacity      int
	TotalReceived int64
	TotalSent     int64
	ResizeCount   int
}

// NewGrowableBuffer creates a buffer with the given initial capacity.
func NewGrowableBuffer[T any](capacity int) *GrowableBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	b := &GrowableBuffer[T]{ring: make([]T, capacity)}
	b.notify = sync.NewCond(&b.mu)
	return b
}

// Send appends an item, growing the ring when full. Returns false once the
// buffer is closed.
func (b *GrowableBuffer[T]) Send(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	if b.length == len(b.ring) {
		b.grow()
	}

	b.ring[b.writePos] = item
	b.writePos = (b.writePos + 1) % len(b.ring)
	b.length++
	b.received++

	b.notify.Signal()
	return true
}

// Receive blocks until an item is available or the buffer is closed and
// drained. The second return is false only in the closed-and-empty case.
func (b *GrowableBuffer[T]) Receive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.length == 0 && !b.closed {
		b.notify.Wait()
	}

	if b.length == 0 {
		var zero T
		return zero, false
	}

	return b.pop(), true
}

// TryReceive pops an item without blocking.
func (b *GrowableBuffer[T]) TryReceive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.length == 0 {
		var zero T
		return zero, false
	}

	return b.pop(), true
}

// DrainTo pops up to max items at once; max <= 0 means everything. Used by
// the writers for a final sweep during shutdown.
func (b *GrowableBuffer[T]) DrainTo(max int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.length
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]T, n)
	for i := range out {
		out[i] = b.pop()
	}
	return out
}

// Close stops accepting new items. Receivers drain what remains, then see
// the closed signal.
func (b *GrowableBuffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.notify.Broadcast()
}

// Len returns the current number of buffered items.
func (b *GrowableBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Cap returns the current ring capacity.
func (b *GrowableBuffer[T]) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ring)
}

// Stats returns buffer statistics.
func (b *GrowableBuffer[T]) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Count:         b.length,
		Capacity:      len(b.ring),
		TotalReceived: b.received,
		TotalSent:     b.sent,
		ResizeCount:   b.grows,
	}
}

// pop removes the oldest item. Caller holds the lock and has checked length.
func (b *GrowableBuffer[T]) pop() T {
	item := b.ring[b.readPos]
	var zero T
	b.ring[b.readPos] = zero // release for GC
	b.readPos = (b.readPos + 1) % len(b.ring)
	b.length--
	b.sent++
	return item
}

// grow doubles the ring, unwrapping the live region to the front. Caller
// holds the lock.
func (b *GrowableBuffer[T]) grow() {
	next := make([]T, len(b.ring)*2)
	if b.length > 0 {
		n := copy(next, b.ring[b.readPos:])
		if n < b.length {
			copy(next[n:], b.ring[:b.writePos])
		}
	}
	b.ring = next
	b.readPos = 0
	b.writePos = b.length
	b.grows++
}
