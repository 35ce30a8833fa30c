// Package queue provides an unbounded multi-consumer FIFO split into a single
// Sender half and any number of Receiver handles.
//
// Closing the Sender is the only way to end the stream. Receivers observe the
// closure lazily: buffered items are still delivered, and only once the buffer
// is empty does Receive report end-of-stream.
package queue

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Send after the sender has been closed.
	ErrClosed = errors.New("queue: send on closed queue")
	// ErrDisconnected is returned by Send when every receiver handle has been released.
	ErrDisconnected = errors.New("queue: all receivers released")
)

// state is shared by both halves. All fields are guarded by mu.
type state[T any] struct {
	mu        sync.Mutex
	nonEmpty  *sync.Cond
	items     []T
	head      int
	closed    bool
	receivers int
}

// Sender is the producing half of a queue. It must not be copied.
type Sender[T any] struct {
	s    *state[T]
	once sync.Once
}

// Receiver is a consuming handle. A single Receiver may be shared by several
// goroutines; use Clone to account for an additional independent consumer.
type Receiver[T any] struct {
	s        *state[T]
	released sync.Once
}

// New creates an empty open queue with one receiver handle.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &state[T]{receivers: 1}
	s.nonEmpty = sync.NewCond(&s.mu)
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Send enqueues v. It never blocks on queue depth.
func (tx *Sender[T]) Send(v T) error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrClosed
	case s.receivers == 0:
		return ErrDisconnected
	}

	s.items = append(s.items, v)
	s.nonEmpty.Signal()
	return nil
}

// Close discards the producing side and wakes every blocked receiver.
// Only the first call has an effect.
func (tx *Sender[T]) Close() {
	tx.once.Do(func() {
		s := tx.s
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.nonEmpty.Broadcast()
	})
}

// Len returns the number of buffered items.
func (tx *Sender[T]) Len() int {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	return len(tx.s.items) - tx.s.head
}

// Receive blocks until an item is available or the queue is closed and drained.
// The boolean is false only in the latter case.
func (rx *Receiver[T]) Receive() (T, bool) {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.head == len(s.items) {
		if s.closed {
			var zero T
			return zero, false
		}
		s.nonEmpty.Wait()
	}

	v := s.items[s.head]
	var zero T
	s.items[s.head] = zero
	s.head++

	// reclaim the consumed prefix once it dominates the backing array
	if s.head == len(s.items) {
		s.items = s.items[:0]
		s.head = 0
	} else if s.head > 64 && s.head*2 >= len(s.items) {
		n := copy(s.items, s.items[s.head:])
		clear(s.items[n:])
		s.items = s.items[:n]
		s.head = 0
	}

	return v, true
}

// Clone registers another receiver handle on the same queue.
func (rx *Receiver[T]) Clone() *Receiver[T] {
	rx.s.mu.Lock()
	rx.s.receivers++
	rx.s.mu.Unlock()
	return &Receiver[T]{s: rx.s}
}

// Release drops this handle. Calling it more than once is a no-op.
func (rx *Receiver[T]) Release() {
	rx.released.Do(func() {
		rx.s.mu.Lock()
		rx.s.receivers--
		rx.s.mu.Unlock()
	})
}
