// Package bus delivers controller events through a bounded in-memory queue,
// serializing them so handlers run one at a time.
package bus

import (
	"context"
	"errors"
	"sync/atomic"

	"trailstop/internal/event"
)

var (
	ErrQueueFull   = errors.New("event queue full")
	ErrQueueClosed = errors.New("event queue closed")
)

// Queue is a bounded, non-blocking event queue.
type Queue struct {
	ch     chan event.Event
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan event.Event, capacity)}
}

// TryPublish enqueues an event without blocking.
func (q *Queue) TryPublish(e event.Event) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue from accepting new events. Buffered events still
// drain through Run.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes events until the context is done or the queue is closed and
// drained. Events are handed to the handler one at a time.
func (q *Queue) Run(ctx context.Context, handler func(event.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-q.ch:
			if !ok {
				return
			}
			handler(e)
		}
	}
}
