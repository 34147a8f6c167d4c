package event

import (
	"sync"
	"time"
)

// Queue is an unbounded FIFO queue carrying events from engine callbacks
// to the consumer loop.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Push order is preserved across producers (single mutex).
//
// No depth limit is enforced; the consumer is expected to drain at least
// as fast as the engine produces. See the package documentation for the
// backpressure trade-off.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an event and wakes one waiting consumer.
//
// Push never blocks and never fails; it is safe to call from engine
// callback goroutines.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop removes and returns the oldest event, blocking up to timeout for
// one to arrive. The second return value is false when the window
// expired with the queue still empty; that is not an error.
func (q *Queue) Pop(timeout time.Duration) (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for len(q.items) == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Event{}, false
		}
		// Wake ourselves when the window expires. Broadcast rather than
		// Signal so the timed-out waiter is guaranteed to run.
		expire := time.AfterFunc(remaining, q.cond.Broadcast)
		q.cond.Wait()
		expire.Stop()
	}

	return q.popLocked(), true
}

// TryPop removes and returns the oldest event without blocking.
func (q *Queue) TryPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Event{}, false
	}
	return q.popLocked(), true
}

// popLocked removes the head item. Caller must hold q.mu.
func (q *Queue) popLocked() Event {
	ev := q.items[0]
	q.items[0] = Event{}
	q.items = q.items[1:]

	// Reset the backing array once drained so consumed events can be
	// collected instead of pinning the slice.
	if len(q.items) == 0 {
		q.items = nil
	}
	return ev
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue has no events.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Clear discards all queued events.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
