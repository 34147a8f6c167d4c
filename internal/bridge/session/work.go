package session

import "sync"

// workKind discriminates queued engine requests.
type workKind int

const (
	workSubscribe workKind = iota
	workPublish
	workUnsubscribe
)

// workItem is a queued request destined for the engine. Items are
// dispatched fire-and-forget; completion arrives later as an event.
type workItem struct {
	kind     workKind
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// workQueue carries consumer requests to the session thread.
//
// A single mutex guards the storage; the lock is never held across a
// call into the engine.
type workQueue struct {
	mu    sync.Mutex
	items []workItem
}

// add appends a request. Safe from any goroutine, including the session
// thread itself.
func (q *workQueue) add(item workItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// take removes the oldest request, if any.
func (q *workQueue) take() (workItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return workItem{}, false
	}
	item := q.items[0]
	q.items[0] = workItem{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item, true
}

// depth returns the number of pending requests.
func (q *workQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
