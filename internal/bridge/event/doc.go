// Package event defines the notifications emitted by the MQTT session and
// the thread-safe queue that carries them to the application loop.
//
// The queue is the only path out of the asynchronous engine callbacks:
// callbacks construct an Event and Push it; the consumer drains with a
// blocking Pop or a non-blocking TryPop on its own thread. Delivery order
// matches push order across all producers.
//
// The queue is deliberately unbounded. Callbacks must never block, so
// backpressure would have to drop notifications instead, and losing a
// ConnectionLost or a publish outcome is worse than growing the queue
// while the consumer catches up.
package event
