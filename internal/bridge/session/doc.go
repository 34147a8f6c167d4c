// Package session orchestrates the bridge between an application loop
// and the asynchronous MQTT engine.
//
// This package manages:
//   - The single run thread that is allowed to drive the engine
//   - A work queue carrying subscribe/publish/unsubscribe requests in,
//     drained in submission order only while connected
//   - Mirroring every state transition and engine notification into the
//     event queue
//   - Periodic connection health checks that distinguish ordinary
//     network loss from OS sleep/resume staleness
//   - Trust bundle resolution and cleanup for TLS transports
//
// # Threading model
//
// Three execution contexts interact: the engine's internal goroutines
// (callbacks; push events, flip atomics, return promptly), the session's
// run goroutine (the only caller of engine operations), and the consumer
// (pops events, queues requests). The connected and stop flags are
// atomics; each queue has exactly one mutex; no lock is held across a
// call into the engine.
//
// # Usage
//
//	events := event.NewQueue()
//	sess := session.New(cfg, events, log)
//	go sess.Run(ctx)
//
//	sess.RequestSubscribe("sensors/#", 1)
//	for {
//	    ev, ok := events.Pop(250 * time.Millisecond)
//	    if !ok {
//	        continue
//	    }
//	    // handle ev
//	}
package session
