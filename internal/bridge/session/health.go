package session

import (
	"sync"
	"time"
)

// verdict is the outcome of one health pass.
type verdict int

const (
	// verdictHealthy: nothing to do.
	verdictHealthy verdict = iota

	// verdictLost: the engine's liveness predicate reports the link is
	// down; automatic reconnection will re-establish it.
	verdictLost

	// verdictStale: the process was suspended long enough that the
	// engine's liveness bookkeeping can no longer be trusted; the link
	// must be torn down explicitly.
	verdictStale
)

// monitor tracks activity and check timestamps for connection health.
//
// Check is invoked periodically from the session's own thread and is
// never concurrent with itself. Touch may be called from engine callback
// goroutines; one mutex guards both timestamps.
type monitor struct {
	interval  time.Duration
	keepAlive time.Duration
	now       func() time.Time

	mu           sync.Mutex
	lastActivity time.Time
	lastCheck    time.Time
}

func newMonitor(interval, keepAlive time.Duration) *monitor {
	m := &monitor{
		interval:  interval,
		keepAlive: keepAlive,
		now:       time.Now,
	}
	start := m.now()
	m.lastActivity = start
	m.lastCheck = start
	return m
}

// Touch records link activity: an inbound message, a delivery
// confirmation, or a successful connect.
func (m *monitor) Touch() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()
}

// Check runs one health pass.
//
// The two-tier check catches both failure modes of a suspended process:
// the liveness predicate reports fast failures, and activity staleness
// catches links the predicate still believes in after a long suspend.
// Clean passes refresh the activity timestamp so normal idle periods do
// not accumulate into false staleness.
func (m *monitor) Check(connected, alive bool) verdict {
	slept := m.detectSleepResume()

	if !connected {
		// Nothing to verify; reconnection is already in progress.
		return verdictHealthy
	}

	if !alive {
		return verdictLost
	}

	if slept && m.idle() > 2*m.keepAlive {
		return verdictStale
	}

	m.Touch()
	return verdictHealthy
}

// detectSleepResume flags a monotonic clock jump far beyond the polling
// cadence. Scheduling jitter cannot explain an elapsed time over 3x the
// configured interval; an OS sleep/resume cycle can.
func (m *monitor) detectSleepResume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	elapsed := now.Sub(m.lastCheck)
	m.lastCheck = now
	return elapsed > 3*m.interval
}

// idle returns the time since the last recorded link activity.
func (m *monitor) idle() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.lastActivity)
}
