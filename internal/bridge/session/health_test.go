package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced clock for monitor tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// newTestMonitor builds a monitor on a fake clock with a 1s poll
// interval and a 4s keep-alive.
func newTestMonitor(clk *fakeClock) *monitor {
	m := newMonitor(time.Second, 4*time.Second)
	m.now = clk.Now
	m.lastActivity = clk.Now()
	m.lastCheck = clk.Now()
	return m
}

func TestMonitorNormalPass(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	clk.Advance(time.Second)
	assert.Equal(t, verdictHealthy, m.Check(true, true))

	// A clean pass refreshes the activity timestamp.
	clk.Advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, m.idle())
}

func TestMonitorToleratesSchedulingJitter(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	// 2.5x the interval is jitter, not a suspend.
	clk.Advance(2500 * time.Millisecond)
	assert.Equal(t, verdictHealthy, m.Check(true, true))
}

func TestMonitorLivenessLost(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	clk.Advance(time.Second)
	assert.Equal(t, verdictLost, m.Check(true, false))
}

func TestMonitorSkipsWhenDisconnected(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	clk.Advance(10 * time.Second)
	assert.Equal(t, verdictHealthy, m.Check(false, false))
}

func TestMonitorSleepResumeStale(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	// A 10s gap on a 1s cadence is a suspend, and 10s of silence
	// exceeds twice the 4s keep-alive: the link cannot be trusted.
	clk.Advance(10 * time.Second)
	assert.Equal(t, verdictStale, m.Check(true, true))
}

func TestMonitorSleepResumeWithRecentActivity(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	clk.Advance(10 * time.Second)
	m.Touch()
	// Suspend detected, but traffic since resume confirms the link.
	assert.Equal(t, verdictHealthy, m.Check(true, true))
}

func TestMonitorSleepFlagDoesNotPersist(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	clk.Advance(10 * time.Second)
	m.Touch()
	assert.Equal(t, verdictHealthy, m.Check(true, true))

	// The next pass is back on cadence; no stale verdict.
	clk.Advance(time.Second)
	assert.Equal(t, verdictHealthy, m.Check(true, true))
}

func TestMonitorTouchFromCallback(t *testing.T) {
	clk := newFakeClock()
	m := newTestMonitor(clk)

	clk.Advance(2 * time.Second)
	m.Touch()
	assert.Equal(t, time.Duration(0), m.idle())
}
