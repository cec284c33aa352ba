package pipeline

import (
	"sync/atomic"
	"time"
)

// DefaultScrollCooldown is how long dispatch stays suspended after a
// scroll signal.
const DefaultScrollCooldown = 2 * time.Second

// Gate is the pipeline-wide suspend latch. Any presentation surface
// reporting scroll activity pushes a single shared deadline forward;
// the scheduler skips dispatch while now is before that deadline.
//
// The deadline is an atomically updated monotonic value: concurrent
// signals race to CAS in the later deadline, so signals only ever
// extend the pause, never shorten it. There is one Gate per pipeline,
// not one per consumer.
type Gate struct {
	deadline atomic.Int64 // unix nanos
	cooldown time.Duration
	now      func() time.Time
}

func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultScrollCooldown
	}
	return &Gate{cooldown: cooldown, now: time.Now}
}

// Signal records scroll activity, suspending dispatch until
// now + cooldown. Safe to call from any goroutine.
func (g *Gate) Signal() {
	target := g.now().Add(g.cooldown).UnixNano()
	for {
		cur := g.deadline.Load()
		if target <= cur {
			return
		}
		if g.deadline.CompareAndSwap(cur, target) {
			return
		}
	}
}

// Suspended reports whether dispatch is currently paused.
func (g *Gate) Suspended() bool {
	return g.now().UnixNano() < g.deadline.Load()
}
