package pipeline

import (
	"context"
	"time"
)

// DefaultDispatchPeriod is the scheduler tick interval: five
// UI-facing updates per second at most, regardless of feed throughput.
const DefaultDispatchPeriod = 200 * time.Millisecond

// Scheduler drains the arrival buffer on a fixed period. A tick that
// finds the gate suspended does nothing and leaves the buffer intact;
// events are delayed, never dropped. Bursts that arrive between ticks
// are dispatched as one batch.
type Scheduler struct {
	period time.Duration
	gate   *Gate
	buffer *ArrivalBuffer
	router *Router
}

func NewScheduler(period time.Duration, gate *Gate, buffer *ArrivalBuffer, router *Router) *Scheduler {
	if period <= 0 {
		period = DefaultDispatchPeriod
	}
	return &Scheduler{period: period, gate: gate, buffer: buffer, router: router}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one dispatch decision: consult the gate, and when open
// flush everything queued so far as a single ordered batch.
func (s *Scheduler) Tick(ctx context.Context) {
	if s.gate.Suspended() {
		return
	}
	s.Flush(ctx)
}

// Flush drains the buffer unconditionally and routes the batch. Used
// by ticks and by the final drain on shutdown.
func (s *Scheduler) Flush(ctx context.Context) {
	s.router.Dispatch(ctx, s.buffer.DrainAll())
}
