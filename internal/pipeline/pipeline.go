// Package pipeline implements the event fan-out core: events from the
// feed cross one concurrency boundary into an arrival buffer, a
// periodic scheduler drains the buffer in batches when the flow-control
// gate is open, and a router delivers each batch to every registered
// consumer whose keyword filter matches.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// State is the pipeline lifecycle. There is no paused state: gating is
// a per-tick dispatch decision, and ingestion continues regardless.
type State int32

const (
	StateRunning State = iota
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Config struct {
	DispatchPeriod time.Duration // scheduler tick interval
	ScrollCooldown time.Duration // gate suspension window per signal
	PrimaryFilter  string        // initial filter of the primary consumer
}

// Pipeline assembles the bridge, buffer, gate, registry, scheduler and
// router, and owns their lifecycle.
type Pipeline struct {
	buffer    *ArrivalBuffer
	gate      *Gate
	registry  *Registry
	notifier  *Notifier
	router    *Router
	scheduler *Scheduler
	bridge    *Bridge

	state atomic.Int32
	done  chan struct{}
}

func New(source Source, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	buffer := NewArrivalBuffer()
	gate := NewGate(cfg.ScrollCooldown)
	registry := NewRegistry(cfg.PrimaryFilter)
	notifier := NewNotifier()
	router := NewRouter(registry, notifier, logger)

	return &Pipeline{
		buffer:    buffer,
		gate:      gate,
		registry:  registry,
		notifier:  notifier,
		router:    router,
		scheduler: NewScheduler(cfg.DispatchPeriod, gate, buffer, router),
		bridge:    NewBridge(source, buffer, logger),
		done:      make(chan struct{}),
	}
}

// Run operates the pipeline until ctx is cancelled, then flushes
// whatever is still buffered once and stops. Events queued during a
// gate suspension or in the instant before shutdown are delivered by
// that final drain, in original order.
func (p *Pipeline) Run(ctx context.Context) {
	p.state.Store(int32(StateRunning))
	defer close(p.done)

	go p.bridge.Run(ctx)
	p.scheduler.Run(ctx)

	p.state.Store(int32(StateDraining))
	p.buffer.Close()
	p.scheduler.Flush(context.WithoutCancel(ctx))

	p.state.Store(int32(StateStopped))
}

// Done is closed once the pipeline has fully stopped.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// State reports the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Gate exposes the flow-control gate for scroll signals.
func (p *Pipeline) Gate() *Gate {
	return p.gate
}

// Registry exposes the consumer registry for the control surface.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Notifier exposes per-consumer dispatch notifications for read
// surfaces that push updates.
func (p *Pipeline) Notifier() *Notifier {
	return p.notifier
}
