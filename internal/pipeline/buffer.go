package pipeline

import (
	"sync"

	"grapevine.app/firehose/internal/domain"
)

// ArrivalBuffer accumulates events between dispatch ticks. It is the
// hand-off point between the feed goroutine and the scheduler:
// admission is unbounded so the producer never blocks, and events only
// leave through a full drain. One producer, one drainer.
type ArrivalBuffer struct {
	mu     sync.Mutex
	events []domain.Event
	closed bool
}

func NewArrivalBuffer() *ArrivalBuffer {
	return &ArrivalBuffer{}
}

// Put queues an event for the next dispatch. It returns false once the
// buffer is closed, which tells the producer no receiver remains.
func (b *ArrivalBuffer) Put(ev domain.Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.events = append(b.events, ev)
	return true
}

// DrainAll atomically removes and returns every queued event in arrival
// order. Returns nil when empty.
func (b *ArrivalBuffer) DrainAll() []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.events
	b.events = nil
	return batch
}

// Len reports the number of queued events.
func (b *ArrivalBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Close rejects further intake. Already-queued events stay drainable so
// a final flush can still deliver them.
func (b *ArrivalBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
