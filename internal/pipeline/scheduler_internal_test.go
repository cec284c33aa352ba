package pipeline

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"grapevine.app/firehose/internal/domain"
)

var _ = Describe("Scheduler ticks", func() {
	var (
		clock     *manualClock
		gate      *Gate
		buffer    *ArrivalBuffer
		registry  *Registry
		scheduler *Scheduler
	)

	put := func(text string) {
		Expect(buffer.Put(domain.Event{Text: text})).To(BeTrue())
	}

	primaryTexts := func() []string {
		events, err := registry.Events(registry.PrimaryID())
		Expect(err).NotTo(HaveOccurred())
		out := make([]string, 0, len(events))
		for _, ev := range events {
			out = append(out, ev.Text)
		}
		return out
	}

	BeforeEach(func() {
		clock = newManualClock()
		gate = NewGate(2 * time.Second)
		gate.now = clock.Now
		buffer = NewArrivalBuffer()
		registry = NewRegistry("")
		router := NewRouter(registry, NewNotifier(), nil)
		scheduler = NewScheduler(200*time.Millisecond, gate, buffer, router)
	})

	It("dispatches queued events on an open tick", func() {
		put("one")
		put("two")

		scheduler.Tick(context.Background())
		Expect(primaryTexts()).To(Equal([]string{"two", "one"}))
		Expect(buffer.Len()).To(BeZero())
	})

	It("holds events while the gate is suspended and flushes them in order after it lapses", func() {
		// t=0: scroll signal, 2s cooldown.
		gate.Signal()

		// Events arrive at t=0.1s and t=0.5s; ticks at t=0.2s and
		// t=0.4s find the gate closed and must not dispatch.
		clock.Advance(100 * time.Millisecond)
		put("first")
		clock.Advance(100 * time.Millisecond)
		scheduler.Tick(context.Background())
		Expect(primaryTexts()).To(BeEmpty())
		Expect(buffer.Len()).To(Equal(1))

		clock.Advance(200 * time.Millisecond)
		scheduler.Tick(context.Background())
		Expect(primaryTexts()).To(BeEmpty())

		clock.Advance(100 * time.Millisecond)
		put("second")

		// Gate lapses at t=2.0s; the t=2.2s tick delivers both
		// events together, in arrival order.
		clock.Advance(1700 * time.Millisecond)
		scheduler.Tick(context.Background())
		Expect(primaryTexts()).To(Equal([]string{"second", "first"}))
		Expect(buffer.Len()).To(BeZero())
	})

	It("flushes regardless of the gate on the final drain", func() {
		gate.Signal()
		put("buffered")

		scheduler.Flush(context.Background())
		Expect(primaryTexts()).To(Equal([]string{"buffered"}))
	})
})
