package pipeline_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"grapevine.app/firehose/internal/domain"
	"grapevine.app/firehose/internal/pipeline"
)

func ctxBackground() context.Context {
	return context.Background()
}

func batchOf(texts ...string) []domain.Event {
	batch := make([]domain.Event, 0, len(texts))
	for i, text := range texts {
		batch = append(batch, domain.Event{
			DID:  "did:plc:test",
			RKey: fmt.Sprintf("rkey-%d", i),
			Text: text,
		})
	}
	return batch
}

func texts(events []domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Text)
	}
	return out
}

var _ = Describe("Router", func() {
	var (
		registry *pipeline.Registry
		notifier *pipeline.Notifier
		router   *pipeline.Router
	)

	BeforeEach(func() {
		registry = pipeline.NewRegistry("")
		notifier = pipeline.NewNotifier()
		router = pipeline.NewRouter(registry, notifier, nil)
	})

	It("routes one batch to matching consumers, newest first", func() {
		// Primary is the unfiltered firehose, A filters on "cat",
		// B was never configured.
		a := registry.Add("cat")
		b := registry.Add("")

		router.Dispatch(ctxBackground(), batchOf("I like cats", "dogs only", "CAT scan results"))

		primary, err := registry.Events(registry.PrimaryID())
		Expect(err).NotTo(HaveOccurred())
		Expect(texts(primary)).To(Equal([]string{"CAT scan results", "dogs only", "I like cats"}))

		aEvents, err := registry.Events(a)
		Expect(err).NotTo(HaveOccurred())
		Expect(texts(aEvents)).To(Equal([]string{"CAT scan results", "I like cats"}))

		bEvents, err := registry.Events(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(bEvents).To(BeEmpty())
	})

	It("matches case-insensitively in both directions", func() {
		upper := registry.Add("CAT")
		router.Dispatch(ctxBackground(), batchOf("cat nap", "CATALOG", "dog"))

		events, _ := registry.Events(upper)
		Expect(texts(events)).To(Equal([]string{"CATALOG", "cat nap"}))
	})

	It("gives a secondary with an empty filter nothing regardless of volume", func() {
		idle := registry.Add("")
		for range 10 {
			router.Dispatch(ctxBackground(), batchOf("a", "b", "c"))
		}

		events, _ := registry.Events(idle)
		Expect(events).To(BeEmpty())
	})

	It("caps retention at 100, evicting the oldest", func() {
		texts105 := make([]string, 105)
		for i := range texts105 {
			texts105[i] = fmt.Sprintf("post %d", i)
		}
		router.Dispatch(ctxBackground(), batchOf(texts105...))

		events, err := registry.Events(registry.PrimaryID())
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(100))

		// The 100 most recent remain; posts 0-4 were evicted.
		Expect(events[0].Text).To(Equal("post 104"))
		Expect(events[99].Text).To(Equal("post 5"))
	})

	It("holds the cap across repeated dispatches", func() {
		for i := range 30 {
			router.Dispatch(ctxBackground(), batchOf(
				fmt.Sprintf("x %d", i),
				fmt.Sprintf("y %d", i),
				fmt.Sprintf("z %d", i),
				fmt.Sprintf("w %d", i),
			))
			events, _ := registry.Events(registry.PrimaryID())
			Expect(len(events)).To(BeNumerically("<=", 100))
		}

		events, _ := registry.Events(registry.PrimaryID())
		Expect(events).To(HaveLen(100))
		Expect(events[0].Text).To(Equal("w 29"))
	})

	It("does not disturb other consumers when one is removed", func() {
		a := registry.Add("cat")
		doomed := registry.Add("cat")

		router.Dispatch(ctxBackground(), batchOf("cat one", "cat two"))
		Expect(registry.Remove(doomed)).To(Succeed())
		router.Dispatch(ctxBackground(), batchOf("cat three"))

		events, err := registry.Events(a)
		Expect(err).NotTo(HaveOccurred())
		Expect(texts(events)).To(Equal([]string{"cat three", "cat two", "cat one"}))
	})

	It("notifies only consumers that received events", func() {
		a := registry.Add("cat")
		b := registry.Add("zebra")

		aUpdates, cancelA := notifier.Subscribe(a)
		defer cancelA()
		bUpdates, cancelB := notifier.Subscribe(b)
		defer cancelB()

		router.Dispatch(ctxBackground(), batchOf("cat post"))

		Expect(aUpdates).To(Receive())
		Expect(bUpdates).NotTo(Receive())
	})

	It("ignores empty batches", func() {
		updates, cancel := notifier.Subscribe(registry.PrimaryID())
		defer cancel()

		router.Dispatch(ctxBackground(), nil)
		Expect(updates).NotTo(Receive())
	})
})
