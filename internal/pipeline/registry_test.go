package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"grapevine.app/firehose/internal/pipeline"
)

var _ = Describe("Registry", func() {
	var registry *pipeline.Registry

	BeforeEach(func() {
		registry = pipeline.NewRegistry("")
	})

	It("always holds the primary consumer", func() {
		infos := registry.List()
		Expect(infos).To(HaveLen(1))
		Expect(infos[0].Role).To(Equal(pipeline.RolePrimary))
		Expect(infos[0].ID).To(Equal(registry.PrimaryID()))
	})

	It("hands out stable handles for secondaries", func() {
		a := registry.Add("cat")
		b := registry.Add("dog")
		Expect(a).NotTo(Equal(b))

		infos := registry.List()
		Expect(infos).To(HaveLen(3))
		Expect(infos[1].ID).To(Equal(a))
		Expect(infos[1].Filter).To(Equal("cat"))
		Expect(infos[2].ID).To(Equal(b))
	})

	It("rejects removal of the primary consumer", func() {
		err := registry.Remove(registry.PrimaryID())
		Expect(err).To(MatchError(pipeline.ErrPrimaryConsumer))
		Expect(registry.Len()).To(Equal(1))
	})

	It("removes secondaries and discards their buffers", func() {
		handle := registry.Add("cat")
		Expect(registry.Remove(handle)).To(Succeed())
		Expect(registry.Len()).To(Equal(1))

		_, err := registry.Events(handle)
		Expect(err).To(MatchError(pipeline.ErrConsumerNotFound))
	})

	It("returns not-found for unknown handles", func() {
		Expect(registry.Remove(42)).To(MatchError(pipeline.ErrConsumerNotFound))
		Expect(registry.UpdateFilter(42, "x")).To(MatchError(pipeline.ErrConsumerNotFound))
	})

	Describe("UpdateFilter", func() {
		It("clears retained events instead of re-filtering them", func() {
			router := pipeline.NewRouter(registry, pipeline.NewNotifier(), nil)
			handle := registry.Add("cat")

			router.Dispatch(ctxBackground(), batchOf("cats everywhere", "more cats"))
			events, err := registry.Events(handle)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(2))

			Expect(registry.UpdateFilter(handle, "cats")).To(Succeed())
			events, err = registry.Events(handle)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(BeEmpty())

			// New events are evaluated under the new filter only.
			router.Dispatch(ctxBackground(), batchOf("cats again"))
			events, _ = registry.Events(handle)
			Expect(events).To(HaveLen(1))
			Expect(events[0].Text).To(Equal("cats again"))
		})
	})
})
