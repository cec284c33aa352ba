package pipeline_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"grapevine.app/firehose/internal/domain"
	"grapevine.app/firehose/internal/pipeline"
)

func textEvent(text string) domain.Event {
	return domain.Event{DID: "did:plc:test", RKey: "rkey-" + text, Text: text}
}

var _ = Describe("ArrivalBuffer", func() {
	var buffer *pipeline.ArrivalBuffer

	BeforeEach(func() {
		buffer = pipeline.NewArrivalBuffer()
	})

	It("drains events in arrival order", func() {
		for i := range 5 {
			Expect(buffer.Put(textEvent(fmt.Sprintf("event %d", i)))).To(BeTrue())
		}

		batch := buffer.DrainAll()
		Expect(batch).To(HaveLen(5))
		for i, ev := range batch {
			Expect(ev.Text).To(Equal(fmt.Sprintf("event %d", i)))
		}
	})

	It("is empty after a drain", func() {
		buffer.Put(textEvent("one"))
		buffer.DrainAll()

		Expect(buffer.Len()).To(BeZero())
		Expect(buffer.DrainAll()).To(BeEmpty())
	})

	It("keeps accumulating between drains", func() {
		buffer.Put(textEvent("a"))
		buffer.DrainAll()
		buffer.Put(textEvent("b"))
		buffer.Put(textEvent("c"))

		batch := buffer.DrainAll()
		Expect(batch).To(HaveLen(2))
		Expect(batch[0].Text).To(Equal("b"))
		Expect(batch[1].Text).To(Equal("c"))
	})

	It("rejects intake once closed", func() {
		Expect(buffer.Put(textEvent("before"))).To(BeTrue())
		buffer.Close()
		Expect(buffer.Put(textEvent("after"))).To(BeFalse())
	})

	It("still drains queued events after close", func() {
		buffer.Put(textEvent("queued"))
		buffer.Close()

		batch := buffer.DrainAll()
		Expect(batch).To(HaveLen(1))
		Expect(batch[0].Text).To(Equal("queued"))
	})
})
