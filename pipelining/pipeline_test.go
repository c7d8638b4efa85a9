package pipelining

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/satacmd/stream"
)

var _ = Describe("Pipeline", func() {
	var (
		outlet   *stream.Recorder[string]
		pipeline *Pipeline[string]
	)

	BeforeEach(func() {
		outlet = &stream.Recorder[string]{}
		pipeline = MakeBuilder[string]().
			WithNumStage(3).
			WithCyclePerStage(2).
			WithOutlet(outlet).
			Build("Pipeline")
	})

	It("should panic without an outlet", func() {
		Expect(func() { MakeBuilder[string]().Build("Pipeline") }).To(Panic())
	})

	It("should delay items by the number of stages", func() {
		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept("a")
		Expect(pipeline.CanAccept()).To(BeFalse())
		Expect(pipeline.NumInFlight()).To(Equal(1))

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(pipeline.CanAccept()).To(BeFalse())

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept("b")

		for i := 0; i < 3; i++ {
			Expect(pipeline.Tick()).To(BeTrue())
		}
		Expect(outlet.Beats).To(BeEmpty())

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(outlet.Beats).To(Equal([]string{"a"}))

		Expect(pipeline.Tick()).To(BeTrue())

		outlet.Stall = true
		Expect(pipeline.Tick()).To(BeFalse())
		Expect(pipeline.NumInFlight()).To(Equal(1))

		outlet.Stall = false
		Expect(pipeline.Tick()).To(BeTrue())
		Expect(outlet.Beats).To(Equal([]string{"a", "b"}))

		Expect(pipeline.Tick()).To(BeFalse())
		Expect(pipeline.NumInFlight()).To(Equal(0))
	})

	It("should fill up behind a stalled outlet", func() {
		outlet.Stall = true

		for i := 0; i < 20; i++ {
			if pipeline.CanAccept() {
				pipeline.Accept(string(rune('a' + i)))
			}
			pipeline.Tick()
		}

		Expect(pipeline.NumInFlight()).To(Equal(3))
		Expect(pipeline.CanAccept()).To(BeFalse())
		Expect(outlet.Beats).To(BeEmpty())
	})

	It("should panic when accepting into a busy stage", func() {
		pipeline.Accept("a")

		Expect(func() { pipeline.Accept("b") }).To(Panic())
	})

	It("should drop everything on clear", func() {
		pipeline.Accept("a")
		pipeline.Clear()

		Expect(pipeline.NumInFlight()).To(Equal(0))
		Expect(pipeline.Tick()).To(BeFalse())
	})
})

var _ = Describe("Zero-Stage Pipeline", func() {
	var (
		outlet   *stream.FIFO[int]
		pipeline *Pipeline[int]
	)

	BeforeEach(func() {
		outlet = stream.NewFIFO[int]("Post", 1)
		pipeline = MakeBuilder[int]().
			WithNumStage(0).
			WithOutlet(outlet).
			Build("Pipeline")
	})

	It("should forward to the outlet directly", func() {
		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept(1)

		Expect(outlet.Size()).To(Equal(1))
	})

	It("should not accept if the outlet is full", func() {
		pipeline.Accept(1)

		Expect(pipeline.CanAccept()).To(BeFalse())
		Expect(func() { pipeline.Accept(2) }).To(Panic())
	})
})

var _ = Describe("Pipeline with a FIFO outlet", func() {
	It("should keep the order of items", func() {
		outlet := stream.NewFIFO[string]("Post", 8)
		pipeline := MakeBuilder[string]().
			WithNumStage(2).
			WithOutlet(outlet).
			Build("Pipeline")

		for i := 0; i < 3; i++ {
			pipeline.Accept(string(rune('a' + i)))
			pipeline.Tick()
		}

		for pipeline.Tick() {
		}

		Expect(outlet.Drain()).To(Equal([]string{"a", "b", "c"}))
	})
})
