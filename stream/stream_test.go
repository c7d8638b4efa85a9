package stream_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/satacmd/stream"
)

type beat struct {
	v        int
	sop, eop bool
}

func (b beat) StartOfUnit() bool { return b.sop }
func (b beat) EndOfUnit() bool   { return b.eop }

var _ = Describe("FIFO", func() {
	var f *stream.FIFO[beat]

	BeforeEach(func() {
		f = stream.NewFIFO[beat]("Test.FIFO", 2)
	})

	It("should not be valid when empty", func() {
		_, valid := f.Peek()
		Expect(valid).To(BeFalse())
		Expect(func() { f.Accept() }).To(Panic())
	})

	It("should deliver beats in order and deassert ready when full", func() {
		f.Push(beat{v: 1, sop: true})
		Expect(f.Ready()).To(BeTrue())
		f.Push(beat{v: 2, eop: true})
		Expect(f.Ready()).To(BeFalse())

		b, valid := f.Peek()
		Expect(valid).To(BeTrue())
		Expect(b.v).To(Equal(1))

		b, _ = f.Peek()
		Expect(b.v).To(Equal(1), "peek must not consume")

		f.Accept()
		Expect(f.Ready()).To(BeTrue())

		Expect(f.Drain()).To(Equal([]beat{{v: 2, eop: true}}))
		Expect(f.Size()).To(Equal(0))
	})
})

var _ = Describe("Recorder", func() {
	It("should record and refuse pushes while stalled", func() {
		p := &stream.Recorder[beat]{}
		p.Push(beat{v: 1})

		p.Stall = true
		Expect(p.Ready()).To(BeFalse())
		Expect(func() { p.Push(beat{v: 2}) }).To(Panic())
		Expect(p.Beats).To(HaveLen(1))
	})
})

var _ = Describe("Units", func() {
	It("should split beats by markers", func() {
		beats := []beat{
			{v: 0},
			{v: 1, sop: true, eop: true},
			{v: 2, sop: true},
			{v: 3},
			{v: 4, eop: true},
			{v: 5, sop: true},
		}

		units := stream.Units(beats)

		Expect(units).To(HaveLen(2))
		Expect(units[0]).To(HaveLen(1))
		Expect(units[1]).To(HaveLen(3))
		Expect(units[1][2].v).To(Equal(4))
	})
})
