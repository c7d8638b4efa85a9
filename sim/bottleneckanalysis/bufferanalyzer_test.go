package bottleneckanalysis

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/satacmd/sim"
)

var _ = Describe("BufferAnalyzer", func() {
	var (
		mockCtrl       *gomock.Controller
		timeTeller     *MockTimeTeller
		bufferAnalyzer *BufferAnalyzer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)

		bufferAnalyzer = MakeBufferAnalyzerBuilder().
			WithTimeTeller(timeTeller).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic without a time teller", func() {
		Expect(func() { MakeBufferAnalyzerBuilder().Build() }).To(Panic())
	})

	It("should calculate average buffer level", func() {
		buf := sim.NewQueue[int]("Buf", 10)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0))
		bufferAnalyzer.Watch(buf)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0))
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(10))
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(20))
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(30))
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(40))

		buf.Push(1)
		buf.Push(1)
		buf.Push(1)
		buf.Push(1)
		buf.Push(1)

		Expect(bufferAnalyzer.AverageLevel("Buf")).To(Equal(2.5))
	})

	It("should track pops and the maximum level", func() {
		buf := sim.NewQueue[int]("Buf", 4)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0))
		bufferAnalyzer.Watch(buf)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0))
		buf.Push(1)
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0))
		buf.Push(2)
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		buf.Pop()
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(8))
		buf.Pop()

		levels := bufferAnalyzer.Levels()
		Expect(levels).To(HaveLen(1))
		Expect(levels[0].Max).To(Equal(2))
		Expect(levels[0].Current).To(Equal(0))
		Expect(levels[0].Average).To(Equal(1.5))
		Expect(levels[0].Capacity).To(Equal(4))
	})

	It("should reject watching a buffer twice", func() {
		buf := sim.NewQueue[int]("Buf", 4)
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0)).AnyTimes()

		bufferAnalyzer.Watch(buf)

		Expect(func() { bufferAnalyzer.Watch(buf) }).To(Panic())
	})

	It("should report every buffer", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0)).AnyTimes()
		bufferAnalyzer.Watch(sim.NewQueue[int]("B", 2))
		bufferAnalyzer.Watch(sim.NewQueue[int]("A", 2))

		out := &bytes.Buffer{}
		bufferAnalyzer.Report(out)

		lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
		Expect(lines).To(HaveLen(3))
		Expect(string(lines[1])).To(HavePrefix("A, "))
		Expect(string(lines[2])).To(HavePrefix("B, "))
	})
})
