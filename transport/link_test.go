package transport

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/sim"
)

var _ = Describe("Link", func() {
	var (
		engine *sim.SerialEngine
		link   *Link
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine(1 * sim.GHz)
		link = MakeBuilder().
			WithEngine(engine).
			WithLatency(3).
			WithBufferSize(2).
			Build("Link")
	})

	It("should panic without an engine", func() {
		Expect(func() { MakeBuilder().Build("Link") }).To(Panic())
	})

	It("should deliver host units to the device after the latency", func() {
		hostTx, _ := link.HostSide()
		_, devRx := link.DeviceSide()

		hostTx.Push(fis.Unit{Type: fis.TypeRegH2D, SOP: true, EOP: true})

		engine.RunCycles(3)
		_, ok := devRx.Peek()
		Expect(ok).To(BeFalse())

		engine.RunCycles(1)
		u, ok := devRx.Peek()
		Expect(ok).To(BeTrue())
		Expect(u.Type).To(Equal(fis.TypeRegH2D))

		devRx.Accept()
		_, ok = devRx.Peek()
		Expect(ok).To(BeFalse())
	})

	It("should deliver device units to the host in order", func() {
		devTx, _ := link.DeviceSide()
		_, hostRx := link.HostSide()

		devTx.Push(fis.Unit{Type: fis.TypeData, Data: 1, SOP: true})
		devTx.Push(fis.Unit{Type: fis.TypeData, Data: 2, EOP: true})
		Expect(devTx.Ready()).To(BeFalse())

		Expect(engine.Run(context.Background())).To(Succeed())

		var got []uint32
		for {
			u, ok := hostRx.Peek()
			if !ok {
				break
			}
			got = append(got, u.Data)
			hostRx.Accept()
		}
		Expect(got).To(Equal([]uint32{1, 2}))
	})

	It("should hold units when the far end is full", func() {
		hostTx, _ := link.HostSide()

		for i := 0; i < 2; i++ {
			hostTx.Push(fis.Unit{Type: fis.TypeData, Data: uint32(i)})
		}
		engine.RunCycles(20)
		for i := 2; i < 4; i++ {
			Expect(hostTx.Ready()).To(BeTrue())
			hostTx.Push(fis.Unit{Type: fis.TypeData, Data: uint32(i)})
		}
		engine.RunCycles(20)

		Expect(link.Pipelines()[0].NumInFlight()).To(Equal(2))
		Expect(engine.RunCycles(1)).To(BeFalse())
	})

	It("should panic on accept without a unit", func() {
		_, hostRx := link.HostSide()

		Expect(func() { hostRx.Accept() }).To(Panic())
	})

	It("should pass units straight through with zero latency", func() {
		link = MakeBuilder().
			WithEngine(engine).
			WithLatency(0).
			Build("Wire")
		hostTx, _ := link.HostSide()
		_, devRx := link.DeviceSide()

		hostTx.Push(fis.Unit{Type: fis.TypeRegH2D})
		link.Tick()

		_, ok := devRx.Peek()
		Expect(ok).To(BeTrue())
	})
})
