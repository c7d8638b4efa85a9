package command

import (
	"strings"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/sim"
)

var _ = Describe("FISLogger", func() {
	var (
		lines  []string
		engine *sim.SerialEngine
		h      *FISLogger
		layer  *Comp
	)

	BeforeEach(func() {
		lines = nil
		engine = sim.NewSerialEngine(1 * sim.GHz)
		logger := funcr.New(func(_, args string) {
			lines = append(lines, args)
		}, funcr.Options{})
		h = NewFISLogger(logger, engine)
		layer = &Comp{ComponentBase: sim.NewComponentBase("Cmd")}
	})

	It("should log the wire image of a register unit", func() {
		u := fis.Unit{
			Type:    fis.TypeRegH2D,
			C:       true,
			Command: fis.CmdReadDMAExt,
			Device:  fis.DeviceLBA,
			Count:   1,
			SOP:     true,
			EOP:     true,
		}

		h.Func(sim.HookCtx{Domain: layer, Pos: HookPosFISSent, Item: u})

		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(ContainSubstring(`"dir"="tx"`))
		Expect(lines[0]).To(ContainSubstring(`"type"="REG_H2D"`))
		Expect(lines[0]).To(ContainSubstring(`"wire"="27`))
	})

	It("should log data beats by word and disposition", func() {
		u := fis.Unit{Type: fis.TypeData, Data: 0xCAFE, SOP: true}

		h.Func(sim.HookCtx{
			Domain: layer,
			Pos:    HookPosFISReceived,
			Item:   u,
			Detail: Forwarded,
		})

		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(ContainSubstring(`"dir"="rx"`))
		Expect(lines[0]).To(ContainSubstring(`"disposition"="Forwarded"`))
		Expect(lines[0]).To(ContainSubstring(`"data"=51966`))
		Expect(strings.Contains(lines[0], `"wire"`)).To(BeFalse())
	})

	It("should fall back to the text form for units without a layout", func() {
		u := fis.Unit{Type: fis.TypeSetDeviceBitsD2H, SOP: true, EOP: true}

		h.Func(sim.HookCtx{
			Domain: layer,
			Pos:    HookPosFISReceived,
			Item:   u,
			Detail: Dropped,
		})

		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(ContainSubstring(`"fis"="SET_DEVICE_BITS_D2H"`))
	})

	It("should ignore other hook positions", func() {
		h.Func(sim.HookCtx{Domain: layer, Pos: sim.HookPosAfterTick, Item: uint64(0)})

		Expect(lines).To(BeEmpty())
	})
})
