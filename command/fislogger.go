package command

import (
	"encoding/hex"

	"github.com/go-logr/logr"

	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/sim"
)

// A FISLogger is a hook that logs every unit that crosses the transport
// boundary of a command layer. Register and DMA activate units are logged
// with their wire image; data beats are logged by their word.
type FISLogger struct {
	log        logr.Logger
	timeTeller sim.TimeTeller
}

// NewFISLogger creates a FISLogger that writes to the logger.
func NewFISLogger(l logr.Logger, timeTeller sim.TimeTeller) *FISLogger {
	return &FISLogger{log: l, timeTeller: timeTeller}
}

// Func logs the unit carried by the hook context.
func (h *FISLogger) Func(ctx sim.HookCtx) {
	var dir string

	switch ctx.Pos {
	case HookPosFISSent:
		dir = "tx"
	case HookPosFISReceived:
		dir = "rx"
	default:
		return
	}

	u, ok := ctx.Item.(fis.Unit)
	if !ok {
		return
	}

	kv := []interface{}{
		"dir", dir,
		"time", float64(h.timeTeller.CurrentTime()),
		"type", u.Type.String(),
	}

	if d, ok := ctx.Detail.(Disposition); ok {
		kv = append(kv, "disposition", d.String())
	}

	if u.Type == fis.TypeData || !u.SOP {
		kv = append(kv, "data", u.Data, "eop", u.EOP)
		h.log.Info("fis", kv...)

		return
	}

	wire, err := fis.Encode(u)
	if err != nil {
		kv = append(kv, "fis", u.String())
		h.log.Info("fis", kv...)

		return
	}

	kv = append(kv, "wire", hex.EncodeToString(wire))
	h.log.Info("fis", kv...)
}
