// Package command implements the SATA command layer. It turns block requests
// into outbound FIS units and classifies inbound FIS units back into the
// events that complete a command.
package command

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/metrics"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
	"github.com/sarchlab/satacmd/tracing"
)

// HookPosFISSent marks an outbound unit taken by the transport. The item is
// the fis.Unit.
var HookPosFISSent = &sim.HookPos{Name: "FISSent"}

// HookPosFISReceived marks an inbound unit accepted from the transport. The
// item is the fis.Unit and the detail is its Disposition.
var HookPosFISReceived = &sim.HookPos{Name: "FISReceived"}

// Comp is the command layer. It owns one issuer and one classifier sharing a
// transport duplex stream. In every cycle the classifier is evaluated first so
// that the issuer sees the events of the same cycle.
type Comp struct {
	*sim.ComponentBase

	engine  sim.Engine
	freq    sim.Freq
	log     logr.Logger
	metrics *metrics.Collector

	req stream.Source[Request]
	rsp stream.Sink[Response]
	tx  stream.Sink[fis.Unit]
	rx  stream.Source[fis.Unit]

	state      State
	lastEvents Events

	cmdID    string
	cmdOp    Operation
	cmdStart uint64
}

// State returns the issuer state that the next cycle starts in.
func (c *Comp) State() State {
	return c.state
}

// LastEvents returns the events raised in the last evaluated cycle.
func (c *Comp) LastEvents() Events {
	return c.lastEvents
}

// Busy tells if a command is in flight.
func (c *Comp) Busy() bool {
	return c.state != Idle
}

// Tick evaluates one cycle.
func (c *Comp) Tick() bool {
	rx, rxValid := c.rx.Peek()
	cls := Classify(ClassifierInput{
		Rx:       rx,
		RxValid:  rxValid,
		RspReady: c.rsp.Ready(),
	})
	c.applyClassifier(rx, cls)

	req, reqValid := c.req.Peek()
	in := IssuerInput{
		Req:      req,
		ReqValid: reqValid,
		TxReady:  c.tx.Ready(),
		Events:   cls.Events,
	}
	next, out := IssuerStep(c.state, in)
	c.applyIssuer(in, out)

	if c.state == Idle && out.ReqAccept {
		c.logDiscarded(req)
	}

	madeProgress := cls.RxAccept || out.ReqAccept || out.TxFired(in) ||
		next != c.state

	c.lastEvents = cls.Events
	c.transit(next, req)

	if !madeProgress && c.state.Waiting() {
		c.metrics.Parked(c.Name(), c.state.String())
	}

	return madeProgress
}

func (c *Comp) applyClassifier(rx fis.Unit, cls ClassifierOutput) {
	if cls.RspValid && cls.RxAccept {
		c.rsp.Push(cls.Rsp)
	}

	if !cls.RxAccept {
		return
	}

	c.rx.Accept()
	c.metrics.FISReceived(c.Name(), rx.Type.String())

	if cls.Disposition == Dropped {
		c.metrics.FISDropped(c.Name(), rx.Type.String())
		c.log.V(1).Info("dropped inbound FIS", "type", rx.Type.String())
	} else {
		c.log.V(2).Info("received FIS", "fis", rx.String())
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosFISReceived,
			Item:   rx,
			Detail: cls.Disposition,
		})
	}
}

func (c *Comp) logDiscarded(req Request) {
	switch {
	case !req.SOP:
		c.log.V(1).Info("discarded stray request beat",
			"data", req.Data, "eop", req.EOP)
	case req.Operation() == OpNone:
		c.log.V(1).Info("discarded request without operation",
			"address", req.Address, "length", req.Length)
	}
}

func (c *Comp) applyIssuer(in IssuerInput, out IssuerOutput) {
	if out.ReqAccept {
		c.req.Accept()
	}

	if !out.TxFired(in) {
		return
	}

	c.tx.Push(out.Tx)
	c.metrics.FISSent(c.Name(), out.Tx.Type.String())
	c.log.V(2).Info("sent FIS", "fis", out.Tx.String())

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosFISSent,
			Item:   out.Tx,
		})
	}
}

func (c *Comp) transit(next State, req Request) {
	if next == c.state {
		return
	}

	prev := c.state
	c.state = next

	if prev == Idle {
		c.startCommand(req)
	}

	c.log.V(1).Info("state transition",
		"from", prev.String(),
		"to", next.String(),
		"cycle", c.engine.CurrentCycle())

	if next == Idle {
		c.endCommand()
		return
	}

	tracing.AddTaskStep(c.cmdID, c, next.String())
}

func (c *Comp) startCommand(req Request) {
	c.cmdID = sim.GetIDGenerator().Generate()
	c.cmdOp = req.Operation()
	c.cmdStart = c.engine.CurrentCycle()

	tracing.StartTask(c.cmdID, "", c, "command", c.cmdOp.String(), req)
	c.metrics.CommandStarted(c.Name(), c.cmdOp.String())
}

func (c *Comp) endCommand() {
	cycles := c.engine.CurrentCycle() - c.cmdStart + 1

	tracing.EndTask(c.cmdID, c)
	c.metrics.CommandCompleted(c.Name(), c.cmdOp.String(), cycles)
	c.log.V(1).Info("command completed",
		"operation", c.cmdOp.String(),
		"cycles", cycles,
		"time", float64(c.freq.Period())*float64(cycles))

	c.cmdID = ""
	c.cmdOp = OpNone
}
