// Package agent drives the command layer from the host side. It plays a
// script of block operations and checks the data that comes back.
package agent

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/satacmd/command"
	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
)

// A Layer is a command layer as seen by its caller. The layer takes request
// beats from Agent.Requests and hands payload beats to Agent.Responses.
type Layer interface {
	Busy() bool
}

// A Progress tracks how many operations are done.
type Progress interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// An Op is one block operation of a script.
type Op struct {
	Kind    command.Operation
	LBA     uint64
	Count   uint16
	Payload []uint32
}

func (o Op) String() string {
	return fmt.Sprintf("%s lba=%d count=%d", o.Kind, o.LBA, o.Count)
}

// A Result is the outcome of one operation.
type Result struct {
	Op         Op
	Data       []uint32
	Mismatches int
	StartCycle uint64
	EndCycle   uint64
}

// Agent plays a script into a command layer, one operation at a time.
type Agent struct {
	*sim.ComponentBase

	engine   sim.Engine
	log      logr.Logger
	layer    Layer
	progress Progress

	script  []Op
	next    int
	beats   []command.Request
	started bool
	current *Result

	written map[uint64]uint32
	results []Result
}

// ConnectLayer sets the command layer the agent drives. The layer must be
// built with the agent's Requests and Responses as its caller streams.
func (a *Agent) ConnectLayer(l Layer) {
	a.layer = l
}

// Requests is the stream the layer takes request beats from. A beat leaves
// the agent only when the layer accepts it.
func (a *Agent) Requests() stream.Source[command.Request] {
	return requestPort{a: a}
}

// Responses is the stream the layer delivers payload beats into. The agent
// accepts every beat in the cycle it is offered.
func (a *Agent) Responses() stream.Sink[command.Response] {
	return responsePort{a: a}
}

// Enqueue appends operations to the script.
func (a *Agent) Enqueue(ops ...Op) {
	a.script = append(a.script, ops...)
}

// Done tells if every operation of the script has completed.
func (a *Agent) Done() bool {
	return a.current == nil && a.next >= len(a.script)
}

// Pending returns the operation in flight, if any.
func (a *Agent) Pending() (Op, bool) {
	if a.current == nil {
		return Op{}, false
	}

	return a.current.Op, true
}

// Results returns the completed operations in order.
func (a *Agent) Results() []Result {
	return a.results
}

// Mismatches returns the number of read words that differ from what was
// written before.
func (a *Agent) Mismatches() int {
	n := 0
	for _, r := range a.results {
		n += r.Mismatches
	}

	return n
}

// Tick advances the agent by one cycle.
func (a *Agent) Tick() bool {
	if a.layer == nil {
		panic("layer is not connected")
	}

	if a.current == nil {
		return a.startNext()
	}

	if len(a.beats) > 0 {
		return false
	}

	return a.checkCompletion()
}

type requestPort struct {
	a *Agent
}

func (p requestPort) Peek() (command.Request, bool) {
	if len(p.a.beats) == 0 {
		return command.Request{}, false
	}

	return p.a.beats[0], true
}

func (p requestPort) Accept() {
	if len(p.a.beats) == 0 {
		panic("accept without a valid request beat")
	}

	p.a.beats = p.a.beats[1:]
}

type responsePort struct {
	a *Agent
}

func (p responsePort) Ready() bool {
	return true
}

func (p responsePort) Push(rsp command.Response) {
	if p.a.current == nil {
		p.a.log.Info("response without a command", "data", rsp.Data)
		return
	}

	p.a.current.Data = append(p.a.current.Data, rsp.Data)
}

func (a *Agent) startNext() bool {
	if a.next >= len(a.script) {
		return false
	}

	op := a.script[a.next]
	a.next++

	a.current = &Result{Op: op, StartCycle: a.engine.CurrentCycle()}
	a.started = false
	a.beats = beatsOf(op)

	if a.progress != nil {
		a.progress.IncrementInProgress(1)
	}

	a.log.V(1).Info("operation started", "op", op.String())

	return true
}

func beatsOf(op Op) []command.Request {
	switch op.Kind {
	case command.OpWrite:
		return command.NewWriteRequest(op.LBA, op.Count, op.Payload)
	case command.OpRead:
		return []command.Request{command.NewReadRequest(op.LBA, op.Count)}
	case command.OpIdentify:
		return []command.Request{command.NewIdentifyRequest()}
	default:
		panic(fmt.Sprintf("cannot script operation %s", op.Kind))
	}
}

func (a *Agent) checkCompletion() bool {
	busy := a.layer.Busy()
	if busy {
		a.started = true
		return false
	}

	if !a.started {
		return false
	}

	switch a.current.Op.Kind {
	case command.OpRead:
		if len(a.current.Data) < expectedWords(a.current.Op) {
			return false
		}
	case command.OpIdentify:
		if len(a.current.Data) < fis.IdentifyDwords {
			return false
		}
	}

	a.complete()

	return true
}

func expectedWords(op Op) int {
	count := int(op.Count)
	if count == 0 {
		count = 1 << 16
	}

	return count * fis.WordsPerSector
}

func (a *Agent) complete() {
	r := a.current
	r.EndCycle = a.engine.CurrentCycle()

	switch r.Op.Kind {
	case command.OpWrite:
		a.remember(r.Op)
	case command.OpRead:
		r.Mismatches = a.verify(r.Op, r.Data)
	}

	a.results = append(a.results, *r)
	a.current = nil

	if a.progress != nil {
		a.progress.MoveInProgressToFinished(1)
	}

	a.log.V(1).Info("operation completed",
		"op", r.Op.String(),
		"cycles", r.EndCycle-r.StartCycle,
		"mismatches", r.Mismatches)
}

func (a *Agent) remember(op Op) {
	base := op.LBA * fis.WordsPerSector
	for i, w := range op.Payload {
		a.written[base+uint64(i)] = w
	}
}

func (a *Agent) verify(op Op, data []uint32) int {
	mismatches := 0
	base := op.LBA * fis.WordsPerSector

	for i, w := range data {
		expected, ok := a.written[base+uint64(i)]
		if !ok {
			continue
		}

		if w != expected {
			mismatches++
		}
	}

	if mismatches > 0 {
		a.log.Info("read data mismatch",
			"op", op.String(), "words", mismatches)
	}

	return mismatches
}
