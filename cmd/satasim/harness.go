package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/satacmd/agent"
	"github.com/sarchlab/satacmd/command"
	"github.com/sarchlab/satacmd/config"
	"github.com/sarchlab/satacmd/datarecording"
	"github.com/sarchlab/satacmd/device"
	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/metrics"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/sim/bottleneckanalysis"
	"github.com/sarchlab/satacmd/tracing"
	"github.com/sarchlab/satacmd/transport"
)

// ErrStalled is returned when the simulation goes quiet before the script is
// done. The layer is left parked waiting for a unit that never comes.
var ErrStalled = errors.New("simulation stalled")

// ErrMismatch is returned when read data differs from what was written.
var ErrMismatch = errors.New("read data mismatch")

type harnessOptions struct {
	noise  bool
	logFIS bool
}

// A harness is the layer under test plus everything around it.
type harness struct {
	log      logr.Logger
	engine   *sim.SerialEngine
	registry *prometheus.Registry
	link     *transport.Link
	layer    *command.Comp
	drive    *device.Drive
	agent    *agent.Agent

	buffers   *bottleneckanalysis.BufferAnalyzer
	layerBusy *tracing.BusyTimeTracer
	driveBusy *tracing.BusyTimeTracer
	latency   *tracing.LatencyTracer
	steps     *tracing.StepCountTracer

	recorder datarecording.DataRecorder
	tracer   *tracing.DBTracer
}

func newHarness(
	cfg config.Config,
	opts harnessOptions,
	log logr.Logger,
	progress agent.Progress,
) (*harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &harness{
		log:      log,
		engine:   sim.NewSerialEngine(cfg.Freq()),
		registry: prometheus.NewRegistry(),
	}
	h.engine.SetCycleLimit(cfg.MaxCycles)

	h.link = transport.MakeBuilder().
		WithEngine(h.engine).
		WithLatency(cfg.LinkLatency).
		Build("Link")
	hostTx, hostRx := h.link.HostSide()
	devTx, devRx := h.link.DeviceSide()

	agentBuilder := agent.MakeBuilder().
		WithEngine(h.engine).
		WithLogger(log)
	if progress != nil {
		agentBuilder = agentBuilder.WithProgress(progress)
	}
	h.agent = agentBuilder.Build("Agent")

	h.layer = command.MakeBuilder().
		WithEngine(h.engine).
		WithFreq(cfg.Freq()).
		WithLogger(log).
		WithMetrics(metrics.NewCollector(h.registry)).
		WithTransport(hostTx, hostRx).
		WithCaller(h.agent.Requests(), h.agent.Responses()).
		Build("Layer")
	h.agent.ConnectLayer(h.layer)

	h.drive = device.MakeBuilder().
		WithEngine(h.engine).
		WithLogger(log).
		WithTransport(devTx, devRx).
		WithSectors(cfg.DeviceSectors).
		WithLatency(cfg.DeviceLatency).
		WithNoise(opts.noise).
		Build("Drive")

	h.collectStats()

	if opts.logFIS {
		h.layer.AcceptHook(command.NewFISLogger(log.WithName("fis"), h.engine))
	}

	if cfg.TraceDB != "" {
		if err := h.startTracing(cfg.TraceDB); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func (h *harness) collectStats() {
	h.buffers = bottleneckanalysis.MakeBufferAnalyzerBuilder().
		WithTimeTeller(h.engine).
		Build()
	for _, buf := range h.link.Buffers() {
		h.buffers.Watch(buf)
	}

	h.layerBusy = tracing.NewBusyTimeTracer(h.engine, tracing.KindIs("command"))
	h.driveBusy = tracing.NewBusyTimeTracer(h.engine, tracing.KindIs("device"))
	h.latency = tracing.NewLatencyTracer(h.engine, tracing.KindIs("command"))
	h.steps = tracing.NewStepCountTracer(tracing.KindIs("command"))

	tracing.CollectTrace(h.layer, h.layerBusy)
	tracing.CollectTrace(h.layer, h.latency)
	tracing.CollectTrace(h.layer, h.steps)
	tracing.CollectTrace(h.drive, h.driveBusy)
}

func (h *harness) startTracing(path string) error {
	recorder, err := datarecording.New(path)
	if err != nil {
		return fmt.Errorf("open trace database: %w", err)
	}

	h.recorder = recorder
	h.tracer = tracing.NewDBTracer(h.engine, recorder)
	tracing.CollectTrace(h.layer, h.tracer)
	tracing.CollectTrace(h.drive, h.tracer)

	return nil
}

func (h *harness) components() []sim.Component {
	return []sim.Component{h.agent, h.layer, h.link, h.drive}
}

// run evaluates cycles until the script completes or the simulation stops
// making progress.
func (h *harness) run(ctx context.Context) error {
	err := h.engine.Run(ctx)

	h.layerBusy.TerminateAllTasks()
	h.driveBusy.TerminateAllTasks()

	if err != nil {
		return fmt.Errorf("run stopped at cycle %d in state %s: %w",
			h.engine.CurrentCycle(), h.layer.State(), err)
	}

	if !h.agent.Done() {
		op, _ := h.agent.Pending()
		return fmt.Errorf("%w at cycle %d: %s parked in %s",
			ErrStalled, h.engine.CurrentCycle(), op, h.layer.State())
	}

	if n := h.agent.Mismatches(); n > 0 {
		return fmt.Errorf("%w: %d words", ErrMismatch, n)
	}

	return nil
}

// close writes the trace out.
func (h *harness) close() error {
	if h.tracer == nil {
		return nil
	}

	h.tracer.Terminate()

	return h.recorder.Close()
}

// scriptOps builds n write and read back pairs of count sectors each,
// starting at lba, preceded by an identify.
func scriptOps(n int, lba uint64, count uint16) []agent.Op {
	ops := []agent.Op{{Kind: command.OpIdentify}}

	for i := 0; i < n; i++ {
		start := lba + uint64(i)*uint64(count)
		payload := make([]uint32, int(count)*fis.WordsPerSector)
		for j := range payload {
			payload[j] = uint32(start)<<20 ^ uint32(i)<<12 ^ uint32(j)
		}

		ops = append(ops,
			agent.Op{Kind: command.OpWrite, LBA: start, Count: count,
				Payload: payload},
			agent.Op{Kind: command.OpRead, LBA: start, Count: count},
		)
	}

	return ops
}
