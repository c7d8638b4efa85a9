package command

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/metrics"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
)

// A Builder can build command layers.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	log        logr.Logger
	metrics    *metrics.Collector
	tx         stream.Sink[fis.Unit]
	rx         stream.Source[fis.Unit]
	req        stream.Source[Request]
	rsp        stream.Sink[Response]
	noRegister bool
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 150 * sim.MHz,
		log:  logr.Discard(),
	}
}

// WithEngine sets the engine that drives the layer.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock the layer runs at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log logr.Logger) Builder {
	b.log = log
	return b
}

// WithMetrics sets the metric collector.
func (b Builder) WithMetrics(m *metrics.Collector) Builder {
	b.metrics = m
	return b
}

// WithTransport connects the layer to the outbound and inbound transport
// streams.
func (b Builder) WithTransport(
	tx stream.Sink[fis.Unit],
	rx stream.Source[fis.Unit],
) Builder {
	b.tx = tx
	b.rx = rx
	return b
}

// WithCaller connects the layer to the stream the caller offers request beats
// on and the stream the caller takes payload beats from. The layer holds no
// beats of its own, so the caller's handshake is the layer's handshake.
func (b Builder) WithCaller(
	req stream.Source[Request],
	rsp stream.Sink[Response],
) Builder {
	b.req = req
	b.rsp = rsp
	return b
}

// WithoutRegistration builds a layer that is not registered with the engine.
// The owner is then responsible for ticking it.
func (b Builder) WithoutRegistration() Builder {
	b.noRegister = true
	return b
}

// Build creates a layer and registers it with the engine.
func (b Builder) Build(name string) *Comp {
	b.mustBeValid()

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		freq:          b.freq,
		log:           b.log.WithName(name),
		metrics:       b.metrics,
		tx:            b.tx,
		rx:            b.rx,
		req:           b.req,
		rsp:           b.rsp,
		state:         Idle,
	}

	if !b.noRegister {
		b.engine.RegisterTicker(c)
	}

	return c
}

func (b Builder) mustBeValid() {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.tx == nil || b.rx == nil {
		panic("transport is not set")
	}

	if b.req == nil || b.rsp == nil {
		panic("caller is not set")
	}

	if b.freq <= 0 {
		panic("frequency must be positive")
	}
}
