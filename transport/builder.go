package transport

import (
	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/pipelining"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
)

// A Builder can build links.
type Builder struct {
	engine  sim.Engine
	latency int
	bufSize int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		latency: 4,
		bufSize: 4,
	}
}

// WithEngine sets the engine that ticks the link.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithLatency sets the number of cycles a unit spends on the link.
func (b Builder) WithLatency(cycles int) Builder {
	b.latency = cycles
	return b
}

// WithBufferSize sets the number of units each end can hold.
func (b Builder) WithBufferSize(n int) Builder {
	b.bufSize = n
	return b
}

// Build creates a link and registers it with the engine.
func (b Builder) Build(name string) *Link {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.latency < 0 {
		panic("latency must not be negative")
	}

	l := &Link{
		ComponentBase: sim.NewComponentBase(name),
	}

	l.down = b.buildDirection(name + ".Down")
	l.up = b.buildDirection(name + ".Up")

	b.engine.RegisterTicker(l)

	return l
}

func (b Builder) buildDirection(name string) direction {
	out := stream.NewFIFO[fis.Unit](name+".OutBuf", b.bufSize)

	return direction{
		in: stream.NewFIFO[fis.Unit](name+".InBuf", b.bufSize),
		pipeline: pipelining.MakeBuilder[fis.Unit]().
			WithNumStage(b.latency).
			WithOutlet(out).
			Build(name + ".Pipeline"),
		out: out,
	}
}
