package agent

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/satacmd/sim"
)

// A Builder can build agents.
type Builder struct {
	engine   sim.Engine
	log      logr.Logger
	progress Progress
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		log: logr.Discard(),
	}
}

// WithEngine sets the engine that ticks the agent.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log logr.Logger) Builder {
	b.log = log
	return b
}

// WithProgress reports operation progress to p.
func (b Builder) WithProgress(p Progress) Builder {
	b.progress = p
	return b
}

// Build creates an agent and registers it with the engine. The agent must be
// connected to a layer with ConnectLayer before the engine runs.
func (b Builder) Build(name string) *Agent {
	if b.engine == nil {
		panic("engine is not set")
	}

	a := &Agent{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		log:           b.log.WithName(name),
		progress:      b.progress,
		written:       make(map[uint64]uint32),
	}

	b.engine.RegisterTicker(a)

	return a
}
