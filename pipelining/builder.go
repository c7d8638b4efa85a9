package pipelining

import (
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
)

// A Builder can build pipelines of T.
type Builder[T any] struct {
	numStage      int
	cyclePerStage int
	outlet        stream.Sink[T]
}

// MakeBuilder creates a default builder.
func MakeBuilder[T any]() Builder[T] {
	return Builder[T]{
		numStage:      5,
		cyclePerStage: 1,
	}
}

// WithNumStage sets the number of stages. Zero stages make a pipeline that
// hands items straight to the outlet.
func (b Builder[T]) WithNumStage(n int) Builder[T] {
	b.numStage = n
	return b
}

// WithCyclePerStage sets the number of cycles an item stays in each stage.
func (b Builder[T]) WithCyclePerStage(n int) Builder[T] {
	b.cyclePerStage = n
	return b
}

// WithOutlet sets where items go after the last stage.
func (b Builder[T]) WithOutlet(outlet stream.Sink[T]) Builder[T] {
	b.outlet = outlet
	return b
}

// Build builds a pipeline.
func (b Builder[T]) Build(name string) *Pipeline[T] {
	sim.NameMustBeValid(name)

	if b.outlet == nil {
		panic("outlet is not set")
	}

	if b.numStage < 0 || b.cyclePerStage <= 0 {
		panic("pipeline dimensions must be positive")
	}

	return &Pipeline[T]{
		name:          name,
		cyclePerStage: b.cyclePerStage,
		outlet:        b.outlet,
		stages:        make([]stage[T], b.numStage),
	}
}
