// Package pipelining provides fixed-depth delay lines that components use to
// model latency.
package pipelining

import (
	"log"

	"github.com/sarchlab/satacmd/stream"
)

type stage[T any] struct {
	item      T
	occupied  bool
	cycleLeft int
}

// A Pipeline delays items of type T by a fixed number of stages. An item that
// leaves the last stage is pushed into the outlet. While the outlet is not
// ready the item waits in the last stage and the stages behind it fill up.
type Pipeline[T any] struct {
	name          string
	cyclePerStage int
	outlet        stream.Sink[T]
	stages        []stage[T]
}

// Name returns the name of the pipeline.
func (p *Pipeline[T]) Name() string {
	return p.name
}

// Clear discards all the items in the pipeline.
func (p *Pipeline[T]) Clear() {
	p.stages = make([]stage[T], len(p.stages))
}

// NumInFlight returns the number of items in the stages.
func (p *Pipeline[T]) NumInFlight() int {
	n := 0

	for _, s := range p.stages {
		if s.occupied {
			n++
		}
	}

	return n
}

// Tick moves items forward by one cycle. The last stage is handled first so
// that a stage freed in this cycle can be refilled from behind.
func (p *Pipeline[T]) Tick() (madeProgress bool) {
	last := len(p.stages) - 1

	for i := last; i >= 0; i-- {
		s := &p.stages[i]

		if !s.occupied {
			continue
		}

		if s.cycleLeft > 0 {
			s.cycleLeft--
			madeProgress = true

			continue
		}

		if i == last {
			madeProgress = p.drain(s) || madeProgress
		} else {
			madeProgress = p.advance(i) || madeProgress
		}
	}

	return madeProgress
}

func (p *Pipeline[T]) drain(s *stage[T]) bool {
	if !p.outlet.Ready() {
		return false
	}

	p.outlet.Push(s.item)
	*s = stage[T]{}

	return true
}

func (p *Pipeline[T]) advance(i int) bool {
	next := &p.stages[i+1]
	if next.occupied {
		return false
	}

	*next = stage[T]{
		item:      p.stages[i].item,
		occupied:  true,
		cycleLeft: p.cyclePerStage - 1,
	}
	p.stages[i] = stage[T]{}

	return true
}

// CanAccept tells if an item can enter the pipeline in this cycle. A
// pipeline without stages passes the outlet's ready through.
func (p *Pipeline[T]) CanAccept() bool {
	if len(p.stages) == 0 {
		return p.outlet.Ready()
	}

	return !p.stages[0].occupied
}

// Accept puts an item into the first stage. Accepting while CanAccept is false
// panics.
func (p *Pipeline[T]) Accept(item T) {
	if !p.CanAccept() {
		log.Panicf("pipeline %s is not free, check CanAccept first", p.name)
	}

	if len(p.stages) == 0 {
		p.outlet.Push(item)
		return
	}

	p.stages[0] = stage[T]{
		item:      item,
		occupied:  true,
		cycleLeft: p.cyclePerStage - 1,
	}
}
