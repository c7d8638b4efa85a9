package stream

// A Recorder is a Sink that records every beat pushed into it. Setting Stall
// makes the recorder deassert ready, which is how tests apply backpressure.
type Recorder[T any] struct {
	Stall bool
	Beats []T
}

// Ready is the inverse of Stall.
func (r *Recorder[T]) Ready() bool {
	return !r.Stall
}

// Push records the beat.
func (r *Recorder[T]) Push(b T) {
	if r.Stall {
		panic("push into a stalled recorder")
	}

	r.Beats = append(r.Beats, b)
}

// Units splits the recorded beats into units using the start and end markers.
// Beats outside a unit are dropped.
func Units[T Beat](beats []T) [][]T {
	var units [][]T
	var current []T
	inUnit := false

	for _, b := range beats {
		if b.StartOfUnit() {
			current = nil
			inUnit = true
		}

		if !inUnit {
			continue
		}

		current = append(current, b)

		if b.EndOfUnit() {
			units = append(units, current)
			inUnit = false
		}
	}

	return units
}
