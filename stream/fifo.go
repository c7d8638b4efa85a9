package stream

import (
	"log"

	"github.com/sarchlab/satacmd/sim"
)

// A FIFO is a bounded stream that implements both ends.
type FIFO[T any] struct {
	buf *sim.Queue[T]
}

// NewFIFO creates a FIFO that can hold capacity beats.
func NewFIFO[T any](name string, capacity int) *FIFO[T] {
	return &FIFO[T]{buf: sim.NewQueue[T](name, capacity)}
}

// Name returns the name of the FIFO.
func (f *FIFO[T]) Name() string {
	return f.buf.Name()
}

// Buffer exposes the underlying buffer, mainly for monitoring.
func (f *FIFO[T]) Buffer() sim.Buffer {
	return f.buf
}

// Peek returns the head beat.
func (f *FIFO[T]) Peek() (T, bool) {
	return f.buf.Peek()
}

// Accept removes the head beat.
func (f *FIFO[T]) Accept() {
	if _, ok := f.buf.Pop(); !ok {
		log.Panicf("%s: accept without a valid beat", f.buf.Name())
	}
}

// Ready tells if the FIFO has room for one more beat.
func (f *FIFO[T]) Ready() bool {
	return f.buf.CanPush()
}

// Push appends a beat.
func (f *FIFO[T]) Push(b T) {
	f.buf.Push(b)
}

// Size returns the number of beats held.
func (f *FIFO[T]) Size() int {
	return f.buf.Size()
}

// Drain accepts every beat held and returns them in order.
func (f *FIFO[T]) Drain() []T {
	var beats []T

	for {
		b, ok := f.Peek()
		if !ok {
			return beats
		}

		beats = append(beats, b)
		f.Accept()
	}
}
