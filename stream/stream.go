// Package stream provides valid/ready handshake channels that carry framed
// units between components.
//
// A producer checks Sink.Ready before calling Sink.Push. A consumer sees the
// head of a channel with Source.Peek and takes it with Source.Accept. Units
// are framed with start-of-unit and end-of-unit markers exposed through Beat.
package stream

// A Beat is one transfer on a stream. A logical unit spans all the beats from
// the one that starts it to the one that ends it.
type Beat interface {
	StartOfUnit() bool
	EndOfUnit() bool
}

// A Source is the consuming end of a stream.
type Source[T any] interface {
	// Peek returns the beat at the head of the stream. The bool is the valid
	// signal; it is false when no beat is offered.
	Peek() (T, bool)

	// Accept takes the beat returned by Peek.
	Accept()
}

// A Sink is the producing end of a stream.
type Sink[T any] interface {
	// Ready tells if the stream can take a beat in this cycle.
	Ready() bool

	// Push offers a beat. Pushing when the sink is not ready is a
	// programming error.
	Push(b T)
}
