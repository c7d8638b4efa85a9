// Package transport models the link between the command layer and a device.
// Integrity is assumed. The link only delays units.
package transport

import (
	"github.com/sarchlab/satacmd/fis"
	"github.com/sarchlab/satacmd/pipelining"
	"github.com/sarchlab/satacmd/sim"
	"github.com/sarchlab/satacmd/stream"
)

// A direction is one half of the duplex link.
type direction struct {
	in       *stream.FIFO[fis.Unit]
	pipeline *pipelining.Pipeline[fis.Unit]
	out      *stream.FIFO[fis.Unit]
}

func (d *direction) tick() bool {
	madeProgress := d.pipeline.Tick()

	u, ok := d.in.Peek()
	if !ok || !d.pipeline.CanAccept() {
		return madeProgress
	}

	d.pipeline.Accept(u)
	d.in.Accept()

	return true
}

// Link is a fixed-latency duplex link. Units pushed on one side come out of
// the other side after the latency, in order.
type Link struct {
	*sim.ComponentBase

	down direction
	up   direction
}

// HostSide returns the streams the host uses: the sink it sends on and the
// source it receives from.
func (l *Link) HostSide() (stream.Sink[fis.Unit], stream.Source[fis.Unit]) {
	return l.down.in, l.up.out
}

// DeviceSide returns the streams the device uses.
func (l *Link) DeviceSide() (stream.Sink[fis.Unit], stream.Source[fis.Unit]) {
	return l.up.in, l.down.out
}

// Pipelines returns the two delay lines, host to device first.
func (l *Link) Pipelines() []*pipelining.Pipeline[fis.Unit] {
	return []*pipelining.Pipeline[fis.Unit]{l.down.pipeline, l.up.pipeline}
}

// Buffers returns all the buffers of the link.
func (l *Link) Buffers() []sim.Buffer {
	return []sim.Buffer{
		l.down.in.Buffer(), l.down.out.Buffer(),
		l.up.in.Buffer(), l.up.out.Buffer(),
	}
}

// Tick moves units in both directions.
func (l *Link) Tick() bool {
	madeProgress := l.down.tick()
	madeProgress = l.up.tick() || madeProgress

	return madeProgress
}
