// Package bottleneckanalysis uses buffer levels to find where a simulation
// backs up.
package bottleneckanalysis

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sarchlab/satacmd/sim"
)

// BufferAnalyzer can use buffer levels to analyze the bottleneck of the system.
// It keeps the time-weighted level of every watched buffer.
type BufferAnalyzer struct {
	timeTeller sim.TimeTeller

	lock    sync.Mutex
	buffers map[string]*bufferInfo
}

type bufferInfo struct {
	buf                sim.Buffer
	lastBufLevel       int
	lastTime           sim.VTimeInSec
	maxBufLevel        int
	bufLevelToDuration map[int]sim.VTimeInSec
}

func (b *bufferInfo) averageBufLevel() float64 {
	sum := 0.0
	durationSum := 0.0
	for level, duration := range b.bufLevelToDuration {
		sum += float64(level) * float64(duration)
		durationSum += float64(duration)
	}

	if durationSum == 0.0 {
		return 0.0
	}

	return sum / durationSum
}

// A BufferLevel summarizes one watched buffer.
type BufferLevel struct {
	Name     string
	Current  int
	Max      int
	Average  float64
	Capacity int
}

// Watch starts recording the level of a buffer.
func (b *BufferAnalyzer) Watch(buf sim.Buffer) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if _, ok := b.buffers[buf.Name()]; ok {
		panic(fmt.Sprintf("buffer %s is already watched", buf.Name()))
	}

	b.buffers[buf.Name()] = &bufferInfo{
		buf:                buf,
		lastBufLevel:       buf.Size(),
		lastTime:           b.timeTeller.CurrentTime(),
		maxBufLevel:        buf.Size(),
		bufLevelToDuration: make(map[int]sim.VTimeInSec),
	}

	buf.AcceptHook(b)
}

// Func is a function that records buffer level change.
func (b *BufferAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBufPush && ctx.Pos != sim.HookPosBufPop {
		return
	}

	buf := ctx.Domain.(sim.Buffer)
	now := b.timeTeller.CurrentTime()

	b.lock.Lock()
	defer b.lock.Unlock()

	bufInfo, ok := b.buffers[buf.Name()]
	if !ok {
		panic("buffer not watched by BufferAnalyzer")
	}

	bufInfo.bufLevelToDuration[bufInfo.lastBufLevel] += now - bufInfo.lastTime
	bufInfo.lastTime = now
	bufInfo.lastBufLevel = buf.Size()

	if bufInfo.lastBufLevel > bufInfo.maxBufLevel {
		bufInfo.maxBufLevel = bufInfo.lastBufLevel
	}
}

// AverageLevel returns the time-weighted level of a buffer up to its last
// change.
func (b *BufferAnalyzer) AverageLevel(name string) float64 {
	b.lock.Lock()
	defer b.lock.Unlock()

	bufInfo, ok := b.buffers[name]
	if !ok {
		return 0
	}

	return bufInfo.averageBufLevel()
}

// Levels returns the summary of every watched buffer, sorted by name.
func (b *BufferAnalyzer) Levels() []BufferLevel {
	b.lock.Lock()
	defer b.lock.Unlock()

	levels := make([]BufferLevel, 0, len(b.buffers))
	for name, bufInfo := range b.buffers {
		levels = append(levels, BufferLevel{
			Name:     name,
			Current:  bufInfo.buf.Size(),
			Max:      bufInfo.maxBufLevel,
			Average:  bufInfo.averageBufLevel(),
			Capacity: bufInfo.buf.Capacity(),
		})
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Name < levels[j].Name
	})

	return levels
}

// Report will dump the buffer level information.
func (b *BufferAnalyzer) Report(w io.Writer) {
	now := b.timeTeller.CurrentTime()

	fmt.Fprintln(w, "buffer, time, current, max, average, capacity")
	for _, l := range b.Levels() {
		fmt.Fprintf(w, "%s, %.10f, %d, %d, %.4f, %d\n",
			l.Name, now, l.Current, l.Max, l.Average, l.Capacity)
	}
}
