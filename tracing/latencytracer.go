package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/satacmd/sim"
)

// A LatencySummary describes the time that a group of tasks took from start
// to end.
type LatencySummary struct {
	Count uint64
	Mean  sim.VTimeInSec
	Min   sim.VTimeInSec
	Max   sim.VTimeInSec
}

func (s *LatencySummary) add(d sim.VTimeInSec) {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}

	if d > s.Max {
		s.Max = d
	}

	s.Mean += (d - s.Mean) / sim.VTimeInSec(s.Count+1)
	s.Count++
}

// LatencyTracer measures how long tasks take. Ended tasks are summarized in
// total and grouped by what they do, so command latency can be reported per
// operation.
type LatencyTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock     sync.Mutex
	inflight map[string]Task
	total    LatencySummary
	byWhat   map[string]*LatencySummary
}

// NewLatencyTracer creates a LatencyTracer. A nil filter takes every task.
func NewLatencyTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *LatencyTracer {
	if filter == nil {
		filter = func(Task) bool { return true }
	}

	return &LatencyTracer{
		timeTeller: timeTeller,
		filter:     filter,
		inflight:   make(map[string]Task),
		byWhat:     make(map[string]*LatencySummary),
	}
}

// Total summarizes every ended task.
func (t *LatencyTracer) Total() LatencySummary {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// Of summarizes the ended tasks with the given What.
func (t *LatencyTracer) Of(what string) LatencySummary {
	t.lock.Lock()
	defer t.lock.Unlock()

	if s, ok := t.byWhat[what]; ok {
		return *s
	}

	return LatencySummary{}
}

// Whats lists the groups seen so far, sorted.
func (t *LatencyTracer) Whats() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	whats := make([]string, 0, len(t.byWhat))
	for w := range t.byWhat {
		whats = append(whats, w)
	}
	sort.Strings(whats)

	return whats
}

// StartTask remembers when the task started.
func (t *LatencyTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflight[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *LatencyTracer) StepTask(_ Task) {}

// EndTask adds the task time to the summaries.
func (t *LatencyTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	started, ok := t.inflight[task.ID]
	if !ok {
		return
	}
	delete(t.inflight, task.ID)

	d := t.timeTeller.CurrentTime() - started.StartTime

	t.total.add(d)

	s, ok := t.byWhat[started.What]
	if !ok {
		s = &LatencySummary{}
		t.byWhat[started.What] = s
	}
	s.add(d)
}
