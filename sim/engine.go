package sim

import (
	"context"
	"errors"
	"sync"
)

// ErrCycleLimit is returned by Run when the engine reaches its cycle limit
// while components are still making progress.
var ErrCycleLimit = errors.New("cycle limit reached")

// HookPosBeforeTick is a hook position that triggers before a cycle is
// evaluated. The hook item is the cycle number.
var HookPosBeforeTick = &HookPos{Name: "BeforeTick"}

// HookPosAfterTick is a hook position that triggers after a cycle is
// evaluated. The hook item is the cycle number and the detail tells if any
// ticker made progress.
var HookPosAfterTick = &HookPos{Name: "AfterTick"}

// An Engine drives all the registered tickers with a single global clock.
type Engine interface {
	Hookable
	TimeTeller

	// RegisterTicker adds a ticker. Tickers are evaluated in registration
	// order within a cycle.
	RegisterTicker(t Ticker)

	// CurrentCycle returns the number of cycles evaluated so far.
	CurrentCycle() uint64

	// Run evaluates cycles until no ticker makes progress for a whole cycle.
	Run(ctx context.Context) error

	// RunCycles evaluates at most n cycles and returns true if the last
	// evaluated cycle made progress.
	RunCycles(n uint64) bool

	// Pause temporarily stops the engine from evaluating more cycles.
	Pause()

	// Continue allows a paused engine to evaluate cycles again.
	Continue()
}

// A SerialEngine is an Engine that evaluates the tickers one after another,
// one cycle at a time.
type SerialEngine struct {
	HookableBase

	freq       Freq
	tickers    []Ticker
	cycleLimit uint64

	cycleLock sync.RWMutex
	cycle     uint64

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine clocked at the given frequency.
func NewSerialEngine(freq Freq) *SerialEngine {
	if freq <= 0 {
		panic("engine frequency must be positive")
	}

	return &SerialEngine{freq: freq}
}

// Freq returns the clock frequency of the engine.
func (e *SerialEngine) Freq() Freq {
	return e.freq
}

// SetCycleLimit makes Run return ErrCycleLimit after the given number of
// cycles. Zero means no limit.
func (e *SerialEngine) SetCycleLimit(limit uint64) {
	e.cycleLimit = limit
}

// RegisterTicker adds a ticker to be evaluated every cycle.
func (e *SerialEngine) RegisterTicker(t Ticker) {
	e.tickers = append(e.tickers, t)
}

// CurrentCycle returns the number of cycles evaluated so far.
func (e *SerialEngine) CurrentCycle() uint64 {
	e.cycleLock.RLock()
	defer e.cycleLock.RUnlock()

	return e.cycle
}

// CurrentTime returns the time at which the current cycle starts.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.freq.CycleTime(e.CurrentCycle())
}

// Run evaluates cycles until the system is quiescent, the context is done, or
// the cycle limit is reached.
func (e *SerialEngine) Run(ctx context.Context) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if e.cycleLimit > 0 && e.CurrentCycle() >= e.cycleLimit {
			return ErrCycleLimit
		}

		e.pauseLock.Lock()
		madeProgress := e.tick()
		e.pauseLock.Unlock()

		if !madeProgress {
			return nil
		}
	}
}

// RunCycles evaluates at most n cycles.
func (e *SerialEngine) RunCycles(n uint64) bool {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	madeProgress := false
	for i := uint64(0); i < n; i++ {
		e.pauseLock.Lock()
		madeProgress = e.tick()
		e.pauseLock.Unlock()
	}

	return madeProgress
}

func (e *SerialEngine) tick() bool {
	cycle := e.CurrentCycle()

	e.InvokeHook(HookCtx{
		Domain: e,
		Pos:    HookPosBeforeTick,
		Item:   cycle,
	})

	madeProgress := false
	for _, t := range e.tickers {
		madeProgress = t.Tick() || madeProgress
	}

	e.cycleLock.Lock()
	e.cycle++
	e.cycleLock.Unlock()

	e.InvokeHook(HookCtx{
		Domain: e,
		Pos:    HookPosAfterTick,
		Item:   cycle,
		Detail: madeProgress,
	})

	return madeProgress
}

// Pause prevents the SerialEngine from evaluating more cycles.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to evaluate cycles again.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}
