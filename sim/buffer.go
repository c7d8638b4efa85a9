package sim

import "log"

// HookPosBufPush marks when an element is pushed into a queue.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from a queue.
var HookPosBufPop = &HookPos{Name: "Buffer Pop"}

// A Buffer is the part of a bounded queue that monitors and analyzers look
// at. It says how full the queue is, not what it holds.
type Buffer interface {
	Named
	Hookable

	CanPush() bool
	Capacity() int
	Size() int
}

// A Queue is a bounded FIFO of T kept in a fixed ring. Pushes and pops invoke
// the HookPosBufPush and HookPosBufPop hooks with the element as the item.
type Queue[T any] struct {
	HookableBase

	name string
	ring []T
	head int
	size int
}

// NewQueue creates an empty queue that can hold capacity elements.
func NewQueue[T any](name string, capacity int) *Queue[T] {
	NameMustBeValid(name)

	if capacity <= 0 {
		log.Panicf("buffer %s must have a positive capacity", name)
	}

	return &Queue[T]{
		name: name,
		ring: make([]T, capacity),
	}
}

// Name returns the name of the queue.
func (q *Queue[T]) Name() string {
	return q.name
}

// CanPush tells if there is room for one more element.
func (q *Queue[T]) CanPush() bool {
	return q.size < len(q.ring)
}

// Capacity returns the number of elements the queue can hold.
func (q *Queue[T]) Capacity() int {
	return len(q.ring)
}

// Size returns the number of elements held.
func (q *Queue[T]) Size() int {
	return q.size
}

// Push appends e. Pushing into a full queue panics.
func (q *Queue[T]) Push(e T) {
	if !q.CanPush() {
		log.Panicf("buffer %s overflow", q.name)
	}

	q.ring[(q.head+q.size)%len(q.ring)] = e
	q.size++

	q.hook(HookPosBufPush, e)
}

// Peek returns the oldest element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}

	return q.ring[q.head], true
}

// Pop removes and returns the oldest element.
func (q *Queue[T]) Pop() (T, bool) {
	e, ok := q.Peek()
	if !ok {
		return e, false
	}

	var zero T
	q.ring[q.head] = zero
	q.head = (q.head + 1) % len(q.ring)
	q.size--

	q.hook(HookPosBufPop, e)

	return e, true
}

func (q *Queue[T]) hook(pos *HookPos, e T) {
	if q.NumHooks() == 0 {
		return
	}

	q.InvokeHook(HookCtx{Domain: q, Pos: pos, Item: e})
}
