// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package upool

import (
	"sync/atomic"
)

type queueSlot[T any] struct {
	seq  atomic.Uint64
	elem T
}

// Queue is a fixed-capacity multi-producer single-consumer FIFO ring.
// Producers may live on any goroutine; Pop must only be called from one
// goroutine at a time.
//
// Each slot carries a sequence number: Push claims a position with a CAS
// on the head index, writes the element, then publishes it with a release
// store of the sequence; Pop observes the sequence with an acquire load
// before touching the element. Order and counts are preserved per queue.
type Queue[T any] struct {
	capacity uint64
	slots    []queueSlot[T]
	head     atomic.Uint64
	tail     uint64
	length   atomic.Int64
	signal   atomic.Pointer[func()]
}

// NewQueue returns a Queue holding at most capacity elements.
func NewQueue[T any](capacity int) *Queue[T] {
	q := &Queue[T]{
		capacity: uint64(capacity),
		slots:    make([]queueSlot[T], capacity),
	}
	for i := range q.slots {
		q.slots[i].seq.Store(uint64(i))
	}
	return q
}

// SetSignal installs a function invoked after every successful Push. A
// scheduler watching the Queue uses this to wake its consumer thread; the
// function must therefore be safe to call from any goroutine.
func (q *Queue[T]) SetSignal(signal func()) {
	if signal == nil {
		q.signal.Store(nil)
		return
	}
	q.signal.Store(&signal)
}

// Push appends an element, reporting false when the Queue is full.
func (q *Queue[T]) Push(elem T) bool {
	for {
		pos := q.head.Load()
		slot := &q.slots[pos%q.capacity]
		seq := slot.seq.Load()
		switch {
		case seq == pos:
			if q.head.CompareAndSwap(pos, pos+1) {
				slot.elem = elem
				slot.seq.Store(pos + 1)
				q.length.Add(1)
				if signal := q.signal.Load(); signal != nil {
					(*signal)()
				}
				return true
			}
		case seq < pos:
			// The slot still holds an unconsumed element from the
			// previous lap: the Queue is full.
			return false
		default:
			// Another producer advanced head; retry with the new
			// position.
		}
	}
}

// Pop removes the oldest element, reporting false when the Queue is empty.
// Single consumer only.
func (q *Queue[T]) Pop() (T, bool) {
	slot := &q.slots[q.tail%q.capacity]
	seq := slot.seq.Load()
	if seq != q.tail+1 {
		var zero T
		return zero, false
	}
	elem := slot.elem
	var zero T
	slot.elem = zero
	slot.seq.Store(q.tail + q.capacity)
	q.tail++
	q.length.Add(-1)
	return elem, true
}

// Len returns the number of queued elements. The value is advisory under
// concurrent pushes.
func (q *Queue[T]) Len() int {
	n := q.length.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Capacity returns the fixed capacity of the Queue.
func (q *Queue[T]) Capacity() int {
	return int(q.capacity)
}

// vim: foldmethod=marker
