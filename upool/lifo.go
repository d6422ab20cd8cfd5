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

// Package upool contains the pooled-allocation primitives: a bounded
// lock-free LIFO, a recycling Pool built on top of it, and the MPSC ring
// Queue used to pass elements between goroutines.
//
// A buffer allocated on one goroutine may be released on another; these
// types are the synchronization points that make that safe.
package upool

import (
	"sync/atomic"
)

type lifoNode[T any] struct {
	elem T
	next *lifoNode[T]
}

// LIFO is a depth-bounded lock-free stack, pushed and popped with a CAS on
// the head pointer. Push fails once depth elements are held; a depth of
// zero always fails, which degrades a Pool into pass-through.
type LIFO[T any] struct {
	depth int32
	count atomic.Int32
	head  atomic.Pointer[lifoNode[T]]
}

// NewLIFO returns a LIFO holding at most depth elements.
func NewLIFO[T any](depth int) *LIFO[T] {
	return &LIFO[T]{depth: int32(depth)}
}

// Push adds an element, reporting false when the LIFO is full.
func (l *LIFO[T]) Push(elem T) bool {
	if l.count.Add(1) > l.depth {
		l.count.Add(-1)
		return false
	}
	n := &lifoNode[T]{elem: elem}
	for {
		head := l.head.Load()
		n.next = head
		if l.head.CompareAndSwap(head, n) {
			return true
		}
	}
}

// Pop removes the most recently pushed element, reporting false when the
// LIFO is empty.
func (l *LIFO[T]) Pop() (T, bool) {
	for {
		head := l.head.Load()
		if head == nil {
			var zero T
			return zero, false
		}
		if l.head.CompareAndSwap(head, head.next) {
			l.count.Add(-1)
			return head.elem, true
		}
	}
}

// Len returns the number of held elements. The value is advisory under
// concurrent access.
func (l *LIFO[T]) Len() int {
	n := l.count.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// vim: foldmethod=marker
