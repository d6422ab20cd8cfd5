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

// Package ulist contains an intrusive doubly-linked list. Objects that want
// list membership embed a Node and pay no allocation when they are pushed.
//
// A Node carries a pointer back to its element, so code iterating a List
// gets its elements back directly rather than doing offset arithmetic on
// the embedded field.
package ulist

// Node is a single list membership slot. A zero Node is detached; call
// Init with the enclosing element before first use.
type Node[T any] struct {
	prev, next *Node[T]
	elem       T
}

// Init sets the element this Node gives access to. It must be called once,
// before the Node is pushed onto any List.
func (n *Node[T]) Init(elem T) {
	n.elem = elem
	n.prev = nil
	n.next = nil
}

// Elem returns the element this Node was initialized with.
func (n *Node[T]) Elem() T {
	return n.elem
}

// Attached reports whether the Node is currently on a List.
func (n *Node[T]) Attached() bool {
	return n.prev != nil
}

// List is a doubly-linked list of Nodes. The zero value is not ready for
// use; call Init first.
type List[T any] struct {
	root Node[T]
}

// Init prepares the List for use, dropping any previous membership.
func (l *List[T]) Init() {
	l.root.prev = &l.root
	l.root.next = &l.root
}

// Empty reports whether the List holds no Nodes.
func (l *List[T]) Empty() bool {
	return l.root.next == nil || l.root.next == &l.root
}

// Len walks the List and returns the number of Nodes on it.
func (l *List[T]) Len() int {
	if l.root.next == nil {
		return 0
	}
	var n int
	for cur := l.root.next; cur != &l.root; cur = cur.next {
		n++
	}
	return n
}

// PushFront adds a Node at the head of the List.
func (l *List[T]) PushFront(n *Node[T]) {
	n.next = l.root.next
	n.prev = &l.root
	l.root.next.prev = n
	l.root.next = n
}

// PushBack adds a Node at the tail of the List.
func (l *List[T]) PushBack(n *Node[T]) {
	n.prev = l.root.prev
	n.next = &l.root
	l.root.prev.next = n
	l.root.prev = n
}

// PopFront removes and returns the Node at the head of the List, or nil if
// the List is empty.
func (l *List[T]) PopFront() *Node[T] {
	if l.Empty() {
		return nil
	}
	n := l.root.next
	l.Remove(n)
	return n
}

// PopBack removes and returns the Node at the tail of the List, or nil if
// the List is empty.
func (l *List[T]) PopBack() *Node[T] {
	if l.Empty() {
		return nil
	}
	n := l.root.prev
	l.Remove(n)
	return n
}

// Remove detaches a Node from whatever List it is on. Removing a detached
// Node is a no-op.
func (l *List[T]) Remove(n *Node[T]) {
	n.Unlink()
}

// Unlink splices the Node out of whatever List it is on, without needing
// the List at hand. Unlinking a detached Node is a no-op.
func (n *Node[T]) Unlink() {
	if n.prev == nil {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

// Foreach walks the List head to tail, calling fn with each element. If fn
// returns false the walk stops early. fn must not mutate the List; use
// DeleteForeach for that.
func (l *List[T]) Foreach(fn func(elem T) bool) {
	if l.root.next == nil {
		return
	}
	for cur := l.root.next; cur != &l.root; cur = cur.next {
		if !fn(cur.elem) {
			return
		}
	}
}

// DeleteForeach walks the List head to tail. The current Node may be
// removed from the List (or the List otherwise mutated behind the cursor)
// inside fn without upsetting the walk.
func (l *List[T]) DeleteForeach(fn func(n *Node[T]) bool) {
	if l.root.next == nil {
		return
	}
	cur := l.root.next
	for cur != &l.root {
		next := cur.next
		if !fn(cur) {
			return
		}
		cur = next
	}
}

// vim: foldmethod=marker
