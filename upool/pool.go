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

// Pool recycles objects of one logical kind. Get returns a recycled object
// when one is available and falls back to the alloc callback on a miss;
// Put returns an object for reuse, spilling to the free callback when
// depth objects are already held.
//
// Unlike a sync.Pool, a Pool holds a deterministic number of objects and
// never drops them behind the caller's back, so buffer reuse stays on the
// hot path under steady load.
type Pool[T any] struct {
	lifo  *LIFO[T]
	alloc func() T
	free  func(T)
}

// NewPool returns a Pool holding at most depth recycled objects. alloc
// must not be nil; free may be nil when letting the collector take
// overflow objects is fine.
func NewPool[T any](depth int, alloc func() T, free func(T)) *Pool[T] {
	return &Pool[T]{
		lifo:  NewLIFO[T](depth),
		alloc: alloc,
		free:  free,
	}
}

// Get returns a recycled or freshly allocated object.
func (p *Pool[T]) Get() T {
	if elem, ok := p.lifo.Pop(); ok {
		return elem
	}
	return p.alloc()
}

// Put returns an object to the Pool for reuse.
func (p *Pool[T]) Put(elem T) {
	if p.lifo.Push(elem) {
		return
	}
	if p.free != nil {
		p.free(elem)
	}
}

// Len returns the number of objects currently held for reuse.
func (p *Pool[T]) Len() int {
	return p.lifo.Len()
}

// Vacuum releases every held object through the free callback.
func (p *Pool[T]) Vacuum() {
	for {
		elem, ok := p.lifo.Pop()
		if !ok {
			return
		}
		if p.free != nil {
			p.free(elem)
		}
	}
}

// vim: foldmethod=marker
