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

// Package urefcount contains the shared atomic reference counter used by
// every heap entity in this module. The release callback is the uniform
// destruction hook: it runs exactly once, on the goroutine performing the
// final Release, with a happens-before relationship to every prior Use.
package urefcount

import (
	"sync/atomic"
)

// Count is an atomic reference count with a release callback. The zero
// value is not ready for use; call Init first.
type Count struct {
	n       atomic.Int64
	release func()
}

// Init sets the count to one and installs the release callback, which may
// be nil for objects torn down externally.
func (c *Count) Init(release func()) {
	c.n.Store(1)
	c.release = release
}

// Use takes an additional reference and returns the receiver, so a grab
// can be chained into a call that hands the reference off.
func (c *Count) Use() *Count {
	c.n.Add(1)
	return c
}

// Release drops a reference. When the last reference is dropped the
// release callback is invoked and Release reports true.
func (c *Count) Release() bool {
	n := c.n.Add(-1)
	if n < 0 {
		if debug {
			panic("urefcount: release of a dead object")
		}
		return false
	}
	if n == 0 {
		if c.release != nil {
			c.release()
		}
		return true
	}
	return false
}

// Single reports whether exactly one reference is live. This is only
// meaningful when the caller holds one of the references; it is used to
// decide whether a shared buffer may be written in place.
func (c *Count) Single() bool {
	return c.n.Load() == 1
}

// vim: foldmethod=marker
