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

package upipe

import (
	"hz.tools/upipe/ulist"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
	"hz.tools/upipe/urefcount"
)

// Pipe is a processing node in the pipeline graph. Concrete pipes are
// structs embedding Core plus whichever helper mixins they need.
type Pipe interface {
	// Core returns the embedded pipe core.
	Core() *Core

	// Input consumes a unit unconditionally: the callee takes
	// ownership, and may drop, transform and forward, duplicate, or
	// queue it. pump is the pump whose callback delivered the unit,
	// nil when the caller is not running from a pump; sinks use it to
	// apply backpressure.
	Input(ref *uref.Ref, pump upump.Pump)

	// Control executes a control command; see the Cmd types. Commands
	// a pipe does not recognize report uerr.ErrUnhandled so wrappers
	// can layer.
	Control(cmd Command) error
}

// Core is the part of every pipe the framework manages: the manager it
// came from, the owned probe chain, the reference count, graph list
// membership and the opaque slot.
type Core struct {
	self     Pipe
	mgr      Mgr
	probe    *Probe
	refcount urefcount.Count
	opaque   any

	// Node gives the pipe list membership in sub-pipe sets and graph
	// walks.
	Node ulist.Node[Pipe]
}

// Init wires the Core. self is the concrete pipe embedding this Core;
// probe ownership transfers to the pipe; release runs on final release,
// after the Dead event has been thrown.
func (c *Core) Init(self Pipe, mgr Mgr, probe *Probe, release func()) {
	c.self = self
	c.mgr = mgr
	c.probe = probe
	c.opaque = nil
	c.Node.Init(self)
	c.refcount.Init(func() {
		ThrowDead(self)
		if release != nil {
			release()
		}
		c.probe.Release()
		c.probe = nil
	})
}

// Core returns the receiver, so embedding a Core satisfies that part of
// the Pipe interface.
func (c *Core) Core() *Core {
	return c
}

// Mgr returns the manager this pipe was allocated from.
func (c *Core) Mgr() Mgr {
	return c.mgr
}

// Probe returns the head of the owned probe chain.
func (c *Core) Probe() *Probe {
	return c.probe
}

// Opaque returns the opaque slot.
func (c *Core) Opaque() any {
	return c.opaque
}

// SetOpaque stores a value in the opaque slot, returning the previous
// value. Graph walkers hijack this slot and restore it verbatim.
func (c *Core) SetOpaque(v any) any {
	old := c.opaque
	c.opaque = v
	return old
}

// Use takes an additional reference on a pipe, returning it for
// chaining.
func Use(p Pipe) Pipe {
	p.Core().refcount.Use()
	return p
}

// Release drops a reference on a pipe. Releasing nil is a no-op.
func Release(p Pipe) {
	if p == nil {
		return
	}
	p.Core().refcount.Release()
}

// Single reports whether the caller holds the only reference on a pipe.
func Single(p Pipe) bool {
	return p.Core().refcount.Single()
}

// vim: foldmethod=marker
