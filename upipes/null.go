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

package upipes

import (
	"hz.tools/upipe"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// NullMgr constructs sinks that swallow every unit, counting them. A
// convenient drain for unselected branches and tests.
type NullMgr struct{}

// NewNullMgr returns a NullMgr.
func NewNullMgr() *NullMgr {
	return &NullMgr{}
}

// Signature implements the upipe.Mgr interface.
func (m *NullMgr) Signature() string {
	return "null"
}

// Alloc implements the upipe.Mgr interface.
func (m *NullMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	n := &Null{}
	n.Core().Init(n, m, probe, nil)
	upipe.ThrowReady(n)
	return n, nil
}

// Null swallows units.
type Null struct {
	upipe.Core

	count uint64
}

// Count returns the number of units swallowed.
func (n *Null) Count() uint64 {
	return n.count
}

// Input implements the upipe.Pipe interface.
func (n *Null) Input(ref *uref.Ref, pump upump.Pump) {
	n.count++
	ref.Free()
}

// Control implements the upipe.Pipe interface.
func (n *Null) Control(cmd upipe.Command) error {
	switch cmd.(type) {
	case *upipe.CmdSetFlowDef:
		// Anything flows into the void.
		return nil
	default:
		return uerr.ErrUnhandled
	}
}

// vim: foldmethod=marker
