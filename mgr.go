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
	"hz.tools/upipe/uref"
)

// AllocArgs carries the constructor arguments of a pipe. Which fields a
// manager reads depends on its allocation flavor: a void pipe reads
// nothing, a flow pipe reads FlowDef.
type AllocArgs struct {
	// FlowDef describes the flow the new pipe will carry. The manager
	// inspects it during Alloc and duplicates what it keeps; ownership
	// stays with the caller.
	FlowDef *uref.Ref
}

// Mgr constructs pipes of one type and owns their shared configuration.
// Managers are shared read-only after initialization.
type Mgr interface {
	// Signature returns the four-character type code of the produced
	// pipes, used to disambiguate manager-specific commands and label
	// graph dumps.
	Signature() string

	// Alloc constructs a pipe. Ownership of probe transfers to the
	// pipe, even on failure; the Ready event is thrown through it
	// before Alloc returns. A nil pipe and non-nil error report
	// failure.
	Alloc(probe *Probe, args AllocArgs) (Pipe, error)
}

// AllocVoid constructs a pipe taking no constructor arguments.
func AllocVoid(mgr Mgr, probe *Probe) (Pipe, error) {
	return mgr.Alloc(probe, AllocArgs{})
}

// AllocFlow constructs a pipe bound to a flow definition.
func AllocFlow(mgr Mgr, probe *Probe, flowDef *uref.Ref) (Pipe, error) {
	return mgr.Alloc(probe, AllocArgs{FlowDef: flowDef})
}

// FlowAllocSub materializes an output sub-pipe of a split super-pipe for
// one of its advertised flows. The flow definition is one obtained from
// SplitIterate; ownership stays with the caller.
func FlowAllocSub(super Pipe, probe *Probe, flowDef *uref.Ref) (Pipe, error) {
	subMgr, err := GetSubMgr(super)
	if err != nil {
		probe.Release()
		return nil, err
	}
	return AllocFlow(subMgr, probe, flowDef)
}

// vim: foldmethod=marker
