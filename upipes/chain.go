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

// ChainMgr constructs bin pipes wrapping a fixed sequence of inner
// pipes: input goes to the first inner, the bin's output is the last
// inner's output, and the inner pipeline is walkable through the bin
// commands.
type ChainMgr struct {
	inners []upipe.Mgr
}

// NewChainMgr returns a ChainMgr composing the given managers, in
// order. At least one is required.
func NewChainMgr(inners ...upipe.Mgr) *ChainMgr {
	return &ChainMgr{inners: inners}
}

// Signature implements the upipe.Mgr interface.
func (m *ChainMgr) Signature() string {
	return "chn "
}

// Alloc implements the upipe.Mgr interface.
func (m *ChainMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	if len(m.inners) == 0 {
		probe.Release()
		return nil, uerr.ErrInvalid
	}
	c := &Chain{}
	c.Core().Init(c, m, probe, func() {
		for _, inner := range c.inners {
			upipe.Release(inner)
		}
		c.inners = nil
	})

	for _, innerMgr := range m.inners {
		inner, err := innerMgr.Alloc(c.Core().Probe().Use(), args)
		if err != nil {
			upipe.Release(c)
			return nil, err
		}
		if len(c.inners) > 0 {
			prev := c.inners[len(c.inners)-1]
			if err := upipe.SetOutput(prev, inner); err != nil {
				upipe.Release(inner)
				upipe.Release(c)
				return nil, err
			}
		}
		c.inners = append(c.inners, inner)
	}
	upipe.ThrowReady(c)
	return c, nil
}

// Chain is a bin pipe composing a linear inner pipeline.
type Chain struct {
	upipe.Core

	inners []upipe.Pipe
	frozen bool
}

// Frozen reports whether internal reconfiguration is paused.
func (c *Chain) Frozen() bool {
	return c.frozen
}

// Input implements the upipe.Pipe interface.
func (c *Chain) Input(ref *uref.Ref, pump upump.Pump) {
	c.inners[0].Input(ref, pump)
}

// Control implements the upipe.Pipe interface. Input-side commands go
// to the first inner, output-side commands to the last.
func (c *Chain) Control(cmd upipe.Command) error {
	switch cmd := cmd.(type) {
	case *upipe.CmdSetFlowDef:
		return c.inners[0].Control(cmd)
	case *upipe.CmdSetOutput, *upipe.CmdGetOutput, *upipe.CmdGetFlowDef:
		return c.inners[len(c.inners)-1].Control(cmd)
	case *upipe.CmdBinGetFirstInner:
		cmd.Inner = c.inners[0]
		return nil
	case *upipe.CmdBinGetLastInner:
		cmd.Inner = c.inners[len(c.inners)-1]
		return nil
	case *upipe.CmdBinFreeze:
		c.frozen = true
		return nil
	case *upipe.CmdBinThaw:
		c.frozen = false
		return nil
	case *upipe.CmdRegisterRequest, *upipe.CmdUnregisterRequest:
		return c.inners[len(c.inners)-1].Control(cmd)
	default:
		return uerr.ErrUnhandled
	}
}

// vim: foldmethod=marker
