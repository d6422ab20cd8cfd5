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

// Package upipes contains generic pipe modules built purely on the
// pipeline substrate: a 1:N duplicator, a cross-thread queue pair with
// blocker-based backpressure, and a counting null sink.
package upipes

import (
	"hz.tools/upipe"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// DupMgr constructs duplicator pipes: every input unit is forwarded to
// each output sub-pipe.
type DupMgr struct{}

// NewDupMgr returns a DupMgr.
func NewDupMgr() *DupMgr {
	return &DupMgr{}
}

// Signature implements the upipe.Mgr interface.
func (m *DupMgr) Signature() string {
	return "dup "
}

// Alloc implements the upipe.Mgr interface.
func (m *DupMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	d := &Dup{}
	d.subMgr = &dupSubMgr{super: d}
	d.InitSubs(d.subMgr)
	d.Core().Init(d, m, probe, func() {
		if d.flowDef != nil {
			d.flowDef.Free()
			d.flowDef = nil
		}
		d.CleanSubs()
	})
	upipe.ThrowReady(d)
	return d, nil
}

// Dup forwards each input unit to every output sub-pipe, duplicating
// the unit for each.
type Dup struct {
	upipe.Core
	upipe.SubsHelper

	subMgr  *dupSubMgr
	flowDef *uref.Ref
}

// Input implements the upipe.Pipe interface.
func (d *Dup) Input(ref *uref.Ref, pump upump.Pump) {
	var subs []*DupSub
	d.ForeachSub(func(sub upipe.Pipe) bool {
		subs = append(subs, sub.(*DupSub))
		return true
	})
	for i, sub := range subs {
		out := ref
		if i < len(subs)-1 {
			dup, err := ref.Dup()
			if err != nil {
				upipe.ThrowFatal(d, uerr.ErrAlloc)
				break
			}
			out = dup
		}
		sub.OutputHelper.Output(sub, out, pump)
	}
	if len(subs) == 0 {
		ref.Free()
	}
}

// Control implements the upipe.Pipe interface.
func (d *Dup) Control(cmd upipe.Command) error {
	switch cmd := cmd.(type) {
	case *upipe.CmdSetFlowDef:
		dup, err := cmd.FlowDef.Dup()
		if err != nil {
			return err
		}
		if d.flowDef != nil {
			d.flowDef.Free()
		}
		d.flowDef = dup
		d.ForeachSub(func(sub upipe.Pipe) bool {
			sub.(*DupSub).storeFlowDef(d.flowDef)
			return true
		})
		return nil
	case *upipe.CmdGetFlowDef:
		cmd.FlowDef = d.flowDef
		return nil
	default:
		return d.ControlSubs(d, cmd)
	}
}

type dupSubMgr struct {
	super *Dup
}

// Signature implements the upipe.Mgr interface.
func (m *dupSubMgr) Signature() string {
	return "dups"
}

// Alloc implements the upipe.Mgr interface.
func (m *dupSubMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	sub := &DupSub{}
	sub.InitOutput()
	sub.Core().Init(sub, m, probe, func() {
		sub.CleanSub(sub)
		sub.CleanOutput()
	})
	sub.InitSub(sub, m.super, &m.super.SubsHelper)
	upipe.ThrowReady(sub)
	if m.super.flowDef != nil {
		sub.storeFlowDef(m.super.flowDef)
	}
	return sub, nil
}

// DupSub is one output branch of a Dup.
type DupSub struct {
	upipe.Core
	upipe.SubHelper
	upipe.OutputHelper
}

func (s *DupSub) storeFlowDef(flowDef *uref.Ref) {
	dup, err := flowDef.Dup()
	if err != nil {
		upipe.ThrowFatal(s, uerr.ErrAlloc)
		return
	}
	s.StoreFlowDef(s, dup)
}

// Input implements the upipe.Pipe interface. Branches produce, they do
// not consume.
func (s *DupSub) Input(ref *uref.Ref, pump upump.Pump) {
	upipe.Warn(s, "unit fed into a duplicator branch, dropping")
	ref.Free()
}

// Control implements the upipe.Pipe interface.
func (s *DupSub) Control(cmd upipe.Command) error {
	if err := s.ControlSub(s, cmd); err != uerr.ErrUnhandled {
		return err
	}
	return s.ControlOutput(s, cmd)
}

// vim: foldmethod=marker
