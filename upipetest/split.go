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

package upipetest

import (
	"hz.tools/upipe"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

type splitMgr struct{}

func (splitMgr) Signature() string {
	return "tspl"
}

func (m splitMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	s := &Split{}
	s.subMgr = &splitSubMgr{super: s}
	s.InitSubs(s.subMgr)
	s.Core().Init(s, m, probe, func() {
		for _, flow := range s.flows {
			flow.Free()
		}
		s.CleanSubs()
	})
	upipe.ThrowReady(s)
	return s, nil
}

// Split is a phony split pipe: tests hand it flow definitions to
// advertise, and it reports SplitUpdate like a demuxer discovering
// programs.
type Split struct {
	upipe.Core
	upipe.SubsHelper

	subMgr *splitSubMgr
	flows  []*uref.Ref
}

// NewSplit returns a phony split pipe owning probe.
func NewSplit(probe *upipe.Probe) *Split {
	p, _ := splitMgr{}.Alloc(probe, upipe.AllocArgs{})
	return p.(*Split)
}

// SetFlows replaces the advertised flows with duplicates of the given
// definitions and throws SplitUpdate.
func (s *Split) SetFlows(flows ...*uref.Ref) error {
	for _, flow := range s.flows {
		flow.Free()
	}
	s.flows = nil
	for _, flow := range flows {
		dup, err := flow.Dup()
		if err != nil {
			return err
		}
		s.flows = append(s.flows, dup)
	}
	_ = upipe.Throw(s, &upipe.SplitUpdate{})
	return nil
}

// Input implements the upipe.Pipe interface.
func (s *Split) Input(ref *uref.Ref, pump upump.Pump) {
	ref.Free()
}

// Control implements the upipe.Pipe interface.
func (s *Split) Control(cmd upipe.Command) error {
	switch cmd := cmd.(type) {
	case *upipe.CmdSplitIterate:
		var next *uref.Ref
		matched := cmd.FlowDef == nil
		for _, flow := range s.flows {
			if matched {
				next = flow
				break
			}
			matched = flow == cmd.FlowDef
		}
		cmd.FlowDef = next
		return nil
	default:
		return s.ControlSubs(s, cmd)
	}
}

type splitSubMgr struct {
	super *Split
}

func (m *splitSubMgr) Signature() string {
	return "tsps"
}

func (m *splitSubMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	if args.FlowDef == nil {
		probe.Release()
		return nil, uerr.ErrInvalid
	}
	sub := &SplitSub{}
	id, _ := args.FlowDef.FlowID()
	sub.FlowID = id
	sub.Core().Init(sub, m, probe, func() {
		sub.CleanSub(sub)
	})
	sub.InitSub(sub, m.super, &m.super.SubsHelper)
	upipe.ThrowReady(sub)
	return sub, nil
}

// SplitSub is a phony output sub-pipe of a Split, remembering which
// flow it was built for.
type SplitSub struct {
	upipe.Core
	upipe.SubHelper

	FlowID uint64
}

// Input implements the upipe.Pipe interface.
func (s *SplitSub) Input(ref *uref.Ref, pump upump.Pump) {
	ref.Free()
}

// Control implements the upipe.Pipe interface.
func (s *SplitSub) Control(cmd upipe.Command) error {
	return s.ControlSub(s, cmd)
}

// vim: foldmethod=marker
