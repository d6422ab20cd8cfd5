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

// Package upipetest contains phony pipes, probe recorders and a fake
// clock shared by this module's tests: the plumbing needed to observe
// pipeline behavior without real media or a real event loop.
package upipetest

import (
	"testing"
	"time"

	"hz.tools/upipe"
	"hz.tools/upipe/uclock"
	"hz.tools/upipe/udict"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// NewUrefMgr returns a uref manager with small pools, enough for any
// test.
func NewUrefMgr() *uref.Mgr {
	return uref.NewMgr(8, udict.NewMgr(8))
}

// FakeClock is a manually advanced uclock.Clock.
type FakeClock struct {
	now uint64
}

// Now implements the uclock.Clock interface.
func (c *FakeClock) Now() uint64 {
	return c.now
}

// ToRealTime implements the uclock.Clock interface.
func (c *FakeClock) ToRealTime(ticks uint64) time.Time {
	return time.Unix(0, 0).Add(uclock.Duration(ticks))
}

// FromRealTime implements the uclock.Clock interface.
func (c *FakeClock) FromRealTime(t time.Time) uint64 {
	return uclock.Ticks(t.Sub(time.Unix(0, 0)))
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(ticks uint64) {
	c.now += ticks
}

// Recorder is a transparent probe recording every event passing
// through it.
type Recorder struct {
	Events []upipe.Event

	probe *upipe.Probe
}

// NewRecorder returns a Recorder chained over next.
func NewRecorder(next *upipe.Probe) *Recorder {
	r := &Recorder{}
	r.probe = upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		r.Events = append(r.Events, event)
		return uerr.ErrUnhandled
	}, next)
	return r
}

// Probe returns the recording probe.
func (r *Recorder) Probe() *upipe.Probe {
	return r.probe
}

// Count returns how many recorded events match fn.
func (r *Recorder) Count(fn func(upipe.Event) bool) int {
	var n int
	for _, ev := range r.Events {
		if fn(ev) {
			n++
		}
	}
	return n
}

// NewTestProbe returns a probe routing log events to the test log and
// failing the test on fatal errors. Chain it at the bottom of test
// probe stacks.
func NewTestProbe(t *testing.T, next *upipe.Probe) *upipe.Probe {
	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		switch ev := event.(type) {
		case *upipe.Log:
			t.Logf("%s: %s", ev.Level, ev.Msg)
			return nil
		case *upipe.Fatal:
			t.Errorf("fatal pipe error: %v", ev.Err)
			return nil
		case *upipe.ErrorThrown:
			t.Errorf("pipe error: %v", ev.Err)
			return nil
		default:
			return uerr.ErrUnhandled
		}
	}, next)
}

type sinkMgr struct{}

func (sinkMgr) Signature() string {
	return "tsnk"
}

func (m sinkMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	s := &Sink{}
	s.Core().Init(s, m, probe, func() {
		for _, ref := range s.Refs {
			ref.Free()
		}
		if s.FlowDef != nil {
			s.FlowDef.Free()
		}
	})
	upipe.ThrowReady(s)
	return s, nil
}

// Sink is a phony terminal pipe retaining everything it is fed, with an
// optional admission hook for backpressure scenarios.
type Sink struct {
	upipe.Core

	// Refs are the retained units, in arrival order.
	Refs []*uref.Ref

	// FlowDef is a copy of the last flow definition set.
	FlowDef *uref.Ref

	// Accept, when set, is consulted before retaining a unit; refusal
	// frees the unit and counts it in Refused.
	Accept  func(ref *uref.Ref) bool
	Refused int
}

// NewSink returns a phony sink owning probe.
func NewSink(probe *upipe.Probe) *Sink {
	p, _ := sinkMgr{}.Alloc(probe, upipe.AllocArgs{})
	return p.(*Sink)
}

// Input implements the upipe.Pipe interface.
func (s *Sink) Input(ref *uref.Ref, pump upump.Pump) {
	if s.Accept != nil && !s.Accept(ref) {
		s.Refused++
		ref.Free()
		return
	}
	s.Refs = append(s.Refs, ref)
}

// Control implements the upipe.Pipe interface.
func (s *Sink) Control(cmd upipe.Command) error {
	switch cmd := cmd.(type) {
	case *upipe.CmdSetFlowDef:
		dup, err := cmd.FlowDef.Dup()
		if err != nil {
			return err
		}
		if s.FlowDef != nil {
			s.FlowDef.Free()
		}
		s.FlowDef = dup
		return nil
	case *upipe.CmdGetFlowDef:
		cmd.FlowDef = s.FlowDef
		return nil
	default:
		return uerr.ErrUnhandled
	}
}

// vim: foldmethod=marker
