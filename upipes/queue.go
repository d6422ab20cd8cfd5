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
	"hz.tools/upipe/upool"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// queueItem is what crosses the thread boundary: a media unit, a flow
// definition, or an end-of-stream marker.
type queueItem struct {
	ref     *uref.Ref
	flowDef bool
	end     bool
}

// Queue connects a QueueSink feeding on one upump manager to a
// QueueSource draining on another. Units cross in FIFO order; a credit
// ring flowing the other way tells the sink when space opened up.
type Queue struct {
	data   *upool.Queue[queueItem]
	credit *upool.Queue[struct{}]
}

// NewQueue returns a Queue holding at most capacity in-flight units.
func NewQueue(capacity int) *Queue {
	return &Queue{
		data:   upool.NewQueue[queueItem](capacity),
		credit: upool.NewQueue[struct{}](2*capacity + 16),
	}
}

// QueueSinkMgr constructs sink pipes pushing into one Queue.
type QueueSinkMgr struct {
	q *Queue
}

// NewQueueSinkMgr returns a QueueSinkMgr for the Queue.
func NewQueueSinkMgr(q *Queue) *QueueSinkMgr {
	return &QueueSinkMgr{q: q}
}

// Signature implements the upipe.Mgr interface.
func (m *QueueSinkMgr) Signature() string {
	return "qsnk"
}

// Alloc implements the upipe.Mgr interface.
func (m *QueueSinkMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	s := &QueueSink{q: m.q}
	s.InitSink(0)
	s.Core().Init(s, m, probe, func() {
		if s.creditPump != nil {
			s.creditPump.Free()
			s.creditPump = nil
		}
		s.q.data.Push(queueItem{end: true})
		s.CleanSink()
	})
	upipe.ThrowReady(s)
	return s, nil
}

// QueueSink pushes units into a Queue, holding them and pausing the
// feeding pump when the other side is behind.
type QueueSink struct {
	upipe.Core
	upipe.SinkHelper
	upipe.UpumpMgrHelper

	q          *Queue
	creditPump upump.Pump
}

// Input implements the upipe.Pipe interface.
func (s *QueueSink) Input(ref *uref.Ref, pump upump.Pump) {
	if s.HasHeld() || !s.q.data.Push(queueItem{ref: ref}) {
		s.Hold(ref)
		s.BlockSource(s, pump)
		s.watchCredit()
	}
}

// watchCredit lazily starts the pump draining the credit ring, so the
// sink wakes when the source consumed something.
func (s *QueueSink) watchCredit() {
	if s.creditPump != nil {
		return
	}
	if s.UpumpMgr == nil {
		if err := s.AttachUpumpMgr(s); err != nil {
			upipe.ThrowFatal(s, uerr.ErrUpump)
			return
		}
	}
	s.creditPump = s.UpumpMgr.AllocQueue(s.onCredit, s.q.credit)
	s.creditPump.Start()
}

func (s *QueueSink) onCredit(pump upump.Pump) {
	for {
		if _, ok := s.q.credit.Pop(); !ok {
			break
		}
	}
	for s.HasHeld() {
		ref := s.PopHeld()
		if !s.q.data.Push(queueItem{ref: ref}) {
			s.HoldFront(ref)
			return
		}
	}
	s.UnblockSources()
}

// Control implements the upipe.Pipe interface.
func (s *QueueSink) Control(cmd upipe.Command) error {
	switch cmd := cmd.(type) {
	case *upipe.CmdSetFlowDef:
		dup, err := cmd.FlowDef.Dup()
		if err != nil {
			return err
		}
		if !s.q.data.Push(queueItem{ref: dup, flowDef: true}) {
			dup.Free()
			return uerr.ErrBusy
		}
		return nil
	case *upipe.CmdAttachUpumpMgr:
		return s.AttachUpumpMgr(s)
	default:
		return s.ControlSink(s, cmd)
	}
}

// QueueSourceMgr constructs source pipes draining one Queue.
type QueueSourceMgr struct {
	q *Queue
}

// NewQueueSourceMgr returns a QueueSourceMgr for the Queue.
func NewQueueSourceMgr(q *Queue) *QueueSourceMgr {
	return &QueueSourceMgr{q: q}
}

// Signature implements the upipe.Mgr interface.
func (m *QueueSourceMgr) Signature() string {
	return "qsrc"
}

// Alloc implements the upipe.Mgr interface.
func (m *QueueSourceMgr) Alloc(probe *upipe.Probe, args upipe.AllocArgs) (upipe.Pipe, error) {
	s := &QueueSource{q: m.q}
	s.InitOutput()
	s.Core().Init(s, m, probe, func() {
		if s.pump != nil {
			s.pump.Free()
			s.pump = nil
		}
		s.CleanOutput()
	})
	upipe.ThrowReady(s)
	return s, nil
}

// QueueSource pops units from a Queue on its own upump manager's
// thread and forwards them downstream, returning a credit for each.
type QueueSource struct {
	upipe.Core
	upipe.OutputHelper
	upipe.UpumpMgrHelper

	q    *Queue
	pump upump.Pump
}

// Input implements the upipe.Pipe interface. Sources produce, they do
// not consume.
func (s *QueueSource) Input(ref *uref.Ref, pump upump.Pump) {
	upipe.Warn(s, "unit fed into a queue source, dropping")
	ref.Free()
}

func (s *QueueSource) onData(pump upump.Pump) {
	for {
		item, ok := s.q.data.Pop()
		if !ok {
			return
		}
		switch {
		case item.end:
			upipe.ThrowSourceEnd(s)
		case item.flowDef:
			s.StoreFlowDef(s, item.ref)
		default:
			s.q.credit.Push(struct{}{})
			s.OutputHelper.Output(s, item.ref, pump)
		}
	}
}

// Control implements the upipe.Pipe interface.
func (s *QueueSource) Control(cmd upipe.Command) error {
	switch cmd.(type) {
	case *upipe.CmdAttachUpumpMgr:
		if err := s.AttachUpumpMgr(s); err != nil {
			return err
		}
		if s.pump != nil {
			s.pump.Free()
		}
		s.pump = s.UpumpMgr.AllocQueue(s.onData, s.q.data)
		s.pump.Start()
		return nil
	default:
		return s.ControlOutput(s, cmd)
	}
}

// vim: foldmethod=marker
