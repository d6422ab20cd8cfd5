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
	"errors"

	"hz.tools/upipe/ubuf"
	"hz.tools/upipe/uclock"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// UpumpMgrHelper acquires and holds the event-loop manager driving a
// pipe's pumps.
type UpumpMgrHelper struct {
	UpumpMgr upump.Mgr
}

// AttachUpumpMgr (re)acquires the manager by throwing NeedUpumpMgr.
func (h *UpumpMgrHelper) AttachUpumpMgr(self Pipe) error {
	ev := &NeedUpumpMgr{}
	err := Throw(self, ev)
	if err != nil && !errors.Is(err, uerr.ErrUnhandled) {
		return err
	}
	if ev.Mgr == nil {
		return uerr.ErrUpump
	}
	h.UpumpMgr = ev.Mgr
	return nil
}

// ControlUpumpMgr handles CmdAttachUpumpMgr, reporting
// uerr.ErrUnhandled for everything else.
func (h *UpumpMgrHelper) ControlUpumpMgr(self Pipe, cmd Command) error {
	switch cmd.(type) {
	case *CmdAttachUpumpMgr:
		return h.AttachUpumpMgr(self)
	default:
		return uerr.ErrUnhandled
	}
}

// UclockHelper acquires and holds a clock through a Uclock request.
type UclockHelper struct {
	Clock uclock.Clock
	req   *Request
}

// RequireUclock surfaces a clock request to the probe chain; the clock
// lands in Clock when a provider answers, then check runs if non-nil.
func (h *UclockHelper) RequireUclock(self Pipe, check func()) error {
	h.req = NewUclockRequest(func(clock uclock.Clock) {
		h.Clock = clock
		if check != nil {
			check()
		}
	})
	err := Throw(self, &ProvideRequest{Request: h.req})
	if errors.Is(err, uerr.ErrUnhandled) {
		return nil
	}
	return err
}

// ControlUclock handles CmdAttachUclock, reporting uerr.ErrUnhandled
// for everything else.
func (h *UclockHelper) ControlUclock(self Pipe, cmd Command) error {
	switch cmd.(type) {
	case *CmdAttachUclock:
		return h.RequireUclock(self, nil)
	default:
		return uerr.ErrUnhandled
	}
}

// UrefMgrHelper acquires and holds a uref manager.
type UrefMgrHelper struct {
	UrefMgr *uref.Mgr
	req     *Request
}

// RequireUrefMgr surfaces a uref-manager request to the probe chain.
func (h *UrefMgrHelper) RequireUrefMgr(self Pipe, check func()) error {
	h.req = NewUrefMgrRequest(func(mgr *uref.Mgr) {
		h.UrefMgr = mgr
		if check != nil {
			check()
		}
	})
	err := Throw(self, &ProvideRequest{Request: h.req})
	if errors.Is(err, uerr.ErrUnhandled) {
		return nil
	}
	return err
}

// UbufMgrHelper acquires and holds a buffer manager fitting a flow
// format.
type UbufMgrHelper struct {
	UbufMgr    ubuf.Mgr
	FlowFormat *uref.Ref
	req        *Request
}

// RequireUbufMgr surfaces a buffer-manager request for the flow format
// hint. The hint is duplicated; the caller keeps its copy.
func (h *UbufMgrHelper) RequireUbufMgr(self Pipe, flow *uref.Ref, check func()) error {
	req, err := NewUbufMgrRequest(flow, func(mgr ubuf.Mgr, flowFormat *uref.Ref) {
		h.UbufMgr = mgr
		if h.FlowFormat != nil {
			h.FlowFormat.Free()
		}
		h.FlowFormat = flowFormat
		if check != nil {
			check()
		}
	})
	if err != nil {
		return err
	}
	h.req = req
	thrown := Throw(self, &ProvideRequest{Request: req})
	if errors.Is(thrown, uerr.ErrUnhandled) {
		return nil
	}
	return thrown
}

// CleanUbufMgr releases the held flow format and request hint. Call
// from the pipe's release function.
func (h *UbufMgrHelper) CleanUbufMgr() {
	if h.FlowFormat != nil {
		h.FlowFormat.Free()
		h.FlowFormat = nil
	}
	if h.req != nil {
		h.req.Clean()
		h.req = nil
	}
}

// vim: foldmethod=marker
