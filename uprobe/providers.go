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

package uprobe

import (
	"hz.tools/upipe"
	"hz.tools/upipe/uclock"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// NewUrefMgrProbe returns a probe answering uref-manager requests with
// a preconfigured manager.
func NewUrefMgrProbe(next *upipe.Probe, mgr *uref.Mgr) *upipe.Probe {
	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		ev, ok := event.(*upipe.ProvideRequest)
		if !ok || ev.Request.Kind != upipe.RequestUrefMgr {
			return uerr.ErrUnhandled
		}
		return ev.Request.ProvideUrefMgr(mgr)
	}, next)
}

// NewUclockProbe returns a probe answering clock requests with a
// preconfigured clock.
func NewUclockProbe(next *upipe.Probe, clock uclock.Clock) *upipe.Probe {
	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		ev, ok := event.(*upipe.ProvideRequest)
		if !ok || ev.Request.Kind != upipe.RequestUclock {
			return uerr.ErrUnhandled
		}
		return ev.Request.ProvideUclock(clock)
	}, next)
}

// NewUpumpMgrProbe returns a probe answering NeedUpumpMgr with a
// preconfigured event-loop manager.
func NewUpumpMgrProbe(next *upipe.Probe, mgr upump.Mgr) *upipe.Probe {
	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		ev, ok := event.(*upipe.NeedUpumpMgr)
		if !ok {
			return uerr.ErrUnhandled
		}
		ev.Mgr = mgr
		return nil
	}, next)
}

// vim: foldmethod=marker
