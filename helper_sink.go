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
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/ulist"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// SinkHelper manages a pipe that cannot always consume immediately: a
// hold list for stashed units and blockers pausing the pumps that
// delivered them. While a blocker is live the feeding pump does not
// fire; draining the hold list releases the blockers, reactivating the
// source. This is the framework's backpressure mechanism.
type SinkHelper struct {
	held      ulist.List[*uref.Ref]
	blockers  []upump.Blocker
	maxLength int
}

// InitSink prepares the helper. maxLength bounds the hold list, zero
// for unbounded.
func (h *SinkHelper) InitSink(maxLength int) {
	h.held.Init()
	h.maxLength = maxLength
}

// CleanSink frees every held unit and releases every blocker. Call from
// the pipe's release function.
func (h *SinkHelper) CleanSink() {
	for {
		node := h.held.PopFront()
		if node == nil {
			break
		}
		node.Elem().Free()
	}
	h.UnblockSources()
}

// Hold stashes a unit for later consumption, preserving arrival order.
// It reports false when the hold list is at its bound; the unit is held
// regardless, so the caller should block its source.
func (h *SinkHelper) Hold(ref *uref.Ref) bool {
	h.held.PushBack(&ref.Node)
	return h.maxLength == 0 || h.held.Len() <= h.maxLength
}

// HoldFront puts a unit back at the head of the hold list, for a
// consumer that popped a unit it could not place after all.
func (h *SinkHelper) HoldFront(ref *uref.Ref) {
	h.held.PushFront(&ref.Node)
}

// PopHeld removes and returns the oldest held unit, nil when the hold
// list is empty.
func (h *SinkHelper) PopHeld() *uref.Ref {
	node := h.held.PopFront()
	if node == nil {
		return nil
	}
	return node.Elem()
}

// HasHeld reports whether units are held.
func (h *SinkHelper) HasHeld() bool {
	return !h.held.Empty()
}

// HeldLen returns the number of held units.
func (h *SinkHelper) HeldLen() int {
	return h.held.Len()
}

// BlockSource pauses the pump that delivered the current unit. A nil
// pump (input from outside any pump) is a no-op.
func (h *SinkHelper) BlockSource(self Pipe, pump upump.Pump) {
	if pump == nil {
		return
	}
	h.blockers = append(h.blockers, pump.Block())
}

// UnblockSources releases every blocker, reactivating the sources.
func (h *SinkHelper) UnblockSources() {
	for _, blocker := range h.blockers {
		blocker.Free()
	}
	h.blockers = h.blockers[:0]
}

// Blocking reports whether any source is currently paused.
func (h *SinkHelper) Blocking() bool {
	return len(h.blockers) > 0
}

// ControlSink handles the buffering commands, reporting
// uerr.ErrUnhandled for everything else.
func (h *SinkHelper) ControlSink(self Pipe, cmd Command) error {
	switch cmd := cmd.(type) {
	case *CmdGetMaxLength:
		cmd.Length = h.maxLength
		return nil
	case *CmdSetMaxLength:
		if cmd.Length < 0 {
			return uerr.ErrInvalid
		}
		h.maxLength = cmd.Length
		return nil
	default:
		return uerr.ErrUnhandled
	}
}

// vim: foldmethod=marker
