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
)

// SubsHelper manages a super-pipe's dynamic set of sub-pipes. The super
// owns the membership list but not the sub-pipes themselves; the
// relation is weak both ways, so a super being torn down severs its
// living subs rather than waiting on them.
type SubsHelper struct {
	subs   ulist.List[Pipe]
	subMgr Mgr
}

// InitSubs prepares the helper. subMgr constructs this super's
// sub-pipes; it may be nil for supers whose subs are allocated
// elsewhere.
func (h *SubsHelper) InitSubs(subMgr Mgr) {
	h.subs.Init()
	h.subMgr = subMgr
}

// CleanSubs severs every remaining sub-pipe. Call from the super's
// release function; living subs keep working but lose their super.
func (h *SubsHelper) CleanSubs() {
	h.subs.DeleteForeach(func(node *ulist.Node[Pipe]) bool {
		h.subs.Remove(node)
		return true
	})
}

// AddSub records a new sub-pipe.
func (h *SubsHelper) AddSub(sub Pipe) {
	h.subs.PushBack(&sub.Core().Node)
}

// RemoveSub forgets a sub-pipe.
func (h *SubsHelper) RemoveSub(sub Pipe) {
	h.subs.Remove(&sub.Core().Node)
}

// ForeachSub walks the sub-pipes in registration order.
func (h *SubsHelper) ForeachSub(fn func(sub Pipe) bool) {
	h.subs.Foreach(fn)
}

// IterateSubs steps through the sub-pipes: prev nil starts, nil comes
// back at the end.
func (h *SubsHelper) IterateSubs(prev Pipe) Pipe {
	var (
		next    Pipe
		matched = prev == nil
	)
	h.subs.Foreach(func(sub Pipe) bool {
		if matched {
			next = sub
			return false
		}
		matched = sub == prev
		return true
	})
	return next
}

// ControlSubs handles the super-side commands, reporting
// uerr.ErrUnhandled for everything else.
func (h *SubsHelper) ControlSubs(self Pipe, cmd Command) error {
	switch cmd := cmd.(type) {
	case *CmdIterateSub:
		cmd.Sub = h.IterateSubs(cmd.Sub)
		return nil
	case *CmdGetSubMgr:
		if h.subMgr == nil {
			return uerr.ErrUnhandled
		}
		cmd.Mgr = h.subMgr
		return nil
	default:
		return uerr.ErrUnhandled
	}
}

// SubHelper is the sub-pipe side of the relation: a weak back-pointer
// to the super. Sub-pipes never extend super lifetimes.
type SubHelper struct {
	super Pipe
}

// InitSub records the super and registers with its SubsHelper.
func (h *SubHelper) InitSub(self Pipe, super Pipe, subs *SubsHelper) {
	h.super = super
	subs.AddSub(self)
}

// CleanSub deregisters from the super. Call from the sub's release
// function; the membership node unlinks itself even if the super
// severed first.
func (h *SubHelper) CleanSub(self Pipe) {
	self.Core().Node.Unlink()
	h.super = nil
}

// Super returns the super-pipe, nil once severed.
func (h *SubHelper) Super() Pipe {
	return h.super
}

// ControlSub handles the sub-side commands, reporting
// uerr.ErrUnhandled for everything else.
func (h *SubHelper) ControlSub(self Pipe, cmd Command) error {
	switch cmd := cmd.(type) {
	case *CmdSubGetSuper:
		cmd.Super = h.super
		return nil
	default:
		return uerr.ErrUnhandled
	}
}

// vim: foldmethod=marker
