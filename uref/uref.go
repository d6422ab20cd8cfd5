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

// Package uref contains the unit transported between pipes: an optional
// media buffer plus an owned attribute dictionary. A Ref carrying only a
// dictionary with a flow definition describes a stream rather than a
// frame; MatchDef tells the two apart by prefix.
//
// Ownership is strict: a Ref's buffer belongs to that Ref alone, and a
// Ref handed to an input function belongs to the callee. Code that wants
// to keep looking at a Ref past that point duplicates it.
package uref

import (
	"hz.tools/upipe/ubuf"
	"hz.tools/upipe/udict"
	"hz.tools/upipe/ulist"
	"hz.tools/upipe/upool"
)

// Ref is the transported unit.
type Ref struct {
	mgr *Mgr

	// Buf is the media payload, nil on control and flow-definition
	// units. The Ref owns it exclusively.
	Buf ubuf.Buf

	// Dict holds the attributes. Always present, owned.
	Dict *udict.Dict

	// Node gives the Ref list membership for hold queues.
	Node ulist.Node[*Ref]
}

// Mgr allocates and recycles Refs.
type Mgr struct {
	pool    *upool.Pool[*Ref]
	dictMgr *udict.Mgr
}

// NewMgr returns a Mgr recycling at most depth Refs, drawing dictionaries
// from the provided manager.
func NewMgr(depth int, dictMgr *udict.Mgr) *Mgr {
	mgr := &Mgr{dictMgr: dictMgr}
	mgr.pool = upool.NewPool[*Ref](depth,
		func() *Ref { return &Ref{mgr: mgr} },
		nil,
	)
	return mgr
}

// Alloc returns a Ref with an empty dictionary and no buffer.
func (m *Mgr) Alloc() *Ref {
	r := m.pool.Get()
	r.Buf = nil
	r.Dict = m.dictMgr.Alloc()
	r.Node.Init(r)
	return r
}

// Dup returns an independent copy: the dictionary is copied, the buffer
// is duplicated (sharing storage with the original).
func (r *Ref) Dup() (*Ref, error) {
	dup := r.mgr.pool.Get()
	dup.Dict = r.mgr.dictMgr.Dup(r.Dict)
	dup.Node.Init(dup)
	dup.Buf = nil
	if r.Buf != nil {
		buf, err := ubuf.Dup(r.Buf)
		if err != nil {
			dup.Dict.Free()
			r.mgr.pool.Put(dup)
			return nil, err
		}
		dup.Buf = buf
	}
	return dup, nil
}

// AttachBuf gives the Ref a buffer, freeing any previous one.
func (r *Ref) AttachBuf(b ubuf.Buf) {
	if r.Buf != nil {
		r.Buf.Free()
	}
	r.Buf = b
}

// DetachBuf removes and returns the buffer; the caller takes ownership.
func (r *Ref) DetachBuf() ubuf.Buf {
	b := r.Buf
	r.Buf = nil
	return b
}

// Free releases the buffer and dictionary and recycles the Ref.
func (r *Ref) Free() {
	if r.Buf != nil {
		r.Buf.Free()
		r.Buf = nil
	}
	if r.Dict != nil {
		r.Dict.Free()
		r.Dict = nil
	}
	r.mgr.pool.Put(r)
}

// vim: foldmethod=marker
