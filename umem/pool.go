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

package umem

import (
	"math/bits"

	"hz.tools/upipe/upool"
)

// poolMgr buckets buffers by power-of-two size class and recycles them
// through bounded pools, so steady-state media allocation stays off the
// collector entirely.
type poolMgr struct {
	minShift int
	pools    []*upool.Pool[*Mem]
}

// NewPoolMgr returns a Mgr recycling buffers in power-of-two size classes
// from 1<<minShift to 1<<maxShift bytes, holding at most depth buffers per
// class. Requests above the largest class fall through to the heap.
func NewPoolMgr(depth, minShift, maxShift int) Mgr {
	mgr := &poolMgr{minShift: minShift}
	for shift := minShift; shift <= maxShift; shift++ {
		size := 1 << shift
		mgr.pools = append(mgr.pools, upool.NewPool[*Mem](depth,
			func() *Mem {
				return &Mem{mgr: mgr, buf: make([]byte, size)}
			},
			nil,
		))
	}
	return mgr
}

func (p *poolMgr) class(size int) int {
	if size <= 0 {
		return 0
	}
	shift := bits.Len(uint(size - 1))
	if shift < p.minShift {
		shift = p.minShift
	}
	return shift - p.minShift
}

func (p *poolMgr) Alloc(size int) *Mem {
	if size < 0 {
		return nil
	}
	class := p.class(size)
	if class >= len(p.pools) {
		return &Mem{mgr: p, buf: make([]byte, size)}
	}
	m := p.pools[class].Get()
	m.buf = m.buf[:cap(m.buf)][:size]
	return m
}

func (p *poolMgr) Realloc(m *Mem, size int) bool {
	if size < 0 {
		return false
	}
	if size <= cap(m.buf) {
		m.buf = m.buf[:size]
		return true
	}
	grown := p.Alloc(size)
	copy(grown.buf, m.buf)
	old := *m
	*m = *grown
	p.Free(&old)
	return true
}

func (p *poolMgr) Free(m *Mem) {
	if m.buf == nil {
		return
	}
	class := p.class(cap(m.buf))
	if class < len(p.pools) && cap(m.buf) == 1<<(class+p.minShift) {
		m.buf = m.buf[:cap(m.buf)]
		p.pools[class].Put(m)
		return
	}
	m.buf = nil
}

func (p *poolMgr) Vacuum() {
	for _, pool := range p.pools {
		pool.Vacuum()
	}
}

// vim: foldmethod=marker
