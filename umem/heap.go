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

type heapMgr struct{}

// NewHeapMgr returns a Mgr mapping directly onto the Go heap.
func NewHeapMgr() Mgr {
	return heapMgr{}
}

func (heapMgr) Alloc(size int) *Mem {
	if size < 0 {
		return nil
	}
	return &Mem{mgr: heapMgr{}, buf: make([]byte, size)}
}

func (heapMgr) Realloc(m *Mem, size int) bool {
	if size < 0 {
		return false
	}
	if size <= cap(m.buf) {
		m.buf = m.buf[:size]
		return true
	}
	buf := make([]byte, size)
	copy(buf, m.buf)
	m.buf = buf
	return true
}

func (heapMgr) Free(m *Mem) {
	m.buf = nil
}

func (heapMgr) Vacuum() {}

// vim: foldmethod=marker
