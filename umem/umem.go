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

// Package umem contains the raw byte-buffer abstraction backing media
// buffers. A Mem owns its octets exclusively until freed; the manager it
// came from is shared and decides where the octets actually live.
package umem

// Mem is a typed byte buffer handed out by a Mgr.
type Mem struct {
	mgr Mgr
	buf []byte
}

// Bytes returns the owned octets.
func (m *Mem) Bytes() []byte {
	return m.buf
}

// Size returns the usable size of the buffer in bytes.
func (m *Mem) Size() int {
	return len(m.buf)
}

// Free returns the buffer to the Mgr it came from. The octets must not be
// touched afterwards.
func (m *Mem) Free() {
	m.mgr.Free(m)
}

// Mgr is a byte-buffer allocator backend.
type Mgr interface {
	// Alloc returns a buffer of at least size bytes, or nil when the
	// backend is exhausted.
	Alloc(size int) *Mem

	// Realloc grows or shrinks a buffer in place when the backend can,
	// reporting whether the buffer now has the requested size. The
	// prefix content is preserved on success.
	Realloc(m *Mem, size int) bool

	// Free releases a buffer allocated by this Mgr.
	Free(m *Mem)

	// Vacuum releases any internal caches back to the system.
	Vacuum()
}

// vim: foldmethod=marker
