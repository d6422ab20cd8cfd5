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

package umem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/upipe/umem"
)

func TestHeapMgr(t *testing.T) {
	mgr := umem.NewHeapMgr()

	m := mgr.Alloc(64)
	assert.NotNil(t, m)
	assert.Equal(t, 64, m.Size())

	m.Bytes()[0] = 0xAA
	assert.True(t, mgr.Realloc(m, 128))
	assert.Equal(t, 128, m.Size())
	assert.Equal(t, byte(0xAA), m.Bytes()[0])

	assert.True(t, mgr.Realloc(m, 16))
	assert.Equal(t, 16, m.Size())

	m.Free()
}

func TestPoolMgrRecycles(t *testing.T) {
	mgr := umem.NewPoolMgr(4, 6, 12)

	m := mgr.Alloc(100)
	assert.NotNil(t, m)
	assert.Equal(t, 100, m.Size())
	m.Bytes()[0] = 1
	m.Free()

	// a same-class allocation reuses the pooled buffer
	m2 := mgr.Alloc(120)
	assert.NotNil(t, m2)
	assert.Equal(t, 120, m2.Size())
	m2.Free()

	// above the largest class, fall through to the heap
	big := mgr.Alloc(1 << 14)
	assert.NotNil(t, big)
	assert.Equal(t, 1<<14, big.Size())
	big.Free()

	mgr.Vacuum()
}

func TestPoolMgrRealloc(t *testing.T) {
	mgr := umem.NewPoolMgr(4, 6, 12)

	m := mgr.Alloc(60)
	copy(m.Bytes(), []byte("payload"))
	assert.True(t, mgr.Realloc(m, 200))
	assert.Equal(t, 200, m.Size())
	assert.Equal(t, []byte("payload"), m.Bytes()[:7])
	m.Free()
}

// vim: foldmethod=marker
