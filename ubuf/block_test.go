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

package ubuf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/upipe/ubuf"
	"hz.tools/upipe/uerr"
)

func blockMgr(t *testing.T) *ubuf.BlockMgr {
	t.Helper()
	return ubuf.NewBlockMgr(ubuf.BlockMgrConfig{
		Depth:   4,
		Prepend: 8,
		Append:  8,
	})
}

func TestBlockDupAndSplice(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.Alloc(10)
	require.NoError(t, err)
	span, err := u.WriteSpan(0, 10)
	require.NoError(t, err)
	for i := range span {
		span[i] = byte(i)
	}

	dup, err := u.Dup()
	require.NoError(t, err)

	v, err := u.Splice(2, 4)
	require.NoError(t, err)
	got, err := v.ReadSpan(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4, 5}, got)

	u.Free()

	// the duplicate still sees the whole window after the original is
	// released
	got, err = dup.ReadSpan(0, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)

	got, err = v.ReadSpan(0, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4, 5}, got)

	v.Free()
	dup.Free()
}

func TestBlockSpliceEqualsOffsetRead(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.FromBytes([]byte("the quick brown fox"))
	require.NoError(t, err)
	defer u.Free()

	v, err := u.Splice(4, 5)
	require.NoError(t, err)
	defer v.Free()

	direct, err := u.ReadSpan(4, 5)
	require.NoError(t, err)
	spliced, err := v.ReadSpan(0, 5)
	require.NoError(t, err)
	assert.Equal(t, direct, spliced)
}

func TestBlockResizeRestoresWindow(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.FromBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)
	defer u.Free()

	require.NoError(t, u.Resize(0, 4))
	assert.Equal(t, 4, u.Size())

	require.NoError(t, u.Resize(0, -1))
	assert.Equal(t, 10, u.Size())
	got, err := u.ReadSpan(0, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestBlockResizeFrontSkipAndBack(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.FromBytes([]byte{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	defer u.Free()

	require.NoError(t, u.Resize(2, -1))
	got, err := u.ReadSpan(0, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4, 5}, got)

	// un-skip back into the hidden front of the extent
	require.NoError(t, u.Resize(-2, -1))
	got, err = u.ReadSpan(0, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5}, got)
}

func TestBlockResizeMargins(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.Alloc(4)
	require.NoError(t, err)
	defer u.Free()

	// extend into the prepend margin
	require.NoError(t, u.Resize(-2, -1))
	assert.Equal(t, 6, u.Size())

	// and into the append margin
	require.NoError(t, u.Resize(0, 10))
	assert.Equal(t, 10, u.Size())

	// past the margin is invalid
	assert.ErrorIs(t, u.Resize(0, 1000), uerr.ErrInvalid)
	assert.ErrorIs(t, u.Resize(-100, -1), uerr.ErrInvalid)
}

func TestBlockResizeSharedIsBusy(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.Alloc(4)
	require.NoError(t, err)
	dup, err := u.Dup()
	require.NoError(t, err)

	assert.ErrorIs(t, u.Resize(-2, -1), uerr.ErrBusy)
	assert.ErrorIs(t, u.Resize(0, 8), uerr.ErrBusy)
	// shrinking needs no exclusivity
	assert.NoError(t, u.Resize(0, 2))

	dup.Free()
	u.Free()
}

func TestBlockWriteSharedIsBusy(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.Alloc(4)
	require.NoError(t, err)
	dup, err := u.Dup()
	require.NoError(t, err)

	_, err = u.WriteSpan(0, 4)
	assert.ErrorIs(t, err, uerr.ErrBusy)

	dup.Free()
	_, err = u.WriteSpan(0, 4)
	assert.NoError(t, err)
	u.Free()
}

func TestBlockAppendAndMerge(t *testing.T) {
	mgr := blockMgr(t)

	a, err := mgr.FromBytes([]byte("abcd"))
	require.NoError(t, err)
	b, err := mgr.FromBytes([]byte("efgh"))
	require.NoError(t, err)

	require.NoError(t, a.Append(b))
	assert.Equal(t, 8, a.Size())

	// reads crossing the segment boundary coalesce
	got, err := a.ReadSpan(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdefgh"), got)

	got, err = a.ReadSpan(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("cdef"), got)

	// merging materializes one contiguous area
	require.NoError(t, a.Merge())
	got, err = a.ReadSpan(0, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdefgh"), got)

	a.Free()
}

func TestBlockWriteAcrossSegments(t *testing.T) {
	mgr := blockMgr(t)

	a, err := mgr.FromBytes([]byte("aaaa"))
	require.NoError(t, err)
	b, err := mgr.FromBytes([]byte("bbbb"))
	require.NoError(t, err)
	require.NoError(t, a.Append(b))

	span, err := a.WriteSpan(2, 4)
	require.NoError(t, err)
	copy(span, "XXXX")

	got, err := a.ReadSpan(0, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaXXXXbb"), got)
	a.Free()
}

func TestBlockInvalidRanges(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.Alloc(4)
	require.NoError(t, err)
	defer u.Free()

	_, err = u.ReadSpan(3, 4)
	assert.ErrorIs(t, err, uerr.ErrInvalid)
	_, err = u.ReadSpan(-1, 2)
	assert.ErrorIs(t, err, uerr.ErrInvalid)
	_, err = u.Splice(0, 10)
	assert.ErrorIs(t, err, uerr.ErrInvalid)
}

func TestBlockMgrCheck(t *testing.T) {
	mgr := blockMgr(t)

	assert.NoError(t, mgr.Check(ubuf.FlowArgs{Def: "block.mpegts."}))
	assert.ErrorIs(t, mgr.Check(ubuf.FlowArgs{Def: "pic."}), uerr.ErrInvalid)
	assert.ErrorIs(t, mgr.Check(ubuf.FlowArgs{Def: "block.", Prepend: 64}),
		uerr.ErrInvalid)
}

func TestBlockSharedRecycling(t *testing.T) {
	mgr := blockMgr(t)

	u, err := mgr.Alloc(16)
	require.NoError(t, err)
	dup, err := u.Dup()
	require.NoError(t, err)

	// the shared area survives until the last view goes
	u.Free()
	got, err := dup.ReadSpan(0, 16)
	require.NoError(t, err)
	assert.Len(t, got, 16)
	dup.Free()

	// and a fresh allocation can reuse the recycled area
	u2, err := mgr.Alloc(16)
	require.NoError(t, err)
	u2.Free()
}

// vim: foldmethod=marker
