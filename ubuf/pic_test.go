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

// yuv420 is the classic planar 4:2:0 layout.
func yuv420(t *testing.T) *ubuf.PicMgr {
	t.Helper()
	mgr, err := ubuf.NewPicMgr(ubuf.PicMgrConfig{
		Depth:      4,
		Macropixel: 1,
		Planes: []ubuf.PlaneSpec{
			{Chroma: "y8", HSub: 1, VSub: 1, MacropixelSize: 1},
			{Chroma: "u8", HSub: 2, VSub: 2, MacropixelSize: 1},
			{Chroma: "v8", HSub: 2, VSub: 2, MacropixelSize: 1},
		},
	})
	require.NoError(t, err)
	return mgr
}

func TestPicAllocAndPlanes(t *testing.T) {
	mgr := yuv420(t)

	pic, err := mgr.Alloc(4, 4)
	require.NoError(t, err)
	defer pic.Free()

	h, v := pic.Size()
	assert.Equal(t, 4, h)
	assert.Equal(t, 4, v)

	var chromas []string
	pic.Planes(func(chroma string) bool {
		chromas = append(chromas, chroma)
		return true
	})
	assert.Equal(t, []string{"y8", "u8", "v8"}, chromas)

	y, stride, err := pic.WritePlane("y8")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stride, 4)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			y[row*stride+col] = byte(row*4 + col)
		}
	}

	u, ustride, err := pic.WritePlane("u8")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ustride, 2)
	u[0] = 0x80

	back, stride2, err := pic.Plane("y8")
	require.NoError(t, err)
	assert.Equal(t, stride, stride2)
	assert.Equal(t, byte(5), back[1*stride+1])

	_, _, err = pic.Plane("a8")
	assert.ErrorIs(t, err, uerr.ErrInvalid)
}

func TestPicAllocValidatesSubsampling(t *testing.T) {
	mgr := yuv420(t)

	// odd sizes cannot carry 2x2 subsampled chroma planes
	_, err := mgr.Alloc(5, 4)
	assert.ErrorIs(t, err, uerr.ErrInvalid)
	_, err = mgr.Alloc(4, 3)
	assert.ErrorIs(t, err, uerr.ErrInvalid)
	_, err = mgr.Alloc(0, 4)
	assert.ErrorIs(t, err, uerr.ErrInvalid)
}

func TestPicDupSharesStorage(t *testing.T) {
	mgr := yuv420(t)

	pic, err := mgr.Alloc(4, 4)
	require.NoError(t, err)
	y, stride, err := pic.WritePlane("y8")
	require.NoError(t, err)
	y[0] = 42

	dup, err := pic.Dup()
	require.NoError(t, err)

	// writes are refused while the storage is shared
	_, _, err = pic.WritePlane("y8")
	assert.ErrorIs(t, err, uerr.ErrBusy)

	got, _, err := dup.Plane("y8")
	require.NoError(t, err)
	assert.Equal(t, byte(42), got[0])
	_ = stride

	pic.Free()
	got, _, err = dup.Plane("y8")
	require.NoError(t, err)
	assert.Equal(t, byte(42), got[0])
	dup.Free()
}

func TestPicResizeWindow(t *testing.T) {
	mgr, err := ubuf.NewPicMgr(ubuf.PicMgrConfig{
		Depth:      4,
		Macropixel: 1,
		HMPrepend:  2,
		HMAppend:   2,
		VPrepend:   2,
		VAppend:    2,
		Planes: []ubuf.PlaneSpec{
			{Chroma: "y8", HSub: 1, VSub: 1, MacropixelSize: 1},
			{Chroma: "u8", HSub: 2, VSub: 2, MacropixelSize: 1},
			{Chroma: "v8", HSub: 2, VSub: 2, MacropixelSize: 1},
		},
	})
	require.NoError(t, err)

	pic, err := mgr.Alloc(8, 8)
	require.NoError(t, err)
	defer pic.Free()

	// crop the window
	require.NoError(t, pic.Resize(2, 2, 4, 4))
	h, v := pic.Size()
	assert.Equal(t, 4, h)
	assert.Equal(t, 4, v)

	// and grow it back out into the margins
	require.NoError(t, pic.Resize(-2, -2, 8, 8))
	h, v = pic.Size()
	assert.Equal(t, 8, h)
	assert.Equal(t, 8, v)

	// subsampling still constrains the window position
	assert.ErrorIs(t, pic.Resize(1, 0, 4, 4), uerr.ErrInvalid)
}

func TestPicResizeSharedIsBusy(t *testing.T) {
	mgr := yuv420(t)

	pic, err := mgr.Alloc(8, 8)
	require.NoError(t, err)
	dup, err := pic.Dup()
	require.NoError(t, err)

	// growing needs exclusivity, cropping does not
	assert.NoError(t, pic.Resize(2, 2, 4, 4))
	assert.ErrorIs(t, pic.Resize(-2, -2, 8, 8), uerr.ErrBusy)

	dup.Free()
	assert.NoError(t, pic.Resize(-2, -2, 8, 8))
	pic.Free()
}

func TestPicMgrCheck(t *testing.T) {
	mgr := yuv420(t)

	assert.NoError(t, mgr.Check(ubuf.FlowArgs{Def: "pic."}))
	assert.NoError(t, mgr.Check(ubuf.FlowArgs{
		Def:    "pic.",
		Planes: []string{"y8", "u8", "v8"},
	}))
	assert.ErrorIs(t, mgr.Check(ubuf.FlowArgs{Def: "sound."}), uerr.ErrInvalid)
	assert.ErrorIs(t, mgr.Check(ubuf.FlowArgs{
		Def:    "pic.",
		Planes: []string{"rgb24"},
	}), uerr.ErrInvalid)
	assert.Equal(t, []string{"y8", "u8", "v8"}, mgr.Planes())
}

// vim: foldmethod=marker
