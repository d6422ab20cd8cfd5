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

package ubuf

import (
	"strings"

	"hz.tools/upipe/uerr"
	"hz.tools/upipe/umem"
	"hz.tools/upipe/upool"
	"hz.tools/upipe/urefcount"
)

// PlaneSpec describes one plane of a picture format: its chroma tag
// ("y8", "u8", "v8", "rgb24", ...), the horizontal and vertical
// subsampling against the luma grid, and the byte size of one macropixel
// on this plane.
type PlaneSpec struct {
	Chroma         string
	HSub, VSub     int
	MacropixelSize int
}

type picPlane struct {
	off    int
	stride int
}

type picShared struct {
	refcount urefcount.Count
	mgr      *PicMgr
	mem      *umem.Mem
	planes   []picPlane
	// allocated dimensions, in pixels, margins included
	allocH, allocV int
}

// Picture is a windowed view over a shared planar 2-D buffer. All planes
// live in one storage area but are addressable independently; the window
// is expressed in pixels on the luma grid.
type Picture struct {
	mgr          *PicMgr
	shared       *picShared
	hoff, voff   int
	hsize, vsize int
}

// PicMgrConfig configures a PicMgr.
type PicMgrConfig struct {
	// Depth bounds the recycling pools.
	Depth int

	// Macropixel is the number of pixels in one macropixel (2 for
	// packed 4:2:2, 1 for planar formats).
	Macropixel int

	// HMPrepend/HMAppend are horizontal margins in macropixels;
	// VPrepend/VAppend are vertical margins in lines.
	HMPrepend, HMAppend int
	VPrepend, VAppend   int

	// Align aligns each plane's first byte and stride. Zero means no
	// alignment.
	Align int

	// Planes lists the planes of the produced pictures.
	Planes []PlaneSpec

	// Mem provides the raw storage; nil means the Go heap.
	Mem umem.Mgr
}

// PicMgr produces Picture buffers of one fixed plane layout.
type PicMgr struct {
	cfg        PicMgrConfig
	sharedPool *upool.Pool[*picShared]
	viewPool   *upool.Pool[*Picture]
}

// NewPicMgr returns a PicMgr with the provided configuration. At least
// one plane is required, and subsampling factors must be positive.
func NewPicMgr(cfg PicMgrConfig) (*PicMgr, error) {
	if cfg.Macropixel <= 0 {
		cfg.Macropixel = 1
	}
	if len(cfg.Planes) == 0 {
		return nil, uerr.ErrInvalid
	}
	for _, plane := range cfg.Planes {
		if plane.HSub <= 0 || plane.VSub <= 0 || plane.MacropixelSize <= 0 {
			return nil, uerr.ErrInvalid
		}
	}
	if cfg.Mem == nil {
		cfg.Mem = umem.NewHeapMgr()
	}
	m := &PicMgr{cfg: cfg}
	m.sharedPool = upool.NewPool[*picShared](cfg.Depth,
		func() *picShared { return &picShared{mgr: m} },
		nil,
	)
	m.viewPool = upool.NewPool[*Picture](cfg.Depth,
		func() *Picture { return &Picture{mgr: m} },
		nil,
	)
	return m, nil
}

// Family implements the ubuf.Mgr interface.
func (m *PicMgr) Family() Family {
	return FamilyPicture
}

// Check implements the ubuf.Mgr interface.
func (m *PicMgr) Check(flow FlowArgs) error {
	if !strings.HasPrefix(flow.Def, "pic.") {
		return uerr.ErrInvalid
	}
	if flow.Align != 0 && (m.cfg.Align == 0 || m.cfg.Align%flow.Align != 0) {
		return uerr.ErrInvalid
	}
	for _, chroma := range flow.Planes {
		if m.plane(chroma) == nil {
			return uerr.ErrInvalid
		}
	}
	return nil
}

func (m *PicMgr) plane(chroma string) *PlaneSpec {
	for i := range m.cfg.Planes {
		if m.cfg.Planes[i].Chroma == chroma {
			return &m.cfg.Planes[i]
		}
	}
	return nil
}

// Planes returns the chroma tags of the produced pictures, in manager
// order.
func (m *PicMgr) Planes() []string {
	out := make([]string, len(m.cfg.Planes))
	for i := range m.cfg.Planes {
		out[i] = m.cfg.Planes[i].Chroma
	}
	return out
}

func (m *PicMgr) align(v int) int {
	if m.cfg.Align > 1 {
		if rem := v % m.cfg.Align; rem != 0 {
			return v + m.cfg.Align - rem
		}
	}
	return v
}

// checkSize validates that a window position and size land on whole
// macropixels and whole subsampled pixels on every plane.
func (m *PicMgr) checkSize(hsize, vsize int) error {
	if hsize <= 0 || vsize <= 0 || hsize%m.cfg.Macropixel != 0 {
		return uerr.ErrInvalid
	}
	for _, plane := range m.cfg.Planes {
		if hsize%plane.HSub != 0 || vsize%plane.VSub != 0 {
			return uerr.ErrInvalid
		}
	}
	return nil
}

// Alloc produces a Picture of hsize x vsize pixels plus the configured
// margins, with the window covering the requested sizes.
func (m *PicMgr) Alloc(hsize, vsize int) (*Picture, error) {
	if err := m.checkSize(hsize, vsize); err != nil {
		return nil, err
	}
	allocH := hsize + (m.cfg.HMPrepend+m.cfg.HMAppend)*m.cfg.Macropixel
	allocV := vsize + m.cfg.VPrepend + m.cfg.VAppend

	s := m.sharedPool.Get()
	s.planes = s.planes[:0]
	total := 0
	for _, plane := range m.cfg.Planes {
		stride := m.align(allocH / plane.HSub * plane.MacropixelSize / m.cfg.Macropixel)
		s.planes = append(s.planes, picPlane{off: m.align(total), stride: stride})
		total = m.align(total) + stride*(allocV/plane.VSub)
	}
	if s.mem == nil || s.mem.Size() < total {
		if s.mem != nil {
			s.mem.Free()
		}
		s.mem = m.cfg.Mem.Alloc(total)
		if s.mem == nil {
			m.sharedPool.Put(s)
			return nil, uerr.ErrAlloc
		}
	}
	s.allocH = allocH
	s.allocV = allocV
	s.refcount.Init(func() {
		m.sharedPool.Put(s)
	})

	p := m.viewPool.Get()
	p.shared = s
	p.hoff = m.cfg.HMPrepend * m.cfg.Macropixel
	p.voff = m.cfg.VPrepend
	p.hsize = hsize
	p.vsize = vsize
	return p, nil
}

// Family implements the ubuf.Buf interface.
func (p *Picture) Family() Family {
	return FamilyPicture
}

// Size returns the window dimensions in pixels.
func (p *Picture) Size() (hsize, vsize int) {
	return p.hsize, p.vsize
}

// Free implements the ubuf.Buf interface.
func (p *Picture) Free() {
	p.shared.refcount.Release()
	p.shared = nil
	p.mgr.viewPool.Put(p)
}

// Dup produces a second view over the same storage, with the same window.
func (p *Picture) Dup() (*Picture, error) {
	dup := p.mgr.viewPool.Get()
	p.shared.refcount.Use()
	dup.shared = p.shared
	dup.hoff, dup.voff = p.hoff, p.voff
	dup.hsize, dup.vsize = p.hsize, p.vsize
	return dup, nil
}

// Planes calls fn with each plane's chroma tag, in manager order,
// stopping early if fn returns false.
func (p *Picture) Planes(fn func(chroma string) bool) {
	for _, plane := range p.mgr.cfg.Planes {
		if !fn(plane.Chroma) {
			return
		}
	}
}

func (p *Picture) planeWindow(chroma string) ([]byte, int, error) {
	spec := p.mgr.plane(chroma)
	if spec == nil {
		return nil, 0, uerr.ErrInvalid
	}
	var idx int
	for i := range p.mgr.cfg.Planes {
		if p.mgr.cfg.Planes[i].Chroma == chroma {
			idx = i
		}
	}
	plane := p.shared.planes[idx]
	start := plane.off +
		p.voff/spec.VSub*plane.stride +
		p.hoff/spec.HSub*spec.MacropixelSize/p.mgr.cfg.Macropixel
	rows := p.vsize / spec.VSub
	end := start + (rows-1)*plane.stride +
		p.hsize/spec.HSub*spec.MacropixelSize/p.mgr.cfg.Macropixel
	base := p.shared.mem.Bytes()
	if end > len(base) {
		return nil, 0, uerr.ErrInvalid
	}
	return base[start:end:end], plane.stride, nil
}

// Plane maps a plane for reading, returning the window bytes and the
// stride between lines. The slice aliases the shared storage and must be
// treated read-only.
func (p *Picture) Plane(chroma string) ([]byte, int, error) {
	return p.planeWindow(chroma)
}

// WritePlane maps a plane for writing. The storage area must be singly
// referenced; ErrBusy reports a shared area.
func (p *Picture) WritePlane(chroma string) ([]byte, int, error) {
	if !p.shared.refcount.Single() {
		return nil, 0, uerr.ErrBusy
	}
	return p.planeWindow(chroma)
}

// Resize moves and resizes the window: hskip/vskip drop pixels and lines
// from the top-left (negative values extend into the prepend margins),
// and hsize/vsize set the new dimensions, -1 keeping everything up to the
// allocated extent. Extending into a margin requires a singly referenced
// storage area.
func (p *Picture) Resize(hskip, vskip, hsize, vsize int) error {
	newH := p.hoff + hskip
	newV := p.voff + vskip
	if newH < 0 || newV < 0 {
		return uerr.ErrInvalid
	}
	if hsize == -1 {
		hsize = p.shared.allocH - newH
	}
	if vsize == -1 {
		vsize = p.shared.allocV - newV
	}
	if newH+hsize > p.shared.allocH || newV+vsize > p.shared.allocV {
		return uerr.ErrInvalid
	}
	if err := p.mgr.checkSize(hsize, vsize); err != nil {
		return err
	}
	if newH%p.mgr.cfg.Macropixel != 0 {
		return uerr.ErrInvalid
	}
	for _, plane := range p.mgr.cfg.Planes {
		if newH%plane.HSub != 0 || newV%plane.VSub != 0 {
			return uerr.ErrInvalid
		}
	}
	grows := newH < p.hoff || newV < p.voff ||
		newH+hsize > p.hoff+p.hsize || newV+vsize > p.voff+p.vsize
	if grows && !p.shared.refcount.Single() {
		return uerr.ErrBusy
	}
	p.hoff, p.voff = newH, newV
	p.hsize, p.vsize = hsize, vsize
	return nil
}

// vim: foldmethod=marker
