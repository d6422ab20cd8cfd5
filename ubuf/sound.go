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

type soundShared struct {
	refcount urefcount.Count
	mgr      *SoundMgr
	mem      *umem.Mem
	// plane i starts at i*planeBytes within the storage area
	planeBytes   int
	allocSamples int
}

// Sound is a windowed view over shared planar audio. Each channel plane
// holds allocSamples samples of the manager's fixed sample size; the
// window is a sample range applied to every plane.
type Sound struct {
	mgr     *SoundMgr
	shared  *soundShared
	off     int
	samples int
}

// SoundMgrConfig configures a SoundMgr.
type SoundMgrConfig struct {
	// Depth bounds the recycling pools.
	Depth int

	// SampleSize is the byte size of one sample on one plane (frame
	// size for the plane, e.g. 4 for s32 mono planes).
	SampleSize int

	// Prepend is a spare margin in samples allocated before the window.
	Prepend int

	// Align aligns each plane's first byte. Zero means no alignment.
	Align int

	// Channels lists the channel tags of the produced buffers ("l",
	// "r", "lr", ...).
	Channels []string

	// Mem provides the raw storage; nil means the Go heap.
	Mem umem.Mgr
}

// SoundMgr produces Sound buffers of one fixed channel layout.
type SoundMgr struct {
	cfg        SoundMgrConfig
	sharedPool *upool.Pool[*soundShared]
	viewPool   *upool.Pool[*Sound]
}

// NewSoundMgr returns a SoundMgr with the provided configuration.
func NewSoundMgr(cfg SoundMgrConfig) (*SoundMgr, error) {
	if cfg.SampleSize <= 0 || len(cfg.Channels) == 0 {
		return nil, uerr.ErrInvalid
	}
	if cfg.Mem == nil {
		cfg.Mem = umem.NewHeapMgr()
	}
	m := &SoundMgr{cfg: cfg}
	m.sharedPool = upool.NewPool[*soundShared](cfg.Depth,
		func() *soundShared { return &soundShared{mgr: m} },
		nil,
	)
	m.viewPool = upool.NewPool[*Sound](cfg.Depth,
		func() *Sound { return &Sound{mgr: m} },
		nil,
	)
	return m, nil
}

// Family implements the ubuf.Mgr interface.
func (m *SoundMgr) Family() Family {
	return FamilySound
}

// Check implements the ubuf.Mgr interface.
func (m *SoundMgr) Check(flow FlowArgs) error {
	if !strings.HasPrefix(flow.Def, "sound.") {
		return uerr.ErrInvalid
	}
	if flow.Align != 0 && (m.cfg.Align == 0 || m.cfg.Align%flow.Align != 0) {
		return uerr.ErrInvalid
	}
	if flow.Prepend > m.cfg.Prepend {
		return uerr.ErrInvalid
	}
	for _, channel := range flow.Planes {
		if !m.hasChannel(channel) {
			return uerr.ErrInvalid
		}
	}
	return nil
}

func (m *SoundMgr) hasChannel(channel string) bool {
	for _, c := range m.cfg.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

// SampleSize returns the byte size of one sample on one plane.
func (m *SoundMgr) SampleSize() int {
	return m.cfg.SampleSize
}

// Channels returns the channel tags of the produced buffers.
func (m *SoundMgr) Channels() []string {
	return append([]string(nil), m.cfg.Channels...)
}

// Alloc produces a Sound of the requested number of samples per plane,
// plus the configured prepend margin.
func (m *SoundMgr) Alloc(samples int) (*Sound, error) {
	if samples < 0 {
		return nil, uerr.ErrInvalid
	}
	allocSamples := samples + m.cfg.Prepend
	planeBytes := allocSamples * m.cfg.SampleSize
	if m.cfg.Align > 1 {
		if rem := planeBytes % m.cfg.Align; rem != 0 {
			planeBytes += m.cfg.Align - rem
		}
	}
	total := planeBytes * len(m.cfg.Channels)

	s := m.sharedPool.Get()
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
	s.planeBytes = planeBytes
	s.allocSamples = allocSamples
	s.refcount.Init(func() {
		m.sharedPool.Put(s)
	})

	b := m.viewPool.Get()
	b.shared = s
	b.off = m.cfg.Prepend
	b.samples = samples
	return b, nil
}

// Family implements the ubuf.Buf interface.
func (b *Sound) Family() Family {
	return FamilySound
}

// Samples returns the window size in samples.
func (b *Sound) Samples() int {
	return b.samples
}

// Free implements the ubuf.Buf interface.
func (b *Sound) Free() {
	b.shared.refcount.Release()
	b.shared = nil
	b.mgr.viewPool.Put(b)
}

// Dup produces a second view over the same storage, with the same window.
func (b *Sound) Dup() (*Sound, error) {
	dup := b.mgr.viewPool.Get()
	b.shared.refcount.Use()
	dup.shared = b.shared
	dup.off = b.off
	dup.samples = b.samples
	return dup, nil
}

// Planes calls fn with each channel tag, in manager order, stopping early
// if fn returns false.
func (b *Sound) Planes(fn func(channel string) bool) {
	for _, channel := range b.mgr.cfg.Channels {
		if !fn(channel) {
			return
		}
	}
}

func (b *Sound) planeWindow(channel string) ([]byte, error) {
	idx := -1
	for i, c := range b.mgr.cfg.Channels {
		if c == channel {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, uerr.ErrInvalid
	}
	start := idx*b.shared.planeBytes + b.off*b.mgr.cfg.SampleSize
	end := start + b.samples*b.mgr.cfg.SampleSize
	base := b.shared.mem.Bytes()
	if end > len(base) {
		return nil, uerr.ErrInvalid
	}
	return base[start:end:end], nil
}

// Plane maps a channel plane for reading. The slice aliases the shared
// storage and must be treated read-only.
func (b *Sound) Plane(channel string) ([]byte, error) {
	return b.planeWindow(channel)
}

// WritePlane maps a channel plane for writing. The storage area must be
// singly referenced; ErrBusy reports a shared area.
func (b *Sound) WritePlane(channel string) ([]byte, error) {
	if !b.shared.refcount.Single() {
		return nil, uerr.ErrBusy
	}
	return b.planeWindow(channel)
}

// Resize retracts or extends the window, in samples. A positive offset
// drops samples from the front; a negative one digs into the prepend
// margin, which requires a singly referenced storage area. samples may be
// -1 to keep everything up to the allocated extent.
func (b *Sound) Resize(offset, samples int) error {
	newOff := b.off + offset
	if newOff < 0 {
		return uerr.ErrInvalid
	}
	if samples == -1 {
		samples = b.shared.allocSamples - newOff
	}
	if samples < 0 || newOff+samples > b.shared.allocSamples {
		return uerr.ErrInvalid
	}
	grows := newOff < b.off || newOff+samples > b.off+b.samples
	if grows && !b.shared.refcount.Single() {
		return uerr.ErrBusy
	}
	b.off = newOff
	b.samples = samples
	return nil
}

// vim: foldmethod=marker
