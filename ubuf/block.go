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

// blockShared is the refcounted storage behind one or more Block views.
// It outlives every view referencing it: it only returns to its manager's
// pool once its own count drops to zero.
type blockShared struct {
	refcount urefcount.Count
	mgr      *BlockMgr
	mem      *umem.Mem
}

func (s *blockShared) use() *blockShared {
	s.refcount.Use()
	return s
}

func (s *blockShared) release() {
	s.refcount.Release()
}

// seg is one window over a shared storage area. off/ext delimit the
// readable extent within the shared bytes; the prepend margin lives below
// off and the append margin above off+ext.
type seg struct {
	shared *blockShared
	off    int
	ext    int
}

// Block is a windowed view over a (possibly segmented) shared byte
// sequence. The window is a range over the concatenated extents of the
// segments; reads are zero-copy while they stay within one segment.
type Block struct {
	mgr  *BlockMgr
	segs []seg
	off  int
	size int
}

// BlockMgrConfig configures a BlockMgr. The zero value is usable: no
// margins, no alignment, modest pools, heap storage.
type BlockMgrConfig struct {
	// Depth bounds the shared-storage and view recycling pools.
	Depth int

	// Prepend and Append are spare margins allocated around each new
	// buffer so later resizes can extend the window without copying.
	Prepend int
	Append  int

	// Align makes the first readable byte start on this alignment within
	// the storage area. Zero means no alignment.
	Align int

	// Mem provides the raw storage; nil means the Go heap.
	Mem umem.Mgr
}

// BlockMgr produces Block buffers. It is shared read-only after creation;
// its internal pools are synchronized.
type BlockMgr struct {
	cfg        BlockMgrConfig
	sharedPool *upool.Pool[*blockShared]
	viewPool   *upool.Pool[*Block]
}

// NewBlockMgr returns a BlockMgr with the provided configuration.
func NewBlockMgr(cfg BlockMgrConfig) *BlockMgr {
	if cfg.Mem == nil {
		cfg.Mem = umem.NewHeapMgr()
	}
	m := &BlockMgr{cfg: cfg}
	m.sharedPool = upool.NewPool[*blockShared](cfg.Depth,
		func() *blockShared { return &blockShared{mgr: m} },
		nil,
	)
	m.viewPool = upool.NewPool[*Block](cfg.Depth,
		func() *Block { return &Block{mgr: m} },
		nil,
	)
	return m
}

// Family implements the ubuf.Mgr interface.
func (m *BlockMgr) Family() Family {
	return FamilyBlock
}

// Check implements the ubuf.Mgr interface.
func (m *BlockMgr) Check(flow FlowArgs) error {
	if !strings.HasPrefix(flow.Def, "block.") {
		return uerr.ErrInvalid
	}
	if flow.Align != 0 && (m.cfg.Align == 0 || m.cfg.Align%flow.Align != 0) {
		return uerr.ErrInvalid
	}
	if flow.Prepend > m.cfg.Prepend {
		return uerr.ErrInvalid
	}
	return nil
}

func (m *BlockMgr) allocShared(size int) (*blockShared, error) {
	s := m.sharedPool.Get()
	total := m.cfg.Prepend + size + m.cfg.Append + m.cfg.Align
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
	s.refcount.Init(func() {
		m.sharedPool.Put(s)
	})
	return s, nil
}

func (m *BlockMgr) allocView() *Block {
	b := m.viewPool.Get()
	b.segs = b.segs[:0]
	b.off = 0
	b.size = 0
	return b
}

// Alloc produces a Block with a fresh storage area of at least size bytes
// plus the configured margins, with the window covering [0, size).
func (m *BlockMgr) Alloc(size int) (*Block, error) {
	if size < 0 {
		return nil, uerr.ErrInvalid
	}
	s, err := m.allocShared(size)
	if err != nil {
		return nil, err
	}
	off := m.cfg.Prepend
	if m.cfg.Align > 1 {
		if rem := off % m.cfg.Align; rem != 0 {
			off += m.cfg.Align - rem
		}
	}
	b := m.allocView()
	b.segs = append(b.segs, seg{shared: s, off: off, ext: size})
	b.off = 0
	b.size = size
	return b, nil
}

// FromBytes produces a Block whose storage is initialized with a copy of
// the provided bytes.
func (m *BlockMgr) FromBytes(buf []byte) (*Block, error) {
	b, err := m.Alloc(len(buf))
	if err != nil {
		return nil, err
	}
	span, err := b.WriteSpan(0, len(buf))
	if err != nil {
		b.Free()
		return nil, err
	}
	copy(span, buf)
	return b, nil
}

// Family implements the ubuf.Buf interface.
func (b *Block) Family() Family {
	return FamilyBlock
}

// Size returns the window size in bytes.
func (b *Block) Size() int {
	return b.size
}

func (b *Block) totalExt() int {
	var n int
	for i := range b.segs {
		n += b.segs[i].ext
	}
	return n
}

// Free implements the ubuf.Buf interface.
func (b *Block) Free() {
	for i := range b.segs {
		b.segs[i].shared.release()
	}
	b.segs = b.segs[:0]
	b.mgr.viewPool.Put(b)
}

// Dup produces a second view over the same storage, with the same window.
func (b *Block) Dup() (*Block, error) {
	dup := b.mgr.allocView()
	for i := range b.segs {
		dup.segs = append(dup.segs, seg{
			shared: b.segs[i].shared.use(),
			off:    b.segs[i].off,
			ext:    b.segs[i].ext,
		})
	}
	dup.off = b.off
	dup.size = b.size
	return dup, nil
}

// Splice produces a new view narrowing the window to [offset,
// offset+size) relative to this view's window. size may be -1 to keep
// everything up to the end of the window.
func (b *Block) Splice(offset, size int) (*Block, error) {
	if size == -1 {
		size = b.size - offset
	}
	if offset < 0 || size < 0 || offset+size > b.size {
		return nil, uerr.ErrInvalid
	}
	dup, err := b.Dup()
	if err != nil {
		return nil, err
	}
	dup.off = b.off + offset
	dup.size = size
	return dup, nil
}

// Resize retracts or extends the window. A positive offset drops bytes
// from the front; a negative offset extends the front, digging into the
// prepend margin when the hidden extent is exhausted. size is the new
// window size, or -1 for everything up to the end of the readable extent.
// Extending beyond the extent digs into the append margin.
//
// Extending into a margin requires spare margin room and a singly
// referenced storage area; ErrBusy reports a shared area, ErrInvalid a
// missing margin or an out-of-range offset.
func (b *Block) Resize(offset, size int) error {
	newOff := b.off + offset
	if newOff < 0 {
		// Extend the first segment frontwards into its prepend margin.
		if len(b.segs) == 0 {
			return uerr.ErrInvalid
		}
		first := &b.segs[0]
		grow := -newOff
		if first.off < grow {
			return uerr.ErrInvalid
		}
		if !first.shared.refcount.Single() {
			return uerr.ErrBusy
		}
		first.off -= grow
		first.ext += grow
		newOff = 0
	}
	total := b.totalExt()
	if newOff > total {
		return uerr.ErrInvalid
	}
	if size == -1 {
		size = total - newOff
	}
	if size < 0 {
		return uerr.ErrInvalid
	}
	if need := newOff + size - total; need > 0 {
		// Extend the last segment into its append margin.
		if len(b.segs) == 0 {
			return uerr.ErrInvalid
		}
		last := &b.segs[len(b.segs)-1]
		margin := last.shared.mem.Size() - last.off - last.ext
		if margin < need {
			return uerr.ErrInvalid
		}
		if !last.shared.refcount.Single() {
			return uerr.ErrBusy
		}
		last.ext += need
	}
	b.off = newOff
	b.size = size
	return nil
}

// trim rewrites the segment list so the extents cover exactly the current
// window, releasing segments that fall entirely outside it.
func (b *Block) trim() {
	var (
		kept []seg
		skip = b.off
		left = b.size
	)
	for i := range b.segs {
		s := b.segs[i]
		if left == 0 || skip >= s.ext {
			skip -= s.ext
			if skip < 0 {
				skip = 0
			}
			s.shared.release()
			continue
		}
		s.off += skip
		s.ext -= skip
		skip = 0
		if s.ext > left {
			s.ext = left
		}
		left -= s.ext
		kept = append(kept, s)
	}
	b.segs = kept
	b.off = 0
	b.size = 0
	for i := range kept {
		b.size += kept[i].ext
	}
}

// Append logically concatenates another Block behind this one, consuming
// it. The result is a segmented view; reads crossing a segment boundary
// coalesce into a copy.
func (b *Block) Append(other *Block) error {
	b.trim()
	other.trim()
	b.segs = append(b.segs, other.segs...)
	b.size += other.size
	other.segs = other.segs[:0]
	other.mgr.viewPool.Put(other)
	return nil
}

// locate maps a window offset to (segment index, offset within extent).
func (b *Block) locate(offset int) (int, int) {
	pos := b.off + offset
	for i := range b.segs {
		if pos < b.segs[i].ext {
			return i, pos
		}
		pos -= b.segs[i].ext
	}
	return -1, 0
}

// ReadSpan returns size readable bytes starting at offset within the
// window. size may be -1 for everything up to the end of the window. When
// the span lies within one segment the returned slice aliases the shared
// storage and must be treated read-only; when it crosses segments a
// coalesced copy is returned.
func (b *Block) ReadSpan(offset, size int) ([]byte, error) {
	if size == -1 {
		size = b.size - offset
	}
	if offset < 0 || size < 0 || offset+size > b.size {
		return nil, uerr.ErrInvalid
	}
	if size == 0 {
		return nil, nil
	}
	idx, pos := b.locate(offset)
	if idx < 0 {
		return nil, uerr.ErrInvalid
	}
	s := &b.segs[idx]
	if pos+size <= s.ext {
		base := s.shared.mem.Bytes()
		return base[s.off+pos : s.off+pos+size : s.off+pos+size], nil
	}
	// Crossing a segment boundary: coalesce.
	out := make([]byte, size)
	n := 0
	for n < size && idx < len(b.segs) {
		s := &b.segs[idx]
		chunk := s.ext - pos
		if chunk > size-n {
			chunk = size - n
		}
		base := s.shared.mem.Bytes()
		copy(out[n:], base[s.off+pos:s.off+pos+chunk])
		n += chunk
		pos = 0
		idx++
	}
	return out, nil
}

// WriteSpan returns size writable bytes starting at offset within the
// window. Every storage area the span touches must be singly referenced
// (ErrBusy otherwise); a span crossing segments first coalesces the
// window into one fresh area.
func (b *Block) WriteSpan(offset, size int) ([]byte, error) {
	if size == -1 {
		size = b.size - offset
	}
	if offset < 0 || size < 0 || offset+size > b.size {
		return nil, uerr.ErrInvalid
	}
	if size == 0 {
		return nil, nil
	}
	idx, pos := b.locate(offset)
	if idx < 0 {
		return nil, uerr.ErrInvalid
	}
	if s := &b.segs[idx]; pos+size <= s.ext {
		if !s.shared.refcount.Single() {
			return nil, uerr.ErrBusy
		}
		base := s.shared.mem.Bytes()
		return base[s.off+pos : s.off+pos+size : s.off+pos+size], nil
	}
	for i := idx; i < len(b.segs); i++ {
		if !b.segs[i].shared.refcount.Single() {
			return nil, uerr.ErrBusy
		}
	}
	if err := b.Merge(); err != nil {
		return nil, err
	}
	return b.WriteSpan(offset, size)
}

// Merge materializes the window as one contiguous storage area, the
// coalescing view over the canonical segmented representation. Views over
// the old storage are unaffected.
func (b *Block) Merge() error {
	if len(b.segs) == 1 && b.off == 0 && b.size == b.segs[0].ext {
		return nil
	}
	merged, err := b.mgr.Alloc(b.size)
	if err != nil {
		return err
	}
	span, err := b.ReadSpan(0, b.size)
	if err != nil {
		merged.Free()
		return err
	}
	out, err := merged.WriteSpan(0, merged.size)
	if err != nil {
		merged.Free()
		return err
	}
	copy(out, span)
	for i := range b.segs {
		b.segs[i].shared.release()
	}
	b.segs = b.segs[:0]
	b.segs = append(b.segs, merged.segs...)
	b.off = merged.off
	b.size = merged.size
	merged.segs = merged.segs[:0]
	b.mgr.viewPool.Put(merged)
	return nil
}

// vim: foldmethod=marker
