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

package uref

import (
	"hz.tools/upipe/ubuf"
	"hz.tools/upipe/uerr"
)

// block returns the payload as a Block, or ErrInvalid when the Ref
// carries no buffer or a buffer of another family.
func (r *Ref) block() (*ubuf.Block, error) {
	b, ok := r.Buf.(*ubuf.Block)
	if !ok {
		return nil, uerr.ErrInvalid
	}
	return b, nil
}

// BlockSize returns the payload window size in bytes.
func (r *Ref) BlockSize() (int, error) {
	b, err := r.block()
	if err != nil {
		return 0, err
	}
	return b.Size(), nil
}

// BlockReadSpan maps payload bytes for reading; see ubuf.Block.ReadSpan.
func (r *Ref) BlockReadSpan(offset, size int) ([]byte, error) {
	b, err := r.block()
	if err != nil {
		return nil, err
	}
	return b.ReadSpan(offset, size)
}

// BlockWriteSpan maps payload bytes for writing; see
// ubuf.Block.WriteSpan.
func (r *Ref) BlockWriteSpan(offset, size int) ([]byte, error) {
	b, err := r.block()
	if err != nil {
		return nil, err
	}
	return b.WriteSpan(offset, size)
}

// BlockResize retracts or extends the payload window; see
// ubuf.Block.Resize.
func (r *Ref) BlockResize(offset, size int) error {
	b, err := r.block()
	if err != nil {
		return err
	}
	return b.Resize(offset, size)
}

// BlockAppend concatenates another Ref's block payload behind this one,
// consuming the other Ref entirely.
func (r *Ref) BlockAppend(other *Ref) error {
	b, err := r.block()
	if err != nil {
		return err
	}
	ob, err := other.block()
	if err != nil {
		return err
	}
	other.DetachBuf()
	other.Free()
	return b.Append(ob)
}

// BlockMerge materializes the payload as one contiguous storage area; see
// ubuf.Block.Merge.
func (r *Ref) BlockMerge() error {
	b, err := r.block()
	if err != nil {
		return err
	}
	return b.Merge()
}

// vim: foldmethod=marker
