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

// Package ubuf contains the polymorphic media buffer family. Three shapes
// are implemented: Block (a windowed one-dimensional byte sequence with
// zero-copy splicing and segmented append), Picture (planar 2-D with
// chroma subsampling and per-plane strides) and Sound (planar audio with
// per-channel planes).
//
// Code handling any shape operates on the Buf interface and the Family
// enum; code specific to one shape works with the concrete types, which
// keeps dispatch static inside hot loops. Storage is shared: duplicating
// or splicing a buffer produces a second view over the same refcounted
// area, and the area only returns to its manager's pool when the last
// view is freed.
package ubuf

import (
	"fmt"
)

var (
	// ErrFamilyMismatch will be returned when an operation meant for one
	// buffer family is applied to another.
	ErrFamilyMismatch = fmt.Errorf("ubuf: buffer families do not match")
)

// Family is an ID used to uniquely identify the shape of a Buf, allowing
// generic code to compare shapes without type assertions.
type Family uint8

const (
	// FamilyBlock indicates a Block will be handled.
	FamilyBlock Family = 1

	// FamilyPicture indicates a Picture will be handled.
	FamilyPicture Family = 2

	// FamilySound indicates a Sound will be handled.
	FamilySound Family = 3
)

// String returns the family name as a human readable String.
func (f Family) String() string {
	switch f {
	case FamilyBlock:
		return "block"
	case FamilyPicture:
		return "picture"
	case FamilySound:
		return "sound"
	default:
		return "unknown"
	}
}

// Buf is a media buffer of any family.
type Buf interface {
	// Family returns the shape of this buffer.
	Family() Family

	// Free drops this view. The underlying storage is released once the
	// last view over it is freed.
	Free()
}

// Dup produces a second view over the same underlying storage, whatever
// the family of the buffer.
func Dup(b Buf) (Buf, error) {
	switch b := b.(type) {
	case *Block:
		return b.Dup()
	case *Picture:
		return b.Dup()
	case *Sound:
		return b.Dup()
	default:
		return nil, ErrFamilyMismatch
	}
}

// Mgr is a family-erased buffer manager. Concrete managers additionally
// expose typed Alloc entry points.
type Mgr interface {
	// Family returns the shape of the buffers this manager produces.
	Family() Family

	// Check inspects a prospective flow definition and reports whether
	// this manager can produce buffers satisfying it.
	Check(flow FlowArgs) error
}

// FlowArgs carries the buffer-relevant parts of a flow definition for
// Mgr.Check, extracted by the caller from the flow's attributes.
type FlowArgs struct {
	// Def is the dotted flow definition string.
	Def string

	// Align is the required byte alignment, 0 for no requirement.
	Align int

	// Prepend is the required prepend margin, in bytes (block), pixels
	// (picture) or samples (sound).
	Prepend int

	// Planes are the required chroma or channel tags, nil for no
	// requirement.
	Planes []string
}

// vim: foldmethod=marker
