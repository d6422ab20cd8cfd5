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

// Package udict contains the typed attribute dictionary attached to every
// transported unit. An attribute is a (name, type, value) triple; names
// are unique within a Dict, and a lookup only answers when the stored type
// matches the asked type.
package udict

import (
	"fmt"

	"hz.tools/upipe/upool"
	"hz.tools/upipe/urational"
)

var (
	// ErrTypeMismatch names the case of an attribute that exists under
	// the asked name but with another type. The typed getters do not
	// return it: they report that case through their boolean result,
	// as for a missing attribute.
	ErrTypeMismatch = fmt.Errorf("udict: attribute type does not match")
)

// Type enumerates the value types an attribute can hold.
type Type uint8

const (
	// TypeOpaque holds raw bytes.
	TypeOpaque Type = 1

	// TypeString holds a string.
	TypeString Type = 2

	// TypeVoid holds no value; the attribute's presence is the payload.
	TypeVoid Type = 3

	// TypeBool holds a bool.
	TypeBool Type = 4

	// TypeUnsigned holds a uint64.
	TypeUnsigned Type = 5

	// TypeInt holds an int64.
	TypeInt Type = 6

	// TypeRational holds a urational.Rational.
	TypeRational Type = 7

	// TypeFloat holds a float64.
	TypeFloat Type = 8
)

// String returns the type name as a human readable String.
func (t Type) String() string {
	switch t {
	case TypeOpaque:
		return "opaque"
	case TypeString:
		return "string"
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeUnsigned:
		return "unsigned"
	case TypeInt:
		return "int"
	case TypeRational:
		return "rational"
	case TypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

type attr struct {
	name string
	typ  Type

	opaque   []byte
	str      string
	unsigned uint64
	integer  int64
	boolean  bool
	rational urational.Rational
	float    float64
}

// Dict is an ordered attribute dictionary. Dicts come from a Mgr and go
// back to its pool on Free.
type Dict struct {
	mgr   *Mgr
	attrs []attr
}

// Mgr allocates and recycles Dicts.
type Mgr struct {
	pool *upool.Pool[*Dict]
}

// NewMgr returns a Mgr recycling at most depth Dicts.
func NewMgr(depth int) *Mgr {
	mgr := &Mgr{}
	mgr.pool = upool.NewPool[*Dict](depth,
		func() *Dict { return &Dict{mgr: mgr} },
		nil,
	)
	return mgr
}

// Alloc returns an empty Dict.
func (m *Mgr) Alloc() *Dict {
	d := m.pool.Get()
	d.attrs = d.attrs[:0]
	return d
}

// Dup returns an independent copy of a Dict.
func (m *Mgr) Dup(d *Dict) *Dict {
	dup := m.Alloc()
	dup.attrs = append(dup.attrs, d.attrs...)
	for i := range dup.attrs {
		if dup.attrs[i].opaque != nil {
			dup.attrs[i].opaque = append([]byte(nil), dup.attrs[i].opaque...)
		}
	}
	return dup
}

// Free returns the Dict to its Mgr for reuse.
func (d *Dict) Free() {
	d.attrs = d.attrs[:0]
	d.mgr.pool.Put(d)
}

// Len returns the number of attributes held.
func (d *Dict) Len() int {
	return len(d.attrs)
}

// Foreach calls fn with each attribute name and type, in insertion order.
func (d *Dict) Foreach(fn func(name string, typ Type) bool) {
	for i := range d.attrs {
		if !fn(d.attrs[i].name, d.attrs[i].typ) {
			return
		}
	}
}

// Delete removes an attribute by name, reporting whether it was present.
func (d *Dict) Delete(name string) bool {
	for i := range d.attrs {
		if d.attrs[i].name == name {
			d.attrs = append(d.attrs[:i], d.attrs[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Dict) lookup(name string) *attr {
	for i := range d.attrs {
		if d.attrs[i].name == name {
			return &d.attrs[i]
		}
	}
	return nil
}

// set replaces or appends the attribute, enforcing name uniqueness.
func (d *Dict) set(name string, typ Type) *attr {
	if a := d.lookup(name); a != nil {
		*a = attr{name: name, typ: typ}
		return a
	}
	d.attrs = append(d.attrs, attr{name: name, typ: typ})
	return &d.attrs[len(d.attrs)-1]
}

// SetOpaque stores raw bytes under name. The bytes are copied.
func (d *Dict) SetOpaque(name string, v []byte) {
	d.set(name, TypeOpaque).opaque = append([]byte(nil), v...)
}

// GetOpaque returns the bytes stored under name.
func (d *Dict) GetOpaque(name string) ([]byte, bool) {
	a := d.lookup(name)
	if a == nil || a.typ != TypeOpaque {
		return nil, false
	}
	return a.opaque, true
}

// SetString stores a string under name.
func (d *Dict) SetString(name, v string) {
	d.set(name, TypeString).str = v
}

// GetString returns the string stored under name.
func (d *Dict) GetString(name string) (string, bool) {
	a := d.lookup(name)
	if a == nil || a.typ != TypeString {
		return "", false
	}
	return a.str, true
}

// SetVoid marks name present with no value.
func (d *Dict) SetVoid(name string) {
	d.set(name, TypeVoid)
}

// GetVoid reports whether name is present as a void attribute.
func (d *Dict) GetVoid(name string) bool {
	a := d.lookup(name)
	return a != nil && a.typ == TypeVoid
}

// SetBool stores a bool under name.
func (d *Dict) SetBool(name string, v bool) {
	d.set(name, TypeBool).boolean = v
}

// GetBool returns the bool stored under name.
func (d *Dict) GetBool(name string) (bool, bool) {
	a := d.lookup(name)
	if a == nil || a.typ != TypeBool {
		return false, false
	}
	return a.boolean, true
}

// SetUnsigned stores a uint64 under name.
func (d *Dict) SetUnsigned(name string, v uint64) {
	d.set(name, TypeUnsigned).unsigned = v
}

// GetUnsigned returns the uint64 stored under name.
func (d *Dict) GetUnsigned(name string) (uint64, bool) {
	a := d.lookup(name)
	if a == nil || a.typ != TypeUnsigned {
		return 0, false
	}
	return a.unsigned, true
}

// SetInt stores an int64 under name.
func (d *Dict) SetInt(name string, v int64) {
	d.set(name, TypeInt).integer = v
}

// GetInt returns the int64 stored under name.
func (d *Dict) GetInt(name string) (int64, bool) {
	a := d.lookup(name)
	if a == nil || a.typ != TypeInt {
		return 0, false
	}
	return a.integer, true
}

// SetRational stores a ratio under name.
func (d *Dict) SetRational(name string, v urational.Rational) {
	d.set(name, TypeRational).rational = v
}

// GetRational returns the ratio stored under name.
func (d *Dict) GetRational(name string) (urational.Rational, bool) {
	a := d.lookup(name)
	if a == nil || a.typ != TypeRational {
		return urational.Rational{}, false
	}
	return a.rational, true
}

// SetFloat stores a float64 under name.
func (d *Dict) SetFloat(name string, v float64) {
	d.set(name, TypeFloat).float = v
}

// GetFloat returns the float64 stored under name.
func (d *Dict) GetFloat(name string) (float64, bool) {
	a := d.lookup(name)
	if a == nil || a.typ != TypeFloat {
		return 0, false
	}
	return a.float, true
}

// vim: foldmethod=marker
