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

package udict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/upipe/udict"
	"hz.tools/upipe/urational"
)

func TestDictRoundTrips(t *testing.T) {
	mgr := udict.NewMgr(4)
	d := mgr.Alloc()
	defer d.Free()

	d.SetString("s", "hello")
	d.SetUnsigned("u", 42)
	d.SetInt("i", -42)
	d.SetBool("b", true)
	d.SetFloat("f", 2.5)
	d.SetVoid("v")
	d.SetOpaque("o", []byte{1, 2, 3})
	d.SetRational("r", urational.Rational{Num: 30000, Den: 1001})

	s, ok := d.GetString("s")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	u, ok := d.GetUnsigned("u")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), u)

	i, ok := d.GetInt("i")
	assert.True(t, ok)
	assert.Equal(t, int64(-42), i)

	b, ok := d.GetBool("b")
	assert.True(t, ok)
	assert.True(t, b)

	f, ok := d.GetFloat("f")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	assert.True(t, d.GetVoid("v"))

	o, ok := d.GetOpaque("o")
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, o)

	r, ok := d.GetRational("r")
	assert.True(t, ok)
	assert.Equal(t, int64(30000), r.Num)
	assert.Equal(t, uint64(1001), r.Den)

	assert.Equal(t, 8, d.Len())
}

func TestDictTypeMismatch(t *testing.T) {
	mgr := udict.NewMgr(4)
	d := mgr.Alloc()
	defer d.Free()

	d.SetString("k", "v")
	_, ok := d.GetUnsigned("k")
	assert.False(t, ok)
	assert.False(t, d.GetVoid("k"))
}

func TestDictUniqueKeys(t *testing.T) {
	mgr := udict.NewMgr(4)
	d := mgr.Alloc()
	defer d.Free()

	d.SetString("k", "first")
	d.SetString("k", "second")
	assert.Equal(t, 1, d.Len())
	s, _ := d.GetString("k")
	assert.Equal(t, "second", s)

	// replacing with another type keeps the key unique too
	d.SetUnsigned("k", 9)
	assert.Equal(t, 1, d.Len())
	_, ok := d.GetString("k")
	assert.False(t, ok)
}

func TestDictDelete(t *testing.T) {
	mgr := udict.NewMgr(4)
	d := mgr.Alloc()
	defer d.Free()

	d.SetString("k", "v")
	assert.True(t, d.Delete("k"))
	assert.False(t, d.Delete("k"))
	_, ok := d.GetString("k")
	assert.False(t, ok)
}

func TestDictDupIndependence(t *testing.T) {
	mgr := udict.NewMgr(4)
	d := mgr.Alloc()
	defer d.Free()
	d.SetString("k", "orig")
	d.SetOpaque("o", []byte{1, 2})

	dup := mgr.Dup(d)
	defer dup.Free()

	dup.SetString("k", "changed")
	o, _ := dup.GetOpaque("o")
	o[0] = 9

	s, _ := d.GetString("k")
	assert.Equal(t, "orig", s)
	orig, _ := d.GetOpaque("o")
	assert.Equal(t, []byte{1, 2}, orig)
}

func TestDictIterationOrder(t *testing.T) {
	mgr := udict.NewMgr(4)
	d := mgr.Alloc()
	defer d.Free()

	d.SetString("a", "1")
	d.SetUnsigned("b", 2)
	d.SetVoid("c")

	var names []string
	d.Foreach(func(name string, typ udict.Type) bool {
		names = append(names, name)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestDictRecycling(t *testing.T) {
	mgr := udict.NewMgr(2)
	d := mgr.Alloc()
	d.SetString("k", "v")
	d.Free()

	d2 := mgr.Alloc()
	defer d2.Free()
	// recycled dicts come back empty
	assert.Equal(t, 0, d2.Len())
	_, ok := d2.GetString("k")
	assert.False(t, ok)
}

// vim: foldmethod=marker
