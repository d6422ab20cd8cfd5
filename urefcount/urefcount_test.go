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

package urefcount_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/upipe/urefcount"
)

func TestCountReleaseOnce(t *testing.T) {
	var (
		count    urefcount.Count
		released int
	)
	count.Init(func() { released++ })
	assert.True(t, count.Single())

	count.Use()
	assert.False(t, count.Single())

	assert.False(t, count.Release())
	assert.Equal(t, 0, released)
	assert.True(t, count.Single())

	assert.True(t, count.Release())
	assert.Equal(t, 1, released)
}

func TestCountConcurrent(t *testing.T) {
	var (
		count    urefcount.Count
		released int
		wg       sync.WaitGroup
	)
	count.Init(func() { released++ })

	const workers = 32
	for i := 0; i < workers; i++ {
		count.Use()
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, released)
	assert.True(t, count.Release())
	assert.Equal(t, 1, released)
}

// vim: foldmethod=marker
