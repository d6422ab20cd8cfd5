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

package upool_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/upipe/upool"
)

func TestLIFO(t *testing.T) {
	l := upool.NewLIFO[int](2)

	_, ok := l.Pop()
	assert.False(t, ok)

	assert.True(t, l.Push(1))
	assert.True(t, l.Push(2))
	assert.False(t, l.Push(3))
	assert.Equal(t, 2, l.Len())

	v, ok := l.Pop()
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = l.Pop()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = l.Pop()
	assert.False(t, ok)
}

func TestPoolRecycles(t *testing.T) {
	var allocs, frees int
	pool := upool.NewPool[*int](2,
		func() *int { allocs++; return new(int) },
		func(*int) { frees++ },
	)

	a := pool.Get()
	b := pool.Get()
	c := pool.Get()
	assert.Equal(t, 3, allocs)

	pool.Put(a)
	pool.Put(b)
	pool.Put(c)
	// depth is 2: the third Put spills to the free callback
	assert.Equal(t, 1, frees)
	assert.Equal(t, 2, pool.Len())

	pool.Get()
	pool.Get()
	assert.Equal(t, 3, allocs)
	pool.Get()
	assert.Equal(t, 4, allocs)
}

func TestPoolDepthZeroPassThrough(t *testing.T) {
	var allocs, frees int
	pool := upool.NewPool[*int](0,
		func() *int { allocs++; return new(int) },
		func(*int) { frees++ },
	)
	pool.Put(pool.Get())
	assert.Equal(t, 1, allocs)
	assert.Equal(t, 1, frees)
	pool.Get()
	assert.Equal(t, 2, allocs)
}

func TestPoolVacuum(t *testing.T) {
	var frees int
	pool := upool.NewPool[*int](4,
		func() *int { return new(int) },
		func(*int) { frees++ },
	)
	pool.Put(pool.Get())
	pool.Put(pool.Get())
	pool.Vacuum()
	assert.Equal(t, 2, frees)
	assert.Equal(t, 0, pool.Len())
}

func TestPoolConcurrent(t *testing.T) {
	pool := upool.NewPool[*int](64,
		func() *int { return new(int) },
		nil,
	)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				pool.Put(pool.Get())
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, pool.Len(), 64)
}

func TestQueueOrder(t *testing.T) {
	q := upool.NewQueue[int](8)

	_, ok := q.Pop()
	assert.False(t, ok)

	for i := 0; i < 8; i++ {
		assert.True(t, q.Push(i))
	}
	assert.False(t, q.Push(8))
	assert.Equal(t, 8, q.Len())

	for i := 0; i < 8; i++ {
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok = q.Pop()
	assert.False(t, ok)

	// the ring must keep working across laps
	for lap := 0; lap < 3; lap++ {
		for i := 0; i < 8; i++ {
			assert.True(t, q.Push(lap*8+i))
		}
		for i := 0; i < 8; i++ {
			v, ok := q.Pop()
			assert.True(t, ok)
			assert.Equal(t, lap*8+i, v)
		}
	}
}

func TestQueueSignal(t *testing.T) {
	q := upool.NewQueue[int](4)
	var signals atomic.Int32
	q.SetSignal(func() { signals.Add(1) })

	q.Push(1)
	q.Push(2)
	assert.Equal(t, int32(2), signals.Load())

	q.SetSignal(nil)
	q.Push(3)
	assert.Equal(t, int32(2), signals.Load())
}

func TestQueueCrossGoroutine(t *testing.T) {
	const (
		producers = 4
		perProd   = 1000
	)
	q := upool.NewQueue[int](64)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				for !q.Push(p*perProd + i) {
				}
			}
		}(p)
	}

	seen := map[int]bool{}
	lastPerProd := make([]int, producers)
	for i := range lastPerProd {
		lastPerProd[i] = -1
	}
	for len(seen) < producers*perProd {
		v, ok := q.Pop()
		if !ok {
			continue
		}
		assert.False(t, seen[v], "element popped twice")
		seen[v] = true
		// per-producer FIFO order is preserved
		p := v / perProd
		assert.Greater(t, v%perProd, lastPerProd[p])
		lastPerProd[p] = v % perProd
	}
	wg.Wait()
	_, ok := q.Pop()
	assert.False(t, ok)
}

// vim: foldmethod=marker
