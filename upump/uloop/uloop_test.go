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

package uloop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"hz.tools/upipe/uclock"
	"hz.tools/upipe/upool"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/upump/uloop"
)

func newMgr(t *testing.T) *uloop.Mgr {
	t.Helper()
	mgr, err := uloop.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestTimerFiresOnce(t *testing.T) {
	mgr := newMgr(t)

	var fired int
	timer := mgr.AllocTimer(func(p upump.Pump) {
		fired++
	}, uclock.Freq/1000, 0) // 1 ms
	timer.Start()

	// a one-shot timer leaves no started pumps behind, so Run returns
	assert.NoError(t, mgr.Run())
	assert.Equal(t, 1, fired)
	timer.Free()
}

func TestTimerRepeats(t *testing.T) {
	mgr := newMgr(t)

	var fired int
	var timer upump.Pump
	timer = mgr.AllocTimer(func(p upump.Pump) {
		fired++
		if fired == 3 {
			timer.Stop()
		}
	}, uclock.Freq/1000, uclock.Freq/1000)
	timer.Start()

	assert.NoError(t, mgr.Run())
	assert.Equal(t, 3, fired)
}

func TestIdlerRuns(t *testing.T) {
	mgr := newMgr(t)

	var laps int
	var idler upump.Pump
	idler = mgr.AllocIdler(func(p upump.Pump) {
		laps++
		if laps == 5 {
			idler.Stop()
		}
	})
	idler.Start()

	assert.NoError(t, mgr.Run())
	assert.Equal(t, 5, laps)
}

func TestFdReadPump(t *testing.T) {
	mgr := newMgr(t)

	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	var got []byte
	var pump upump.Pump
	pump = mgr.AllocFdRead(func(p upump.Pump) {
		buf := make([]byte, 16)
		n, err := unix.Read(fds[0], buf)
		assert.NoError(t, err)
		got = append(got, buf[:n]...)
		pump.Stop()
	}, fds[0])
	pump.Start()

	_, err := unix.Write(fds[1], []byte("ping"))
	require.NoError(t, err)

	assert.NoError(t, mgr.Run())
	assert.Equal(t, []byte("ping"), got)
}

func TestQueuePumpCrossThread(t *testing.T) {
	mgr := newMgr(t)
	q := upool.NewQueue[int](8)

	var got []int
	var pump upump.Pump
	pump = mgr.AllocQueue(func(p upump.Pump) {
		for {
			v, ok := q.Pop()
			if !ok {
				break
			}
			got = append(got, v)
		}
		if len(got) == 4 {
			pump.Stop()
		}
	}, q)
	pump.Start()

	go func() {
		for i := 0; i < 4; i++ {
			for !q.Push(i) {
			}
		}
	}()

	assert.NoError(t, mgr.Run())
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestBlockerPausesPump(t *testing.T) {
	mgr := newMgr(t)

	var (
		idleRan  bool
		unblocks upump.Blocker
	)
	var idler upump.Pump
	idler = mgr.AllocIdler(func(p upump.Pump) {
		idleRan = true
		idler.Stop()
	})
	idler.Start()
	unblocks = idler.Block()
	assert.True(t, idler.Blocked())

	// while blocked, the idler must not run; this timer is the only
	// runnable pump and it releases the blocker
	timer := mgr.AllocTimer(func(p upump.Pump) {
		assert.False(t, idleRan)
		unblocks.Free()
	}, uclock.Freq/500, 0)
	timer.Start()

	assert.NoError(t, mgr.Run())
	assert.True(t, idleRan)
	assert.False(t, idler.Blocked())
}

func TestStopFromOtherGoroutine(t *testing.T) {
	mgr := newMgr(t)

	var laps int
	idler := mgr.AllocIdler(func(p upump.Pump) {
		laps++
		if laps == 1 {
			go mgr.Stop()
		}
	})
	idler.Start()

	assert.NoError(t, mgr.Run())
	assert.GreaterOrEqual(t, laps, 1)
}

// vim: foldmethod=marker
