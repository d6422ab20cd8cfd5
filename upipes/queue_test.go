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

package upipes_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/upipe"
	"hz.tools/upipe/upipes"
	"hz.tools/upipe/upipetest"
	"hz.tools/upipe/uprobe"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/upump/uloop"
	"hz.tools/upipe/uref"
)

// TestQueuePairBackpressure drives five units through a two-deep queue
// between two event loops. The feeding pump must be paused while the
// consumer is behind, and every unit must arrive, in order.
func TestQueuePairBackpressure(t *testing.T) {
	urefMgr := upipetest.NewUrefMgr()

	mgrA, err := uloop.New()
	require.NoError(t, err)
	defer mgrA.Close()
	mgrB, err := uloop.New()
	require.NoError(t, err)
	defer mgrB.Close()

	q := upipes.NewQueue(2)

	sink, err := upipe.AllocVoid(upipes.NewQueueSinkMgr(q),
		uprobe.NewUpumpMgrProbe(nil, mgrA))
	require.NoError(t, err)

	source, err := upipe.AllocVoid(upipes.NewQueueSourceMgr(q),
		uprobe.NewUpumpMgrProbe(nil, mgrB))
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		received []uint64
	)
	terminal := upipetest.NewSink(nil)
	terminal.Accept = func(r *uref.Ref) bool {
		id, _ := r.FlowID()
		mu.Lock()
		received = append(received, id)
		n := len(received)
		mu.Unlock()
		if n == 5 {
			mgrA.Stop()
			mgrB.Stop()
		}
		return false
	}
	require.NoError(t, upipe.SetOutput(source, terminal))

	var (
		fed        int
		sawBlocked bool
		feeder     upump.Pump
	)
	feeder = mgrA.AllocIdler(func(p upump.Pump) {
		if fed == 5 {
			feeder.Stop()
			return
		}
		fed++
		r := urefMgr.Alloc()
		r.SetFlowID(uint64(fed))
		sink.Input(r, p)
		if p.Blocked() {
			// the queue is full and nobody is draining yet: pause
			// this phase and bring the consumer up
			sawBlocked = true
			mgrA.Stop()
		}
	})
	feeder.Start()

	// phase one: feed alone until the queue backs up
	require.NoError(t, mgrA.Run())
	assert.True(t, sawBlocked, "the feeding pump was never paused")
	assert.Equal(t, 3, fed)

	// phase two: bring up the consumer and resume the feeder
	require.NoError(t, upipe.AttachUpumpMgr(source))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, mgrB.Run())
	}()
	require.NoError(t, mgrA.Run())
	wg.Wait()

	mu.Lock()
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, received)
	mu.Unlock()

	upipe.Release(sink)
	upipe.Release(source)
	upipe.Release(terminal)
}

// TestQueueCarriesFlowDef sends the flow definition through the queue
// ahead of the media units.
func TestQueueCarriesFlowDef(t *testing.T) {
	urefMgr := upipetest.NewUrefMgr()

	mgrB, err := uloop.New()
	require.NoError(t, err)
	defer mgrB.Close()

	q := upipes.NewQueue(8)
	sink, err := upipe.AllocVoid(upipes.NewQueueSinkMgr(q), nil)
	require.NoError(t, err)
	source, err := upipe.AllocVoid(upipes.NewQueueSourceMgr(q),
		uprobe.NewUpumpMgrProbe(nil, mgrB))
	require.NoError(t, err)

	var got int
	terminal := upipetest.NewSink(nil)
	terminal.Accept = func(r *uref.Ref) bool {
		got++
		if got == 2 {
			mgrB.Stop()
		}
		return true
	}
	require.NoError(t, upipe.SetOutput(source, terminal))

	flow := urefMgr.AllocFlowDef("block.mpegts.")
	require.NoError(t, upipe.SetFlowDef(sink, flow))
	flow.Free()

	sink.Input(urefMgr.Alloc(), nil)
	sink.Input(urefMgr.Alloc(), nil)

	require.NoError(t, upipe.AttachUpumpMgr(source))
	require.NoError(t, mgrB.Run())

	require.NotNil(t, terminal.FlowDef)
	def, _ := terminal.FlowDef.FlowDef()
	assert.Equal(t, "block.mpegts.", def)
	assert.Equal(t, 2, got)

	upipe.Release(sink)
	upipe.Release(source)
	upipe.Release(terminal)
}

// vim: foldmethod=marker
