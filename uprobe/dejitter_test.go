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

package uprobe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/upipe"
	"hz.tools/upipe/uclock"
	"hz.tools/upipe/upipetest"
	"hz.tools/upipe/uprobe"
	"hz.tools/upipe/urational"
	"hz.tools/upipe/uref"
)

const interval = uclock.Freq / 25 // 40 ms

// feedRef throws one clock reference with the given source-to-system
// offset.
func feedRef(t *testing.T, pipe upipe.Pipe, mgr *uref.Mgr, crProg uint64, offset int64, disc bool) {
	t.Helper()
	r := mgr.Alloc()
	r.SetCrSys(uint64(int64(crProg) + offset))
	_ = upipe.Throw(pipe, &upipe.ClockRef{
		Ref:           r,
		CrProg:        crProg,
		Discontinuity: disc,
	})
	r.Free()
}

func TestDejitterConverges(t *testing.T) {
	mgr := upipetest.NewUrefMgr()
	dej := uprobe.NewDejitter(nil, uprobe.DefaultDejitterConfig(), true, 0)
	sink := upipetest.NewSink(dej.Probe())
	defer upipe.Release(sink)

	// constant 1 s offset with small zero-mean jitter
	for i := 0; i < 50; i++ {
		jitter := int64(1000)
		if i%2 == 1 {
			jitter = -1000
		}
		feedRef(t, sink, mgr, uint64(i)*interval, int64(uclock.Freq)+jitter, false)
	}

	assert.InDelta(t, float64(uclock.Freq), dej.Offset(), 2000)
	assert.Equal(t, urational.One, dej.DriftRate())
	assert.Greater(t, dej.Deviation(), float64(0))
}

func TestDejitterDiscontinuityResetsOffsetNotDeviation(t *testing.T) {
	mgr := upipetest.NewUrefMgr()
	dej := uprobe.NewDejitter(nil, uprobe.DefaultDejitterConfig(), true, 0)
	sink := upipetest.NewSink(dej.Probe())
	defer upipe.Release(sink)

	for i := 0; i < 50; i++ {
		feedRef(t, sink, mgr, uint64(i)*interval, int64(uclock.Freq), false)
	}
	assert.InDelta(t, float64(uclock.Freq), dej.Offset(), 1)
	devBefore := dej.Deviation()

	// explicit discontinuity with a 5 s offset
	for i := 50; i < 55; i++ {
		feedRef(t, sink, mgr, uint64(i)*interval, 5*int64(uclock.Freq), i == 50)
	}

	assert.InDelta(t, 5*float64(uclock.Freq), dej.Offset(), 1)
	// the deviation filter was kept, not re-seeded
	assert.InDelta(t, devBefore, dej.Deviation(), devBefore/2)
}

func TestDejitterMaxJitterActsAsDiscontinuity(t *testing.T) {
	mgr := upipetest.NewUrefMgr()
	dej := uprobe.NewDejitter(nil, uprobe.DefaultDejitterConfig(), true, 0)
	sink := upipetest.NewSink(dej.Probe())
	defer upipe.Release(sink)

	for i := 0; i < 10; i++ {
		feedRef(t, sink, mgr, uint64(i)*interval, int64(uclock.Freq), false)
	}
	// a wild excursion without the discontinuity flag resets too
	feedRef(t, sink, mgr, 10*interval, 10*int64(uclock.Freq), false)
	assert.InDelta(t, 10*float64(uclock.Freq), dej.Offset(), 1)
}

func TestDejitterClockTsRewrites(t *testing.T) {
	mgr := upipetest.NewUrefMgr()
	dej := uprobe.NewDejitter(nil, uprobe.DefaultDejitterConfig(), true, 0)
	sink := upipetest.NewSink(dej.Probe())
	defer upipe.Release(sink)

	for i := 0; i < 20; i++ {
		feedRef(t, sink, mgr, uint64(i)*interval, int64(uclock.Freq), false)
	}

	r := mgr.Alloc()
	defer r.Free()
	date := 19*interval + interval/2
	r.SetDateProg(date, uref.DatePts)
	require.NoError(t, upipe.Throw(sink, &upipe.ClockTs{Ref: r}))

	dateSys, typ := r.DateSys()
	assert.Equal(t, uref.DatePts, typ)
	// the projection lands near date + offset (+ the 3-sigma guard)
	assert.InDelta(t, float64(date)+float64(uclock.Freq), float64(dateSys),
		3*float64(uclock.Freq/150)+1000)

	rate, ok := r.ClockRate()
	assert.True(t, ok)
	assert.Equal(t, dej.DriftRate(), rate)
}

func TestDejitterDisabledPassesThrough(t *testing.T) {
	mgr := upipetest.NewUrefMgr()
	dej := uprobe.NewDejitter(nil, uprobe.DefaultDejitterConfig(), false, 0)
	sink := upipetest.NewSink(dej.Probe())
	defer upipe.Release(sink)

	feedRef(t, sink, mgr, 0, int64(uclock.Freq), false)
	assert.Equal(t, float64(0), dej.Offset())
}

func TestDejitterConfigDefaults(t *testing.T) {
	cfg, err := uprobe.DejitterConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, uprobe.DefaultDejitterConfig(), cfg)
}

// vim: foldmethod=marker
