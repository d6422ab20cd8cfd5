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
	"hz.tools/upipe/upipetest"
	"hz.tools/upipe/uprobe"
	"hz.tools/upipe/uref"
)

func countSubs(t *testing.T, split *upipetest.Split) []uint64 {
	t.Helper()
	var ids []uint64
	var sub upipe.Pipe
	for {
		next, err := upipe.IterateSub(split, sub)
		require.NoError(t, err)
		if next == nil {
			return ids
		}
		sub = next
		ids = append(ids, sub.(*upipetest.SplitSub).FlowID)
	}
}

func soundFlow(mgr *uref.Mgr, id uint64) *uref.Ref {
	flow := mgr.AllocFlowDef("sound.s16.")
	flow.SetFlowID(id)
	return flow
}

func picFlow(mgr *uref.Mgr, id uint64) *uref.Ref {
	flow := mgr.AllocFlowDef("pic.")
	flow.SetFlowID(id)
	return flow
}

func TestSelflowAutoPicksFirstMatching(t *testing.T) {
	mgr := upipetest.NewUrefMgr()

	sel := uprobe.NewSelflow(nil, nil, uprobe.CategorySound, "auto")
	split := upipetest.NewSplit(sel.Probe())
	defer upipe.Release(split)

	pic := picFlow(mgr, 43)
	sound := soundFlow(mgr, 44)
	require.NoError(t, split.SetFlows(pic, sound))
	pic.Free()
	sound.Free()

	// exactly one sub-pipe, for the sound flow
	assert.Equal(t, []uint64{44}, countSubs(t, split))

	// widening the selector adds nothing: flow 43 is filtered out by
	// the category
	sel.Set("all")
	assert.Equal(t, []uint64{44}, countSubs(t, split))

	// removing the selected flow releases its sub-pipe
	pic2 := picFlow(mgr, 43)
	require.NoError(t, split.SetFlows(pic2))
	pic2.Free()
	assert.Empty(t, countSubs(t, split))
}

func TestSelflowAutoRepicks(t *testing.T) {
	mgr := upipetest.NewUrefMgr()

	sel := uprobe.NewSelflow(nil, nil, uprobe.CategorySound, "auto")
	split := upipetest.NewSplit(sel.Probe())
	defer upipe.Release(split)

	a := soundFlow(mgr, 10)
	b := soundFlow(mgr, 20)
	require.NoError(t, split.SetFlows(a, b))

	assert.Equal(t, []uint64{10}, countSubs(t, split))

	// the retained flow disappears: auto re-picks the survivor
	require.NoError(t, split.SetFlows(b))
	assert.Equal(t, []uint64{20}, countSubs(t, split))

	a.Free()
	b.Free()
}

func TestSelflowAll(t *testing.T) {
	mgr := upipetest.NewUrefMgr()

	sel := uprobe.NewSelflow(nil, nil, uprobe.CategorySound, "all")
	split := upipetest.NewSplit(sel.Probe())
	defer upipe.Release(split)
	_ = sel

	a := soundFlow(mgr, 1)
	b := soundFlow(mgr, 2)
	c := picFlow(mgr, 3)
	require.NoError(t, split.SetFlows(a, b, c))
	a.Free()
	b.Free()
	c.Free()

	assert.Equal(t, []uint64{1, 2}, countSubs(t, split))
}

func TestSelflowLiteralAndAttributes(t *testing.T) {
	mgr := upipetest.NewUrefMgr()

	sel := uprobe.NewSelflow(nil, nil, uprobe.CategorySound, "2,")
	split := upipetest.NewSplit(sel.Probe())
	defer upipe.Release(split)

	a := soundFlow(mgr, 1)
	a.SetFlowName("fr1")
	a.SetFlowLanguages([]string{"fra"})
	b := soundFlow(mgr, 2)
	b.SetFlowName("fr2")
	b.SetFlowLanguages([]string{"eng"})
	require.NoError(t, split.SetFlows(a, b))

	assert.Equal(t, []uint64{2}, countSubs(t, split))

	sel.Set("name=fr1,")
	assert.Equal(t, []uint64{1}, countSubs(t, split))

	sel.Set("lang=eng,")
	assert.Equal(t, []uint64{2}, countSubs(t, split))

	// several terms select the union; sub-pipes list in registration
	// order, and flow 2's sub-pipe already exists
	sel.Set("1,lang=eng,")
	assert.Equal(t, []uint64{2, 1}, countSubs(t, split))

	// unknown keys are tolerated, not fatal
	sel.Set("bogus=value,")
	assert.Empty(t, countSubs(t, split))

	a.Free()
	b.Free()
}

func TestSelflowVoidCategory(t *testing.T) {
	mgr := upipetest.NewUrefMgr()

	sel := uprobe.NewSelflow(nil, nil, uprobe.CategoryVoid, "auto")
	split := upipetest.NewSplit(sel.Probe())
	defer upipe.Release(split)
	_ = sel

	prog := mgr.AllocFlowDef("void.")
	prog.SetFlowID(100)
	snd := soundFlow(mgr, 101)
	require.NoError(t, split.SetFlows(prog, snd))
	prog.Free()
	snd.Free()

	assert.Equal(t, []uint64{100}, countSubs(t, split))
}

// vim: foldmethod=marker
