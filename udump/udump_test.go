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

package udump_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/upipe"
	"hz.tools/upipe/udump"
	"hz.tools/upipe/upipes"
	"hz.tools/upipe/upipetest"
	"hz.tools/upipe/uprobe"
)

func TestDumpLinearPipeline(t *testing.T) {
	urefMgr := upipetest.NewUrefMgr()

	// a dup with one branch sub-pipe, the branch feeding a sink
	dup, err := upipe.AllocVoid(upipes.NewDupMgr(), uprobe.NewPfx(nil, "dup"))
	require.NoError(t, err)
	flow := urefMgr.AllocFlowDef("block.mpegts.")
	require.NoError(t, upipe.SetFlowDef(dup, flow))
	flow.Free()

	subMgr, err := upipe.GetSubMgr(dup)
	require.NoError(t, err)
	branch, err := upipe.AllocVoid(subMgr, uprobe.NewPfx(nil, "branch"))
	require.NoError(t, err)

	sink := upipetest.NewSink(uprobe.NewPfx(nil, "sink"))
	require.NoError(t, upipe.SetOutput(branch, sink))

	// leave a recognizable opaque value to check restoration
	dup.Core().SetOpaque("dup-state")
	sink.Core().SetOpaque("sink-state")

	var buf bytes.Buffer
	require.NoError(t, udump.Dump(&buf, dup))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph pipeline {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))

	// one node per pipe
	assert.Contains(t, out, "dup (dup )")
	assert.Contains(t, out, "branch (dups)")
	assert.Contains(t, out, "sink (tsnk)")

	// the branch hangs off its super with a dashed edge, and feeds the
	// sink with a labeled solid edge
	assert.Equal(t, 1, strings.Count(out, "style=dashed"))
	assert.Contains(t, out, "block\\lmpegts\\l")

	// opaque slots were hijacked and restored verbatim
	assert.Equal(t, "dup-state", dup.Core().Opaque())
	assert.Equal(t, "sink-state", sink.Core().Opaque())

	upipe.Release(branch)
	upipe.Release(dup)
	upipe.Release(sink)
}

func TestDumpCountsNodesAndEdges(t *testing.T) {
	dup, err := upipe.AllocVoid(upipes.NewDupMgr(), uprobe.NewPfx(nil, "d"))
	require.NoError(t, err)
	subMgr, err := upipe.GetSubMgr(dup)
	require.NoError(t, err)

	a, err := upipe.AllocVoid(subMgr, uprobe.NewPfx(nil, "a"))
	require.NoError(t, err)
	b, err := upipe.AllocVoid(subMgr, uprobe.NewPfx(nil, "b"))
	require.NoError(t, err)
	sinkA := upipetest.NewSink(uprobe.NewPfx(nil, "sa"))
	sinkB := upipetest.NewSink(uprobe.NewPfx(nil, "sb"))
	require.NoError(t, upipe.SetOutput(a, sinkA))
	require.NoError(t, upipe.SetOutput(b, sinkB))

	var buf bytes.Buffer
	require.NoError(t, udump.Dump(&buf, dup))
	out := buf.String()

	// five node labels (the dup, two branches, two sinks) plus the
	// labels of the two output edges
	assert.Equal(t, 7, strings.Count(out, "[label=\""))
	// two dashed sub edges plus two output edges
	assert.Equal(t, 2, strings.Count(out, "style=dashed"))
	assert.Equal(t, 4, strings.Count(out, "->"))

	upipe.Release(a)
	upipe.Release(b)
	upipe.Release(dup)
	upipe.Release(sinkA)
	upipe.Release(sinkB)
}

func TestDumpRendersBinAsCluster(t *testing.T) {
	bin, err := upipe.AllocVoid(upipes.NewChainMgr(upipes.NewNullMgr()),
		uprobe.NewPfx(nil, "bin"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, udump.Dump(&buf, bin))
	out := buf.String()

	assert.Contains(t, out, "subgraph cluster_")
	assert.Contains(t, out, "bin (chn )")
	assert.Contains(t, out, "shape=point")
	// the walk thawed the bin again on the way out
	assert.False(t, bin.(*upipes.Chain).Frozen())

	upipe.Release(bin)
}

// vim: foldmethod=marker
