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

// Package udump serializes a pipeline graph to graphviz dot text, for
// debugging what a running application actually wired together. Bins
// are rendered as cluster subgraphs with input/output pseudo-nodes, and
// sub-pipes join their super-pipe with a dashed edge.
//
// The walk temporarily hijacks each visited pipe's opaque slot for
// traversal state and restores it verbatim before returning.
package udump

import (
	"fmt"
	"io"
	"strings"

	"hz.tools/upipe"
	"hz.tools/upipe/uprobe"
)

type ctx struct {
	inputUID     uint64
	outputUID    uint64
	outputDumped bool
	original     any
}

type state struct {
	w       io.Writer
	uid     uint64
	visited []upipe.Pipe
	err     error
}

func (s *state) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *state) ctxOf(p upipe.Pipe) *ctx {
	c, _ := p.Core().Opaque().(*ctx)
	return c
}

func (s *state) seen(p upipe.Pipe) bool {
	for _, v := range s.visited {
		if v == p {
			return true
		}
	}
	return false
}

// pipeLabel names a node: the nearest Pfx tag plus the manager
// signature.
func pipeLabel(p upipe.Pipe) string {
	name, _ := uprobe.PipeName(p)
	return fmt.Sprintf("%s (%s)", name, p.Core().Mgr().Signature())
}

// flowDefLabel renders a flow definition as an edge label, one dotted
// component per line.
func flowDefLabel(p upipe.Pipe) string {
	flowDef, err := upipe.GetFlowDef(p)
	if err != nil || flowDef == nil {
		return ""
	}
	def, ok := flowDef.FlowDef()
	if !ok {
		return ""
	}
	parts := strings.Split(strings.TrimSuffix(def, "."), ".")
	return strings.Join(parts, "\\l") + "\\l"
}

// dumpPipe prints a node (or a cluster for a bin) and records the
// traversal context in the pipe's opaque slot.
func (s *state) dumpPipe(p upipe.Pipe, noOutput bool) {
	if s.seen(p) {
		return
	}
	c := &ctx{inputUID: s.uid, outputDumped: noOutput}
	s.uid++
	c.original = p.Core().SetOpaque(c)
	s.visited = append(s.visited, p)

	_ = upipe.BinFreeze(p)
	firstInner, _ := upipe.BinGetFirstInner(p)
	lastInner, _ := upipe.BinGetLastInner(p)
	if firstInner != nil || lastInner != nil {
		c.outputUID = s.uid
		s.uid++
		s.printf("subgraph cluster_%d {\n", c.inputUID)
		s.printf("label=\"%s\";\n", pipeLabel(p))
		s.printf("pipe%d [label=\"input\" shape=point];\n", c.inputUID)
		s.printf("pipe%d [label=\"output\" shape=point];\n", c.outputUID)
		if firstInner != nil {
			s.dumpInner(firstInner, lastInner)
			inCtx := s.ctxOf(firstInner)
			s.printf("pipe%d->pipe%d;\n", c.inputUID, inCtx.inputUID)
		}
		if lastInner != nil {
			outCtx := s.ctxOf(lastInner)
			s.printf("pipe%d->pipe%d;\n", outCtx.outputUID, c.outputUID)
		}
		s.printf("}\n")
	} else {
		c.outputUID = c.inputUID
		s.printf("pipe%d [label=\"%s\"];\n", c.inputUID, pipeLabel(p))
	}
	_ = upipe.BinThaw(p)

	// Sub-pipes hang off their super with a dashed edge.
	var sub upipe.Pipe
	for {
		next, err := upipe.IterateSub(p, sub)
		if err != nil || next == nil {
			break
		}
		sub = next
		s.dumpPipe(sub, false)
		if subCtx := s.ctxOf(sub); subCtx != nil {
			s.printf("pipe%d->pipe%d [style=dashed];\n",
				subCtx.inputUID, c.inputUID)
		}
	}
}

// dumpInner prints a bin's inner chain, first to last.
func (s *state) dumpInner(first, last upipe.Pipe) {
	s.dumpPipe(first, true)
	if first == last {
		return
	}
	output, err := upipe.GetOutput(first)
	if err != nil || output == nil {
		return
	}
	s.dumpInner(output, last)
	firstCtx := s.ctxOf(first)
	outCtx := s.ctxOf(output)
	s.printf("pipe%d->pipe%d [label=\"%s\"];\n",
		firstCtx.outputUID, outCtx.inputUID, flowDefLabel(first))
}

// dumpOutput prints the edge from a pipe (and its sub-pipes) to its
// output, pulling newly discovered pipes into the graph.
func (s *state) dumpOutput(p upipe.Pipe) {
	c := s.ctxOf(p)
	c.outputDumped = true

	var sub upipe.Pipe
	for {
		next, err := upipe.IterateSub(p, sub)
		if err != nil || next == nil {
			break
		}
		sub = next
		if subCtx := s.ctxOf(sub); subCtx != nil && !subCtx.outputDumped {
			s.dumpOutput(sub)
		}
	}

	output, err := upipe.GetOutput(p)
	if err != nil || output == nil {
		return
	}
	s.dumpPipe(output, false)
	outCtx := s.ctxOf(output)
	s.printf("pipe%d->pipe%d [label=\"%s\"];\n",
		c.outputUID, outCtx.inputUID, flowDefLabel(p))
}

// Dump walks the pipeline reachable from the given source pipes and
// writes one digraph. Opaque slots are restored verbatim before Dump
// returns.
func Dump(w io.Writer, pipes ...upipe.Pipe) error {
	s := &state{w: w}
	s.printf("digraph pipeline {\n")
	for _, p := range pipes {
		s.dumpPipe(p, false)
	}
	for {
		dumped := false
		for _, p := range s.visited {
			if c := s.ctxOf(p); c != nil && !c.outputDumped {
				s.dumpOutput(p)
				dumped = true
			}
		}
		if !dumped {
			break
		}
	}
	s.printf("}\n")

	for _, p := range s.visited {
		if c := s.ctxOf(p); c != nil {
			p.Core().SetOpaque(c.original)
		}
	}
	return s.err
}

// vim: foldmethod=marker
