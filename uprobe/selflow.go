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

package uprobe

import (
	"fmt"
	"strconv"
	"strings"

	"hz.tools/upipe"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/uref"
)

// Category filters the flows a Selflow considers.
type Category uint8

const (
	// CategoryVoid selects program flows.
	CategoryVoid Category = 1

	// CategoryPic selects picture flows.
	CategoryPic Category = 2

	// CategorySound selects sound flows.
	CategorySound Category = 3

	// CategorySubpic selects subpicture flows.
	CategorySubpic Category = 4
)

func (c Category) matches(ref *uref.Ref) bool {
	def, ok := ref.FlowDef()
	if !ok {
		return false
	}
	switch c {
	case CategoryVoid:
		return strings.HasPrefix(def, "void.")
	case CategoryPic:
		return (strings.HasPrefix(def, "pic.") || strings.Contains(def, ".pic.")) &&
			!strings.Contains(def, "subpic.")
	case CategorySound:
		return strings.HasPrefix(def, "sound.") || strings.Contains(def, ".sound.")
	case CategorySubpic:
		return strings.HasPrefix(def, "subpic.") || strings.Contains(def, ".subpic.")
	default:
		return false
	}
}

type selflowFlow struct {
	id      uint64
	flowDef *uref.Ref
	sub     upipe.Pipe
}

// Selflow interprets a textual selector against the evolving output
// flows a split pipe advertises, materializing an output sub-pipe for
// each selected flow and releasing it when the flow is deselected or
// disappears.
//
// Selectors are comma-separated terms: a literal flow id ("42"), an
// attribute match ("name=fr2", "lang=eng", or any "key=value" against a
// string attribute; unknown keys are tolerated and logged), the keyword
// "all" selecting every flow of the category, or the keyword "auto"
// selecting the first discovered flow and re-picking when it
// disappears.
type Selflow struct {
	probe    *upipe.Probe
	subProbe *upipe.Probe
	category Category
	selector string
	autoID   uint64
	hasAuto  bool
	flows    []*selflowFlow
	super    upipe.Pipe
}

// NewSelflow returns a split-output selector. Sub-pipes are constructed
// with a use of subProbe; the returned Selflow owns subProbe.
func NewSelflow(next *upipe.Probe, subProbe *upipe.Probe, category Category, selector string) *Selflow {
	s := &Selflow{
		subProbe: subProbe,
		category: category,
		selector: selector,
	}
	s.probe = upipe.NewProbe(s.catch, next)
	return s
}

// Probe returns the probe to chain under the application's handlers.
func (s *Selflow) Probe() *upipe.Probe {
	return s.probe
}

// Selector returns the current selector string.
func (s *Selflow) Selector() string {
	return s.selector
}

// Set replaces the selector and reconciles the selection immediately
// against the last advertised flow set.
func (s *Selflow) Set(selector string) {
	s.selector = selector
	s.hasAuto = false
	if s.super != nil {
		s.reconcile(s.super)
	}
}

func (s *Selflow) catch(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
	if _, ok := event.(*upipe.SplitUpdate); !ok {
		return uerr.ErrUnhandled
	}
	s.super = pipe
	if err := s.update(pipe); err != nil {
		return err
	}
	s.reconcile(pipe)
	// Pass the update on so outer handlers see the topology change.
	return uerr.ErrUnhandled
}

// update resynchronizes the tracked flow list with the split pipe's
// advertisement.
func (s *Selflow) update(super upipe.Pipe) error {
	seen := map[uint64]bool{}
	var flowDef *uref.Ref
	for {
		next, err := upipe.SplitIterate(super, flowDef)
		if err != nil {
			return err
		}
		if next == nil {
			break
		}
		flowDef = next
		if !s.category.matches(flowDef) {
			continue
		}
		id, ok := flowDef.FlowID()
		if !ok {
			continue
		}
		seen[id] = true
		if s.lookup(id) == nil {
			dup, err := flowDef.Dup()
			if err != nil {
				return err
			}
			s.flows = append(s.flows, &selflowFlow{id: id, flowDef: dup})
		}
	}

	kept := s.flows[:0]
	for _, flow := range s.flows {
		if seen[flow.id] {
			kept = append(kept, flow)
			continue
		}
		if flow.sub != nil {
			upipe.Release(flow.sub)
		}
		flow.flowDef.Free()
	}
	s.flows = kept
	return nil
}

func (s *Selflow) lookup(id uint64) *selflowFlow {
	for _, flow := range s.flows {
		if flow.id == id {
			return flow
		}
	}
	return nil
}

// reconcile applies the selector, constructing and releasing sub-pipes
// until the materialized set matches the selection.
func (s *Selflow) reconcile(super upipe.Pipe) {
	if s.hasAuto && s.lookup(s.autoID) == nil {
		s.hasAuto = false
	}
	for _, flow := range s.flows {
		want := s.selected(super, flow)
		switch {
		case want && flow.sub == nil:
			sub, err := upipe.FlowAllocSub(super, s.subProbe.Use(), flow.flowDef)
			if err != nil {
				upipe.Warn(super, fmt.Sprintf("cannot allocate sub for flow %d", flow.id))
				continue
			}
			flow.sub = sub
		case !want && flow.sub != nil:
			upipe.Release(flow.sub)
			flow.sub = nil
		}
	}
}

func (s *Selflow) selected(super upipe.Pipe, flow *selflowFlow) bool {
	for _, term := range strings.Split(s.selector, ",") {
		if term == "" {
			continue
		}
		switch {
		case term == "all":
			return true
		case term == "auto":
			if !s.hasAuto {
				s.autoID = s.flows[0].id
				s.hasAuto = true
			}
			if flow.id == s.autoID {
				return true
			}
		case strings.Contains(term, "="):
			key, value, _ := strings.Cut(term, "=")
			if s.matchAttr(super, flow.flowDef, key, value) {
				return true
			}
		default:
			id, err := strconv.ParseUint(term, 10, 64)
			if err != nil {
				upipe.Warn(super, "invalid selector term "+strconv.Quote(term))
				continue
			}
			if flow.id == id {
				return true
			}
		}
	}
	return false
}

func (s *Selflow) matchAttr(super upipe.Pipe, flowDef *uref.Ref, key, value string) bool {
	switch key {
	case "name":
		name, ok := flowDef.FlowName()
		return ok && name == value
	case "lang":
		langs, ok := flowDef.FlowLanguages()
		if !ok {
			return false
		}
		for _, lang := range langs {
			if lang == value {
				return true
			}
		}
		return false
	default:
		got, ok := flowDef.Dict.GetString(key)
		if !ok {
			upipe.Dbg(super, "unknown selector key "+strconv.Quote(key))
			return false
		}
		return got == value
	}
}

// vim: foldmethod=marker
