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

package uref

import (
	"strings"

	"hz.tools/upipe/udict"
)

// AllocFlowDef returns a flow-definition Ref with the dotted definition
// set and no buffer.
func (m *Mgr) AllocFlowDef(def string) *Ref {
	r := m.Alloc()
	r.SetFlowDef(def)
	return r
}

// FlowDef returns the dotted flow definition string.
func (r *Ref) FlowDef() (string, bool) {
	return r.Dict.GetString(udict.KeyFlowDef)
}

// SetFlowDef sets the dotted flow definition string.
func (r *Ref) SetFlowDef(def string) {
	r.Dict.SetString(udict.KeyFlowDef, def)
}

// MatchDef reports whether the flow definition starts with the prefix.
// Collaborators match on prefixes: a "block.mpegts." consumer accepts
// any deeper refinement of that definition.
func (r *Ref) MatchDef(prefix string) bool {
	def, ok := r.FlowDef()
	return ok && strings.HasPrefix(def, prefix)
}

// FlowID returns the flow identifier assigned by a split pipe.
func (r *Ref) FlowID() (uint64, bool) {
	return r.Dict.GetUnsigned(udict.KeyFlowID)
}

// SetFlowID sets the flow identifier.
func (r *Ref) SetFlowID(id uint64) {
	r.Dict.SetUnsigned(udict.KeyFlowID, id)
}

// FlowName returns the human-readable program or service name.
func (r *Ref) FlowName() (string, bool) {
	return r.Dict.GetString(udict.KeyFlowName)
}

// SetFlowName sets the program or service name.
func (r *Ref) SetFlowName(name string) {
	r.Dict.SetString(udict.KeyFlowName, name)
}

// FlowLanguages returns the ISO-639 language list.
func (r *Ref) FlowLanguages() ([]string, bool) {
	langs, ok := r.Dict.GetString(udict.KeyFlowLanguages)
	if !ok || langs == "" {
		return nil, ok
	}
	return strings.Split(langs, ","), true
}

// SetFlowLanguages sets the ISO-639 language list.
func (r *Ref) SetFlowLanguages(langs []string) {
	r.Dict.SetString(udict.KeyFlowLanguages, strings.Join(langs, ","))
}

// FlowHeaders returns the opaque global headers blob.
func (r *Ref) FlowHeaders() ([]byte, bool) {
	return r.Dict.GetOpaque(udict.KeyFlowHeaders)
}

// SetFlowHeaders sets the opaque global headers blob.
func (r *Ref) SetFlowHeaders(headers []byte) {
	r.Dict.SetOpaque(udict.KeyFlowHeaders, headers)
}

// FlowGlobal reports whether headers are carried out of band.
func (r *Ref) FlowGlobal() bool {
	return r.Dict.GetVoid(udict.KeyFlowGlobal)
}

// SetFlowGlobal marks headers as carried out of band.
func (r *Ref) SetFlowGlobal() {
	r.Dict.SetVoid(udict.KeyFlowGlobal)
}

// FlowLatency returns the accumulated pipeline latency in clock ticks.
func (r *Ref) FlowLatency() (uint64, bool) {
	return r.Dict.GetUnsigned(udict.KeyFlowLatency)
}

// SetFlowLatency sets the accumulated pipeline latency.
func (r *Ref) SetFlowLatency(latency uint64) {
	r.Dict.SetUnsigned(udict.KeyFlowLatency, latency)
}

// vim: foldmethod=marker
