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

package upipe

import (
	"hz.tools/upipe/ubuf"
	"hz.tools/upipe/uclock"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/ulist"
	"hz.tools/upipe/uref"
)

// RequestKind enumerates the capabilities a request can ask for.
type RequestKind uint8

const (
	// RequestUrefMgr asks for a uref manager.
	RequestUrefMgr RequestKind = 1

	// RequestUbufMgr asks for a buffer manager able to satisfy the
	// request's flow format hint.
	RequestUbufMgr RequestKind = 2

	// RequestUclock asks for a clock.
	RequestUclock RequestKind = 3

	// RequestFlowFormat asks an upstream provider to amend the flow
	// format hint into one it can produce.
	RequestFlowFormat RequestKind = 4

	// RequestSinkLatency asks for the latency the terminal sink adds.
	RequestSinkLatency RequestKind = 5
)

// String returns the kind as a human readable String.
func (k RequestKind) String() string {
	switch k {
	case RequestUrefMgr:
		return "uref-mgr"
	case RequestUbufMgr:
		return "ubuf-mgr"
	case RequestUclock:
		return "uclock"
	case RequestFlowFormat:
		return "flow-format"
	case RequestSinkLatency:
		return "sink-latency"
	default:
		return "unknown"
	}
}

// Request is a capability query travelling upstream, from the pipe that
// needs something toward whoever can provide it. The provide callback
// matching Kind is invoked synchronously by the provider; the others are
// nil.
type Request struct {
	// Kind says which capability is asked for.
	Kind RequestKind

	// Flow is the flow format hint for UbufMgr and FlowFormat
	// requests, owned by the Request.
	Flow *uref.Ref

	// Node gives the Request list membership in pending-request lists.
	Node ulist.Node[*Request]

	// OnUrefMgr receives the provided uref manager.
	OnUrefMgr func(mgr *uref.Mgr)

	// OnUbufMgr receives the provided buffer manager and the amended
	// flow format; ownership of the Ref transfers to the callback.
	OnUbufMgr func(mgr ubuf.Mgr, flowFormat *uref.Ref)

	// OnUclock receives the provided clock.
	OnUclock func(clock uclock.Clock)

	// OnFlowFormat receives the amended flow format; ownership of the
	// Ref transfers to the callback.
	OnFlowFormat func(flowFormat *uref.Ref)

	// OnSinkLatency receives the sink latency in clock ticks.
	OnSinkLatency func(latency uint64)
}

// NewUrefMgrRequest returns a request for a uref manager.
func NewUrefMgrRequest(on func(*uref.Mgr)) *Request {
	r := &Request{Kind: RequestUrefMgr, OnUrefMgr: on}
	r.Node.Init(r)
	return r
}

// NewUbufMgrRequest returns a request for a buffer manager satisfying
// the flow format hint. The hint is duplicated; the caller keeps its
// copy.
func NewUbufMgrRequest(flow *uref.Ref, on func(ubuf.Mgr, *uref.Ref)) (*Request, error) {
	hint, err := flow.Dup()
	if err != nil {
		return nil, err
	}
	r := &Request{Kind: RequestUbufMgr, Flow: hint, OnUbufMgr: on}
	r.Node.Init(r)
	return r, nil
}

// NewUclockRequest returns a request for a clock.
func NewUclockRequest(on func(uclock.Clock)) *Request {
	r := &Request{Kind: RequestUclock, OnUclock: on}
	r.Node.Init(r)
	return r
}

// NewFlowFormatRequest returns a request to amend the flow format hint.
// The hint is duplicated; the caller keeps its copy.
func NewFlowFormatRequest(flow *uref.Ref, on func(*uref.Ref)) (*Request, error) {
	hint, err := flow.Dup()
	if err != nil {
		return nil, err
	}
	r := &Request{Kind: RequestFlowFormat, Flow: hint, OnFlowFormat: on}
	r.Node.Init(r)
	return r, nil
}

// NewSinkLatencyRequest returns a request for the terminal sink's
// latency.
func NewSinkLatencyRequest(on func(uint64)) *Request {
	r := &Request{Kind: RequestSinkLatency, OnSinkLatency: on}
	r.Node.Init(r)
	return r
}

// Clean releases the Request's owned flow hint. Call after
// unregistering.
func (r *Request) Clean() {
	if r.Flow != nil {
		r.Flow.Free()
		r.Flow = nil
	}
}

// ProvideUrefMgr answers a uref-manager request.
func (r *Request) ProvideUrefMgr(mgr *uref.Mgr) error {
	if r.Kind != RequestUrefMgr || r.OnUrefMgr == nil {
		return uerr.ErrInvalid
	}
	r.OnUrefMgr(mgr)
	return nil
}

// ProvideUbufMgr answers a buffer-manager request. Ownership of
// flowFormat transfers to the request.
func (r *Request) ProvideUbufMgr(mgr ubuf.Mgr, flowFormat *uref.Ref) error {
	if r.Kind != RequestUbufMgr || r.OnUbufMgr == nil {
		if flowFormat != nil {
			flowFormat.Free()
		}
		return uerr.ErrInvalid
	}
	r.OnUbufMgr(mgr, flowFormat)
	return nil
}

// ProvideUclock answers a clock request.
func (r *Request) ProvideUclock(clock uclock.Clock) error {
	if r.Kind != RequestUclock || r.OnUclock == nil {
		return uerr.ErrInvalid
	}
	r.OnUclock(clock)
	return nil
}

// ProvideFlowFormat answers a flow-format request. Ownership of
// flowFormat transfers to the request.
func (r *Request) ProvideFlowFormat(flowFormat *uref.Ref) error {
	if r.Kind != RequestFlowFormat || r.OnFlowFormat == nil {
		if flowFormat != nil {
			flowFormat.Free()
		}
		return uerr.ErrInvalid
	}
	r.OnFlowFormat(flowFormat)
	return nil
}

// ProvideSinkLatency answers a sink-latency request.
func (r *Request) ProvideSinkLatency(latency uint64) error {
	if r.Kind != RequestSinkLatency || r.OnSinkLatency == nil {
		return uerr.ErrInvalid
	}
	r.OnSinkLatency(latency)
	return nil
}

// vim: foldmethod=marker
