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
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/ulist"
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// OutputHelper manages a pipe's output side: the owned output link, the
// stored output flow definition, and requests registered by downstream.
// Embed it and delegate unrecognized commands to ControlOutput.
type OutputHelper struct {
	output      Pipe
	flowDef     *uref.Ref
	flowDefSent bool
	requests    ulist.List[*Request]
}

// InitOutput prepares the helper.
func (h *OutputHelper) InitOutput() {
	h.requests.Init()
}

// CleanOutput drops the output link and the stored flow definition. Call
// from the pipe's release function.
func (h *OutputHelper) CleanOutput() {
	Release(h.output)
	h.output = nil
	if h.flowDef != nil {
		h.flowDef.Free()
		h.flowDef = nil
	}
}

// FlowDef returns the stored output flow definition, still owned by the
// helper.
func (h *OutputHelper) FlowDef() *uref.Ref {
	return h.flowDef
}

// StoreFlowDef takes ownership of a derived output flow definition. It
// is announced with NewFlowDef immediately and sent downstream before
// the next forwarded unit.
func (h *OutputHelper) StoreFlowDef(self Pipe, flowDef *uref.Ref) {
	if h.flowDef != nil {
		h.flowDef.Free()
	}
	h.flowDef = flowDef
	h.flowDefSent = false
	if flowDef != nil {
		_ = Throw(self, &NewFlowDef{Flow: flowDef})
	}
}

// Output forwards a unit downstream, sending the pending flow
// definition first if the output has not seen it. With no output set,
// NeedOutput is thrown so a catcher can link one; if none does, the
// unit is dropped with a warning.
func (h *OutputHelper) Output(self Pipe, ref *uref.Ref, pump upump.Pump) {
	if h.output == nil {
		_ = Throw(self, &NeedOutput{Flow: h.flowDef})
		if h.output == nil {
			Warn(self, "no output, dropping unit")
			ref.Free()
			return
		}
	}
	if !h.flowDefSent && h.flowDef != nil {
		if err := SetFlowDef(h.output, h.flowDef); err != nil {
			Warn(self, "output rejected flow def, dropping unit")
			ref.Free()
			return
		}
		h.flowDefSent = true
	}
	h.output.Input(ref, pump)
}

// SetOutputPipe replaces the owned output link, re-sending the stored
// flow definition and re-registering downstream requests on the new
// output.
func (h *OutputHelper) SetOutputPipe(self Pipe, output Pipe) error {
	old := h.output
	h.output = output
	h.flowDefSent = false
	if output != nil {
		Use(output)
		h.requests.Foreach(func(req *Request) bool {
			_ = RegisterRequest(output, req)
			return true
		})
	}
	if old != nil {
		h.requests.Foreach(func(req *Request) bool {
			_ = UnregisterRequest(old, req)
			return true
		})
		Release(old)
	}
	return nil
}

// OutputPipe returns the current output, still owned by the helper.
func (h *OutputHelper) OutputPipe() Pipe {
	return h.output
}

// RegisterOutputRequest stores a downstream request and surfaces it to
// the probe chain; decorator probes answer the kinds they hold. Pipes
// that proxy requests to their own output do so before delegating here.
func (h *OutputHelper) RegisterOutputRequest(self Pipe, req *Request) error {
	h.requests.PushBack(&req.Node)
	err := Throw(self, &ProvideRequest{Request: req})
	if err == nil {
		return nil
	}
	if err == uerr.ErrUnhandled {
		// Nobody answered yet; the request stays pending and is
		// re-registered when the topology changes.
		return nil
	}
	return err
}

// UnregisterOutputRequest withdraws a downstream request.
func (h *OutputHelper) UnregisterOutputRequest(self Pipe, req *Request) error {
	h.requests.Remove(&req.Node)
	return nil
}

// ControlOutput handles the output-side commands, reporting
// uerr.ErrUnhandled for everything else so the pipe's Control can
// delegate to it last.
func (h *OutputHelper) ControlOutput(self Pipe, cmd Command) error {
	switch cmd := cmd.(type) {
	case *CmdGetOutput:
		cmd.Output = h.output
		return nil
	case *CmdSetOutput:
		return h.SetOutputPipe(self, cmd.Output)
	case *CmdGetFlowDef:
		cmd.FlowDef = h.flowDef
		return nil
	case *CmdRegisterRequest:
		return h.RegisterOutputRequest(self, cmd.Request)
	case *CmdUnregisterRequest:
		return h.UnregisterOutputRequest(self, cmd.Request)
	default:
		return uerr.ErrUnhandled
	}
}

// vim: foldmethod=marker
