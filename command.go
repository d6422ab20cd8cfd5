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
	"hz.tools/upipe/uref"
)

// Command is a control command executed against a pipe. Every command is
// a typed struct; pipes match on the concrete type. Out parameters are
// fields the callee fills before returning.
type Command interface {
	isCommand()
}

// CommandBase makes a struct outside this package a Command: embed it
// in manager-specific command types, namespaced by the manager's
// signature.
type CommandBase struct{}

func (CommandBase) isCommand() {}

// CmdSetFlowDef proposes an input flow definition. The callee inspects
// the Ref and duplicates what it stores; ownership stays with the
// caller. Incompatible definitions report uerr.ErrInvalid.
type CmdSetFlowDef struct {
	FlowDef *uref.Ref
}

// CmdGetFlowDef asks for the pipe's current output flow definition. The
// returned Ref stays owned by the pipe.
type CmdGetFlowDef struct {
	FlowDef *uref.Ref
}

// CmdSetOutput links the pipe's output. The link is owned: the callee
// takes a reference on the new output and drops its reference on the
// old.
type CmdSetOutput struct {
	Output Pipe
}

// CmdGetOutput asks for the pipe's current output.
type CmdGetOutput struct {
	Output Pipe
}

// CmdRegisterRequest submits an upstream-travelling capability request.
// The pipe answers locally, forwards further upstream, or surfaces the
// request to its probe chain.
type CmdRegisterRequest struct {
	Request *Request
}

// CmdUnregisterRequest withdraws a previously registered request.
type CmdUnregisterRequest struct {
	Request *Request
}

// CmdAttachUpumpMgr tells the pipe to (re)acquire its event-loop
// manager by throwing NeedUpumpMgr.
type CmdAttachUpumpMgr struct{}

// CmdAttachUclock tells the pipe to (re)acquire a clock through a
// Uclock request.
type CmdAttachUclock struct{}

// CmdSubGetSuper asks a sub-pipe for its super-pipe.
type CmdSubGetSuper struct {
	Super Pipe
}

// CmdIterateSub iterates a super-pipe's sub-pipes: pass the previous
// sub (nil to start), read the next one back, nil at the end.
type CmdIterateSub struct {
	Sub Pipe
}

// CmdGetSubMgr asks a super-pipe for the manager constructing its
// sub-pipes.
type CmdGetSubMgr struct {
	Mgr Mgr
}

// CmdSplitIterate iterates the flows a split pipe advertises: pass the
// previous flow definition (nil to start), read the next one back, nil
// at the end. Returned Refs stay owned by the pipe and carry a flow id.
type CmdSplitIterate struct {
	FlowDef *uref.Ref
}

// CmdBinGetFirstInner asks a bin pipe for the first pipe of its inner
// pipeline, for debug walking.
type CmdBinGetFirstInner struct {
	Inner Pipe
}

// CmdBinGetLastInner asks a bin pipe for the last pipe of its inner
// pipeline.
type CmdBinGetLastInner struct {
	Inner Pipe
}

// CmdBinFreeze pauses internal reconfiguration of a bin so external
// walkers see a stable inner pipeline.
type CmdBinFreeze struct{}

// CmdBinThaw resumes internal reconfiguration of a bin.
type CmdBinThaw struct{}

// CmdFlushInput tells a buffering pipe to push out everything held.
type CmdFlushInput struct{}

// CmdSetMaxLength bounds a buffering pipe's internal queue, in units.
type CmdSetMaxLength struct {
	Length int
}

// CmdGetMaxLength reads a buffering pipe's internal bound.
type CmdGetMaxLength struct {
	Length int
}

func (*CmdSetFlowDef) isCommand()        {}
func (*CmdGetFlowDef) isCommand()        {}
func (*CmdSetOutput) isCommand()         {}
func (*CmdGetOutput) isCommand()         {}
func (*CmdRegisterRequest) isCommand()   {}
func (*CmdUnregisterRequest) isCommand() {}
func (*CmdAttachUpumpMgr) isCommand()    {}
func (*CmdAttachUclock) isCommand()      {}
func (*CmdSubGetSuper) isCommand()       {}
func (*CmdIterateSub) isCommand()        {}
func (*CmdGetSubMgr) isCommand()         {}
func (*CmdSplitIterate) isCommand()      {}
func (*CmdBinGetFirstInner) isCommand()  {}
func (*CmdBinGetLastInner) isCommand()   {}
func (*CmdBinFreeze) isCommand()         {}
func (*CmdBinThaw) isCommand()           {}
func (*CmdFlushInput) isCommand()        {}
func (*CmdSetMaxLength) isCommand()      {}
func (*CmdGetMaxLength) isCommand()      {}

// SetFlowDef proposes an input flow definition to a pipe.
func SetFlowDef(p Pipe, flowDef *uref.Ref) error {
	return p.Control(&CmdSetFlowDef{FlowDef: flowDef})
}

// GetFlowDef returns a pipe's current output flow definition.
func GetFlowDef(p Pipe) (*uref.Ref, error) {
	cmd := &CmdGetFlowDef{}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	return cmd.FlowDef, nil
}

// SetOutput links a pipe's output.
func SetOutput(p, output Pipe) error {
	return p.Control(&CmdSetOutput{Output: output})
}

// GetOutput returns a pipe's current output.
func GetOutput(p Pipe) (Pipe, error) {
	cmd := &CmdGetOutput{}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	return cmd.Output, nil
}

// RegisterRequest submits a capability request to a pipe.
func RegisterRequest(p Pipe, req *Request) error {
	return p.Control(&CmdRegisterRequest{Request: req})
}

// UnregisterRequest withdraws a capability request from a pipe.
func UnregisterRequest(p Pipe, req *Request) error {
	return p.Control(&CmdUnregisterRequest{Request: req})
}

// AttachUpumpMgr tells a pipe to (re)acquire its event-loop manager.
func AttachUpumpMgr(p Pipe) error {
	return p.Control(&CmdAttachUpumpMgr{})
}

// AttachUclock tells a pipe to (re)acquire a clock.
func AttachUclock(p Pipe) error {
	return p.Control(&CmdAttachUclock{})
}

// SubGetSuper returns a sub-pipe's super-pipe.
func SubGetSuper(p Pipe) (Pipe, error) {
	cmd := &CmdSubGetSuper{}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	return cmd.Super, nil
}

// IterateSub steps through a super-pipe's sub-pipes; pass nil to start,
// nil comes back at the end.
func IterateSub(p Pipe, prev Pipe) (Pipe, error) {
	cmd := &CmdIterateSub{Sub: prev}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	return cmd.Sub, nil
}

// GetSubMgr returns the manager constructing a super-pipe's sub-pipes.
func GetSubMgr(p Pipe) (Mgr, error) {
	cmd := &CmdGetSubMgr{}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	if cmd.Mgr == nil {
		return nil, uerr.ErrInvalid
	}
	return cmd.Mgr, nil
}

// SplitIterate steps through a split pipe's advertised flows; pass nil
// to start, nil comes back at the end.
func SplitIterate(p Pipe, prev *uref.Ref) (*uref.Ref, error) {
	cmd := &CmdSplitIterate{FlowDef: prev}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	return cmd.FlowDef, nil
}

// BinGetFirstInner returns the first pipe of a bin's inner pipeline.
func BinGetFirstInner(p Pipe) (Pipe, error) {
	cmd := &CmdBinGetFirstInner{}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	return cmd.Inner, nil
}

// BinGetLastInner returns the last pipe of a bin's inner pipeline.
func BinGetLastInner(p Pipe) (Pipe, error) {
	cmd := &CmdBinGetLastInner{}
	if err := p.Control(cmd); err != nil {
		return nil, err
	}
	return cmd.Inner, nil
}

// BinFreeze pauses a bin's internal reconfiguration.
func BinFreeze(p Pipe) error {
	return p.Control(&CmdBinFreeze{})
}

// BinThaw resumes a bin's internal reconfiguration.
func BinThaw(p Pipe) error {
	return p.Control(&CmdBinThaw{})
}

// vim: foldmethod=marker
