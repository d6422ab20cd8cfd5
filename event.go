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
	"hz.tools/upipe/upump"
	"hz.tools/upipe/uref"
)

// Event is an occurrence a pipe reports up its probe chain. Every event
// is a typed struct; catchers match on the concrete type. The set of
// types and their argument shapes is part of the stable contract shared
// by all pipes.
type Event interface {
	isEvent()
}

// EventBase makes a struct outside this package an Event: embed it in
// manager-specific event types.
type EventBase struct{}

func (EventBase) isEvent() {}

// LogLevel grades Log events.
type LogLevel int8

const (
	// LogVerbose is chattier than anyone wants in production.
	LogVerbose LogLevel = iota - 2

	// LogDebug is developer-facing detail.
	LogDebug

	// LogInfo is informational.
	LogInfo

	// LogNotice is normal but significant.
	LogNotice

	// LogWarning flags something off, handled locally.
	LogWarning

	// LogError flags a failure the pipe could not handle.
	LogError
)

// String returns the level as a human readable String.
func (l LogLevel) String() string {
	switch l {
	case LogVerbose:
		return "verbose"
	case LogDebug:
		return "debug"
	case LogNotice:
		return "notice"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// Ready is thrown once when a pipe finishes construction.
type Ready struct{}

// Dead is thrown once when a pipe is finally released.
type Dead struct{}

// Log carries a log line from a pipe.
type Log struct {
	Level LogLevel
	Msg   string
}

// Fatal reports an asynchronous failure the pipe cannot survive. The
// error is one of the uerr kinds, usually uerr.ErrAlloc or
// uerr.ErrExternal. Allocation failures are always surfaced to the top
// of the chain, never silently dropped.
type Fatal struct {
	Err error
}

// ErrorThrown reports a pipe-level error that is not fatal to the
// application.
type ErrorThrown struct {
	Err error
}

// NewFlowDef is thrown when a pipe derived a new output flow definition.
// The Ref belongs to the thrower; catchers duplicate if they retain.
type NewFlowDef struct {
	Flow *uref.Ref
}

// NeedOutput is thrown when a pipe is about to forward with no output
// pipe set. A catcher may set the output before returning.
type NeedOutput struct {
	Flow *uref.Ref
}

// NeedUpumpMgr is thrown when a pipe needs an event-loop manager. A
// catcher fills Mgr.
type NeedUpumpMgr struct {
	Mgr upump.Mgr
}

// ProvideRequest is thrown when a pipe cannot answer a capability
// request itself; decorator probes answer by calling the request's
// provide callback.
type ProvideRequest struct {
	Request *Request
}

// SourceEnd is thrown when a source pipe reaches the end of its stream
// or its peer disappears. Catchers decide whether to tear down or retry.
type SourceEnd struct{}

// SyncAcquired is thrown when a parser acquires stream synchronization.
type SyncAcquired struct{}

// SyncLost is thrown when a parser loses stream synchronization.
type SyncLost struct{}

// ClockRef is thrown when a unit carries a source clock reference. The
// Ref's system date holds the matching system-clock capture.
type ClockRef struct {
	Ref           *uref.Ref
	CrProg        uint64
	Discontinuity bool
}

// ClockTs is thrown for every dated unit so a dejittering probe can
// rewrite its system-clock dates in place.
type ClockTs struct {
	Ref *uref.Ref
}

// NewRap is thrown when a random access point is seen.
type NewRap struct {
	Ref *uref.Ref
}

// SplitUpdate is thrown by a split pipe when its set of advertised
// output flows changed; interested catchers iterate with SplitIterate.
type SplitUpdate struct{}

// ProbeUref is a transparent inspection hook thrown for each input unit
// by pipes that support it. Setting Drop makes the thrower discard the
// unit.
type ProbeUref struct {
	Ref  *uref.Ref
	Pump upump.Pump
	Drop bool
}

func (*Ready) isEvent()          {}
func (*Dead) isEvent()           {}
func (*Log) isEvent()            {}
func (*Fatal) isEvent()          {}
func (*ErrorThrown) isEvent()    {}
func (*NewFlowDef) isEvent()     {}
func (*NeedOutput) isEvent()     {}
func (*NeedUpumpMgr) isEvent()   {}
func (*ProvideRequest) isEvent() {}
func (*SourceEnd) isEvent()      {}
func (*SyncAcquired) isEvent()   {}
func (*SyncLost) isEvent()       {}
func (*ClockRef) isEvent()       {}
func (*ClockTs) isEvent()        {}
func (*NewRap) isEvent()         {}
func (*SplitUpdate) isEvent()    {}
func (*ProbeUref) isEvent()      {}

// vim: foldmethod=marker
