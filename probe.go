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
	"errors"
	"fmt"

	"hz.tools/upipe/uerr"
	"hz.tools/upipe/urefcount"
)

// Catcher handles one event thrown by a pipe. Returning nil consumes
// the event; uerr.ErrUnhandled passes it to the next probe in the chain;
// any other error short-circuits back to the thrower.
type Catcher func(probe *Probe, pipe Pipe, event Event) error

// Probe is one node of a pipe's event-catcher chain. Each node owns a
// reference on its successor; chains are acyclic and, once a pipe is
// live, treated as immutable.
type Probe struct {
	catch    Catcher
	next     *Probe
	refcount urefcount.Count
}

// NewProbe returns a Probe catching events with catch and passing the
// rest to next. The next reference is owned: releasing the last
// reference on the returned Probe releases next too.
func NewProbe(catch Catcher, next *Probe) *Probe {
	p := &Probe{catch: catch, next: next}
	p.refcount.Init(func() {
		if p.next != nil {
			p.next.Release()
		}
	})
	return p
}

// Use takes an additional reference, for handing the chain to a second
// owner.
func (p *Probe) Use() *Probe {
	if p == nil {
		return nil
	}
	p.refcount.Use()
	return p
}

// Release drops a reference.
func (p *Probe) Release() {
	if p == nil {
		return
	}
	p.refcount.Release()
}

// Next returns the successor node, nil at the end of the chain.
func (p *Probe) Next() *Probe {
	if p == nil {
		return nil
	}
	return p.next
}

// Throw offers an event to the chain starting at this Probe. The first
// catcher not returning uerr.ErrUnhandled terminates the walk; an empty
// or exhausted chain reports uerr.ErrUnhandled.
func (p *Probe) Throw(pipe Pipe, event Event) error {
	for node := p; node != nil; node = node.next {
		if node.catch == nil {
			continue
		}
		err := node.catch(node, pipe, event)
		if errors.Is(err, uerr.ErrUnhandled) {
			continue
		}
		return err
	}
	return uerr.ErrUnhandled
}

// ThrowNext forwards an event to the rest of the chain, for catchers
// that inspected an event but want their successors to see it too.
func (p *Probe) ThrowNext(pipe Pipe, event Event) error {
	if p == nil || p.next == nil {
		return uerr.ErrUnhandled
	}
	return p.next.Throw(pipe, event)
}

// Throw offers an event to a pipe's probe chain.
func Throw(pipe Pipe, event Event) error {
	return pipe.Core().probe.Throw(pipe, event)
}

// ThrowReady reports pipe construction.
func ThrowReady(pipe Pipe) {
	_ = Throw(pipe, &Ready{})
}

// ThrowDead reports final pipe release.
func ThrowDead(pipe Pipe) {
	_ = Throw(pipe, &Dead{})
}

// ThrowFatal surfaces an unsurvivable failure; it is never silently
// dropped, so an unhandled fatal panics rather than disappearing.
func ThrowFatal(pipe Pipe, err error) {
	if thrown := Throw(pipe, &Fatal{Err: err}); errors.Is(thrown, uerr.ErrUnhandled) {
		panic(fmt.Sprintf("upipe: unhandled fatal error: %v", err))
	}
}

// ThrowError reports a non-fatal pipe error.
func ThrowError(pipe Pipe, err error) {
	_ = Throw(pipe, &ErrorThrown{Err: err})
}

// ThrowSourceEnd reports end of stream on a source pipe.
func ThrowSourceEnd(pipe Pipe) {
	_ = Throw(pipe, &SourceEnd{})
}

// LogMsg sends a log line up the probe chain.
func LogMsg(pipe Pipe, level LogLevel, msg string) {
	_ = Throw(pipe, &Log{Level: level, Msg: msg})
}

// Verbose logs at the verbose level.
func Verbose(pipe Pipe, msg string) { LogMsg(pipe, LogVerbose, msg) }

// Dbg logs at the debug level.
func Dbg(pipe Pipe, msg string) { LogMsg(pipe, LogDebug, msg) }

// Notice logs at the notice level.
func Notice(pipe Pipe, msg string) { LogMsg(pipe, LogNotice, msg) }

// Info logs at the info level.
func Info(pipe Pipe, msg string) { LogMsg(pipe, LogInfo, msg) }

// Warn logs at the warning level.
func Warn(pipe Pipe, msg string) { LogMsg(pipe, LogWarning, msg) }

// Err logs at the error level.
func Err(pipe Pipe, msg string) { LogMsg(pipe, LogError, msg) }

// vim: foldmethod=marker
