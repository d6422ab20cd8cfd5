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

// Package upump contains the cooperative event-loop abstraction. A Pump
// is a scheduled event source: a timer, an idler, a file-descriptor
// watcher, a signal watcher, or a queue watcher. A Mgr is a
// single-threaded scheduler: every callback of every Pump registered
// with one Mgr runs on that Mgr's thread, never concurrently with
// another.
//
// The Blocker protocol is the framework's backpressure mechanism: a pipe
// that temporarily cannot accept more input allocates a Blocker on the
// pump that delivered the input, pausing it; releasing the Blocker
// reactivates the source.
package upump

import (
	"syscall"
)

// Kind enumerates the event sources a Pump can watch.
type Kind uint8

const (
	// KindIdler runs whenever the loop is otherwise idle.
	KindIdler Kind = 1

	// KindTimer fires after a delay, optionally repeating.
	KindTimer Kind = 2

	// KindFdRead fires when a file descriptor becomes readable.
	KindFdRead Kind = 3

	// KindFdWrite fires when a file descriptor becomes writable.
	KindFdWrite Kind = 4

	// KindSignal fires when a POSIX signal is delivered.
	KindSignal Kind = 5

	// KindQueue fires when a watched queue has consumable items.
	KindQueue Kind = 6
)

// String returns the kind as a human readable String.
func (k Kind) String() string {
	switch k {
	case KindIdler:
		return "idler"
	case KindTimer:
		return "timer"
	case KindFdRead:
		return "fd-read"
	case KindFdWrite:
		return "fd-write"
	case KindSignal:
		return "signal"
	case KindQueue:
		return "queue"
	default:
		return "unknown"
	}
}

// Pump is a scheduled event source. Pumps are constructed stopped; Start
// registers with the manager, Stop deregisters, Free releases. All
// methods must be called from the owning manager's thread, except where
// an implementation documents otherwise.
type Pump interface {
	// Kind returns what this Pump watches.
	Kind() Kind

	// Start registers the Pump with its manager.
	Start()

	// Stop deregisters the Pump. A stopped Pump may be started again.
	Stop()

	// Free releases the Pump. It must not be used afterwards.
	Free()

	// Block allocates a Blocker pausing this Pump. The Pump does not
	// fire while at least one Blocker is live.
	Block() Blocker

	// Blocked reports whether at least one Blocker is live.
	Blocked() bool
}

// Blocker pauses the Pump it was allocated against until freed.
type Blocker interface {
	// Free releases the Blocker, reactivating the Pump once no other
	// Blocker holds it.
	Free()
}

// Signaler is the queue side of a queue Pump: anything that can report
// new consumable items by invoking a registered function from any
// goroutine. upool.Queue implements it.
type Signaler interface {
	SetSignal(signal func())
}

// Mgr is a single-threaded pump scheduler.
type Mgr interface {
	// AllocIdler returns an idler Pump.
	AllocIdler(cb func(Pump)) Pump

	// AllocTimer returns a timer Pump firing after ticks (27 MHz), then
	// every repeat ticks if repeat is nonzero.
	AllocTimer(cb func(Pump), after, repeat uint64) Pump

	// AllocFdRead returns a Pump firing when fd is readable.
	AllocFdRead(cb func(Pump), fd int) Pump

	// AllocFdWrite returns a Pump firing when fd is writable.
	AllocFdWrite(cb func(Pump), fd int) Pump

	// AllocSignal returns a Pump firing when sig is delivered.
	AllocSignal(cb func(Pump), sig syscall.Signal) Pump

	// AllocQueue returns a Pump firing when the queue signals
	// consumable items.
	AllocQueue(cb func(Pump), queue Signaler) Pump

	// Run processes events until Stop is called or no started pump
	// remains. It must be called from the thread owning the Mgr.
	Run() error

	// Stop makes Run return after the current dispatch. Safe to call
	// from any goroutine.
	Stop()

	// Close releases the scheduler's resources. No pump may be used
	// afterwards.
	Close() error
}

// vim: foldmethod=marker
