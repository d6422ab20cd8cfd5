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

// Package uerr contains the error taxonomy shared by every layer of the
// pipeline: buffers, pipes, probes and schedulers all classify failures
// into these kinds. Compare with errors.Is; wrap with fmt.Errorf and %w to
// attach context without losing the kind.
package uerr

import (
	"fmt"
)

var (
	// ErrUnknown will be returned as the fall-through for an event or
	// command nobody recognized.
	ErrUnknown = fmt.Errorf("upipe: unknown event or command")

	// ErrAlloc will be returned when memory could not be obtained or a
	// pool was exhausted.
	ErrAlloc = fmt.Errorf("upipe: allocation failed")

	// ErrUpump will be returned when an event-loop operation failed.
	ErrUpump = fmt.Errorf("upipe: event loop error")

	// ErrInvalid will be returned when the caller supplied bad arguments
	// or an incompatible flow definition.
	ErrInvalid = fmt.Errorf("upipe: invalid argument")

	// ErrExternal will be returned when an underlying library or the
	// operating system failed.
	ErrExternal = fmt.Errorf("upipe: external error")

	// ErrBusy will be returned when a resource is currently unavailable,
	// typically a write on a shared buffer.
	ErrBusy = fmt.Errorf("upipe: resource busy")

	// ErrUnhandled will be returned by a handler declining an event so
	// the caller passes it to the next handler in the chain.
	ErrUnhandled = fmt.Errorf("upipe: unhandled")
)

// vim: foldmethod=marker
