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

// Package uclock contains the monotonic clock abstraction used to date
// media. Every timestamp in this module is a tick count at Freq (27 MHz,
// the MPEG system clock rate), which divides evenly into the common audio
// and video rates.
package uclock

import (
	"time"
)

// Freq is the number of clock ticks per second.
const Freq uint64 = 27000000

// Ticks converts a time.Duration into clock ticks.
func Ticks(d time.Duration) uint64 {
	return uint64(d.Nanoseconds()) * 27 / 1000
}

// Duration converts clock ticks into a time.Duration.
func Duration(ticks uint64) time.Duration {
	return time.Duration(ticks * 1000 / 27)
}

// Clock is a monotonic 27 MHz clock with wall-clock correlation.
type Clock interface {
	// Now returns the current tick count. The origin is unspecified but
	// fixed for the lifetime of the Clock; Now never goes backwards.
	Now() uint64

	// ToRealTime correlates a tick count with the wall clock.
	ToRealTime(ticks uint64) time.Time

	// FromRealTime converts a wall-clock instant into the tick domain.
	FromRealTime(t time.Time) uint64
}

type std struct {
	base time.Time
}

// NewStd returns a Clock backed by the system monotonic clock.
func NewStd() Clock {
	return &std{base: time.Now()}
}

func (s *std) Now() uint64 {
	return Ticks(time.Since(s.base))
}

func (s *std) ToRealTime(ticks uint64) time.Time {
	return s.base.Add(Duration(ticks))
}

func (s *std) FromRealTime(t time.Time) uint64 {
	d := t.Sub(s.base)
	if d < 0 {
		return 0
	}
	return Ticks(d)
}

// vim: foldmethod=marker
