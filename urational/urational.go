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

// Package urational contains the exact ratio type used for clock drift
// rates and frame rates, where a float64 would accumulate error over long
// projections.
package urational

import (
	"fmt"
)

// Rational is a signed ratio. A zero Den means the Rational is unset.
type Rational struct {
	Num int64
	Den uint64
}

// One is the identity ratio.
var One = Rational{Num: 1, Den: 1}

// Simplify divides Num and Den by their greatest common divisor.
func (r Rational) Simplify() Rational {
	if r.Den == 0 {
		return r
	}
	num := r.Num
	neg := false
	if num < 0 {
		num = -num
		neg = true
	}
	d := gcd(uint64(num), r.Den)
	if d <= 1 {
		return r
	}
	num /= int64(d)
	if neg {
		num = -num
	}
	return Rational{Num: num, Den: r.Den / d}
}

// Scale projects v through the ratio, rounding toward zero.
func (r Rational) Scale(v int64) int64 {
	if r.Den == 0 {
		return v
	}
	return v * r.Num / int64(r.Den)
}

// Float converts the ratio to a float64 for display or filtering.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String implements fmt.Stringer.
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// vim: foldmethod=marker
