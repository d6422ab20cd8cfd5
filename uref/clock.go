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
	"hz.tools/upipe/udict"
	"hz.tools/upipe/urational"
)

// DateType says how a date attribute is to be read. The ordering matters:
// a clock reference is earlier-stage information than a decoding time,
// which is earlier than a presentation time.
type DateType uint8

const (
	// DateNone marks an absent date.
	DateNone DateType = 0

	// DateCr is a clock reference.
	DateCr DateType = 1

	// DateDts is a decoding timestamp.
	DateDts DateType = 2

	// DatePts is a presentation timestamp.
	DatePts DateType = 3
)

// String returns the date type as a human readable String.
func (t DateType) String() string {
	switch t {
	case DateCr:
		return "cr"
	case DateDts:
		return "dts"
	case DatePts:
		return "pts"
	default:
		return "none"
	}
}

func (r *Ref) getDate(key, typeKey string) (uint64, DateType) {
	date, ok := r.Dict.GetUnsigned(key)
	if !ok {
		return 0, DateNone
	}
	typ, ok := r.Dict.GetUnsigned(typeKey)
	if !ok {
		return 0, DateNone
	}
	return date, DateType(typ)
}

func (r *Ref) setDate(key, typeKey string, date uint64, typ DateType) {
	if typ == DateNone {
		r.Dict.Delete(key)
		r.Dict.Delete(typeKey)
		return
	}
	r.Dict.SetUnsigned(key, date)
	r.Dict.SetUnsigned(typeKey, uint64(typ))
}

// DateProg returns the date in the program clock domain.
func (r *Ref) DateProg() (uint64, DateType) {
	return r.getDate(udict.KeyDateProg, udict.KeyDateProgType)
}

// SetDateProg sets the date in the program clock domain.
func (r *Ref) SetDateProg(date uint64, typ DateType) {
	r.setDate(udict.KeyDateProg, udict.KeyDateProgType, date, typ)
}

// DateSys returns the date in the system clock domain.
func (r *Ref) DateSys() (uint64, DateType) {
	return r.getDate(udict.KeyDateSys, udict.KeyDateSysType)
}

// SetDateSys sets the date in the system clock domain.
func (r *Ref) SetDateSys(date uint64, typ DateType) {
	r.setDate(udict.KeyDateSys, udict.KeyDateSysType, date, typ)
}

// DateOrig returns the date in the original stream clock domain.
func (r *Ref) DateOrig() (uint64, DateType) {
	return r.getDate(udict.KeyDateOrig, udict.KeyDateOrigType)
}

// SetDateOrig sets the date in the original stream clock domain.
func (r *Ref) SetDateOrig(date uint64, typ DateType) {
	r.setDate(udict.KeyDateOrig, udict.KeyDateOrigType, date, typ)
}

// CrSys returns the system date if it is a clock reference.
func (r *Ref) CrSys() (uint64, bool) {
	date, typ := r.DateSys()
	if typ != DateCr {
		return 0, false
	}
	return date, true
}

// SetCrSys stamps the system date as a clock reference.
func (r *Ref) SetCrSys(date uint64) {
	r.SetDateSys(date, DateCr)
}

// ClockRate returns the drift rate applied by dejittering.
func (r *Ref) ClockRate() (urational.Rational, bool) {
	return r.Dict.GetRational(udict.KeyClockRate)
}

// SetClockRate stamps the drift rate so consumers can scale onward.
func (r *Ref) SetClockRate(rate urational.Rational) {
	r.Dict.SetRational(udict.KeyClockRate, rate)
}

// ClockRef reports whether this unit carries a clock reference.
func (r *Ref) ClockRef() bool {
	return r.Dict.GetVoid(udict.KeyClockRef)
}

// SetClockRef marks this unit as carrying a clock reference.
func (r *Ref) SetClockRef() {
	r.Dict.SetVoid(udict.KeyClockRef)
}

// ClockDiscontinuity reports a break in the upstream clock.
func (r *Ref) ClockDiscontinuity() bool {
	return r.Dict.GetVoid(udict.KeyClockDiscontinuity)
}

// SetClockDiscontinuity marks a break in the upstream clock.
func (r *Ref) SetClockDiscontinuity() {
	r.Dict.SetVoid(udict.KeyClockDiscontinuity)
}

// ClockDuration returns the duration of the unit in clock ticks.
func (r *Ref) ClockDuration() (uint64, bool) {
	return r.Dict.GetUnsigned(udict.KeyClockDuration)
}

// SetClockDuration sets the duration of the unit.
func (r *Ref) SetClockDuration(d uint64) {
	r.Dict.SetUnsigned(udict.KeyClockDuration, d)
}

// ClockRapSys returns the system date of the latest random access point.
func (r *Ref) ClockRapSys() (uint64, bool) {
	return r.Dict.GetUnsigned(udict.KeyClockRapSys)
}

// SetClockRapSys sets the system date of the latest random access point.
func (r *Ref) SetClockRapSys(date uint64) {
	r.Dict.SetUnsigned(udict.KeyClockRapSys, date)
}

// vim: foldmethod=marker
