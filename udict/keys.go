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

package udict

// Canonical attribute names. The frequent keys get short dotted names so
// dictionaries stay small and comparisons stay cheap; everything here is
// part of the stable attribute namespace shared by all pipes.
const (
	// KeyFlowDef is the dotted hierarchical flow definition, e.g.
	// "block.mpegts." or "sound.s32.".
	KeyFlowDef = "f.def"

	// KeyFlowID is the flow identifier assigned by a split pipe.
	KeyFlowID = "f.id"

	// KeyFlowLanguages is the comma-separated ISO-639 language list.
	KeyFlowLanguages = "f.langs"

	// KeyFlowHeaders is the opaque global headers blob.
	KeyFlowHeaders = "f.headers"

	// KeyFlowGlobal marks flows whose headers are carried out of band.
	KeyFlowGlobal = "f.global"

	// KeyFlowLatency is the accumulated pipeline latency in clock ticks.
	KeyFlowLatency = "f.latency"

	// KeyFlowName is the human-readable program or service name.
	KeyFlowName = "f.name"

	// KeyFlowCopyright marks copyrighted content.
	KeyFlowCopyright = "f.copyright"

	// KeyFlowOriginal marks original (not copied) content.
	KeyFlowOriginal = "f.original"

	// KeyDateProg / KeyDateSys / KeyDateOrig are the three timestamp
	// planes; the matched *Type keys carry how the date is to be read
	// (clock reference, decoding or presentation time).
	KeyDateProg     = "k.date.prog"
	KeyDateProgType = "k.dtype.prog"
	KeyDateSys      = "k.date.sys"
	KeyDateSysType  = "k.dtype.sys"
	KeyDateOrig     = "k.date.orig"
	KeyDateOrigType = "k.dtype.orig"

	// KeyClockRate is the drift rate applied by the dejittering probe.
	KeyClockRate = "k.rate"

	// KeyClockRef marks a unit carrying a clock reference.
	KeyClockRef = "k.ref"

	// KeyClockDiscontinuity marks a break in the upstream clock.
	KeyClockDiscontinuity = "k.discontinuity"

	// KeyClockDuration is the duration of the unit in clock ticks.
	KeyClockDuration = "k.duration"

	// KeyClockRapSys is the system date of the latest random access
	// point.
	KeyClockRapSys = "k.rap.sys"
)

// vim: foldmethod=marker
