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

package uprobe

import (
	"fmt"
	"math"

	"github.com/kelseyhightower/envconfig"

	"hz.tools/upipe"
	"hz.tools/upipe/uclock"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/urational"
	"hz.tools/upipe/uref"
)

// Dejitter clock-recovery constants, in 27 MHz ticks. A low-pass filter
// removes the sampling noise and a phase-locked loop catches up with the
// transmitter's clock. Changing the loop's drift too often would ripple
// into re-stamped clock references downstream, so only five rates are
// allowed: -desperate, -standard, 0, +standard, +desperate. The
// desperate rates are outside what ISO MPEG permits, but a receiver 100
// milliseconds behind has no compliant way out.
const (
	// PllStandard is the standard drift magnitude (25 ppm).
	PllStandard = int64(uclock.Freq) * 5 / 200000

	// PllDesperate is the desperate drift magnitude (1000 ppm).
	PllDesperate = int64(uclock.Freq) / 1000
)

// DejitterConfig tunes the dejittering probe. The defaults are the
// field tags; load overrides from UPIPE_DEJITTER_* environment
// variables with DejitterConfigFromEnv.
type DejitterConfig struct {
	// OffsetDivider caps the window of the offset low-pass filter, in
	// samples.
	OffsetDivider uint `envconfig:"OFFSET_DIVIDER" default:"1000"`

	// DeviationDivider caps the window of the deviation filter.
	DeviationDivider uint `envconfig:"DEVIATION_DIVIDER" default:"100"`

	// MaxJitter is the instantaneous offset excursion treated as a
	// discontinuity, in ticks (default 100 ms).
	MaxJitter uint64 `envconfig:"MAX_JITTER" default:"2700000"`

	// DriftSlide widens a threshold toward the current drift state so
	// the rate does not bounce between neighbors (default 5 ms).
	DriftSlide int64 `envconfig:"DRIFT_SLIDE" default:"135000"`

	// DriftDesperateLow, DriftStandardLow, DriftStandardHigh and
	// DriftDesperateHigh are the error-offset thresholds selecting the
	// drift state (defaults -20 ms, 0, +20 ms, +100 ms).
	DriftDesperateLow  int64 `envconfig:"DRIFT_DESPERATE_LOW" default:"-540000"`
	DriftStandardLow   int64 `envconfig:"DRIFT_STANDARD_LOW" default:"0"`
	DriftStandardHigh  int64 `envconfig:"DRIFT_STANDARD_HIGH" default:"540000"`
	DriftDesperateHigh int64 `envconfig:"DRIFT_DESPERATE_HIGH" default:"2700000"`

	// InitialDeviation seeds the deviation filter, in ticks (default
	// Freq/150).
	InitialDeviation uint64 `envconfig:"INITIAL_DEVIATION" default:"180000"`
}

// DefaultDejitterConfig returns the documented defaults.
func DefaultDejitterConfig() DejitterConfig {
	return DejitterConfig{
		OffsetDivider:      1000,
		DeviationDivider:   100,
		MaxJitter:          uclock.Freq / 10,
		DriftSlide:         int64(uclock.Freq) / 200,
		DriftDesperateLow:  -int64(uclock.Freq) / 50,
		DriftStandardLow:   0,
		DriftStandardHigh:  int64(uclock.Freq) / 50,
		DriftDesperateHigh: int64(uclock.Freq) / 10,
		InitialDeviation:   uclock.Freq / 150,
	}
}

// DejitterConfigFromEnv loads the tunables from UPIPE_DEJITTER_*
// environment variables, with the documented defaults.
func DejitterConfigFromEnv() (DejitterConfig, error) {
	var cfg DejitterConfig
	if err := envconfig.Process("upipe_dejitter", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Dejitter observes ClockRef events to maintain a smoothed estimate of
// the source-to-system clock offset and a bounded drift rate, and
// rewrites the system dates of every unit seen through ClockTs.
type Dejitter struct {
	probe *upipe.Probe
	cfg   DejitterConfig

	offsetDivider    uint
	deviationDivider uint

	offset         float64
	offsetCount    uint
	deviation      float64
	deviationCount uint
	minDeviation   float64

	lastCrProg uint64
	lastCrSys  uint64
	driftRate  urational.Rational
}

// NewDejitter returns a dejittering probe. enabled may start false for
// streams with trustworthy system dates; deviation seeds the filter, 0
// for the configured default.
func NewDejitter(next *upipe.Probe, cfg DejitterConfig, enabled bool, deviation uint64) *Dejitter {
	d := &Dejitter{cfg: cfg, driftRate: urational.One}
	d.Set(enabled, deviation)
	d.probe = upipe.NewProbe(d.catch, next)
	return d
}

// Probe returns the probe to chain under the application's handlers.
func (d *Dejitter) Probe() *upipe.Probe {
	return d.probe
}

// Set enables or disables dejittering and reseeds the filters.
// deviation 0 keeps the configured initial deviation.
func (d *Dejitter) Set(enabled bool, deviation uint64) {
	if enabled {
		d.offsetDivider = d.cfg.OffsetDivider
		d.deviationDivider = d.cfg.DeviationDivider
	} else {
		d.offsetDivider = 0
		d.deviationDivider = 0
	}
	d.offsetCount = 0
	d.deviationCount = 1
	d.offset = 0
	if deviation != 0 {
		d.deviation = float64(deviation)
	} else {
		d.deviation = float64(d.cfg.InitialDeviation)
	}
	if d.deviation < d.minDeviation {
		d.deviation = d.minDeviation
	}
}

// SetMinimumDeviation floors the deviation estimate, for sources whose
// sampling noise is known to be underestimated.
func (d *Dejitter) SetMinimumDeviation(deviation float64) {
	d.minDeviation = deviation
	if d.deviation < deviation {
		d.deviation = deviation
	}
}

// DriftRate returns the current drift rate.
func (d *Dejitter) DriftRate() urational.Rational {
	return d.driftRate
}

// Offset returns the filtered source-to-system offset, in ticks.
func (d *Dejitter) Offset() float64 {
	return d.offset
}

// Deviation returns the filtered offset deviation, in ticks.
func (d *Dejitter) Deviation() float64 {
	return d.deviation
}

func (d *Dejitter) catch(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
	if d.offsetDivider == 0 {
		return uerr.ErrUnhandled
	}
	switch ev := event.(type) {
	case *upipe.ClockRef:
		return d.clockRef(pipe, ev)
	case *upipe.ClockTs:
		return d.clockTs(pipe, ev)
	default:
		return uerr.ErrUnhandled
	}
}

func (d *Dejitter) clockRef(pipe upipe.Pipe, ev *upipe.ClockRef) error {
	if ev.Ref == nil {
		return uerr.ErrInvalid
	}
	crSys, ok := ev.Ref.CrSys()
	if !ok {
		upipe.Warn(pipe, "[dejitter] no clock ref in packet")
		return uerr.ErrInvalid
	}

	offset := float64(int64(crSys) - int64(ev.CrProg))
	discontinuity := ev.Discontinuity
	if discontinuity {
		upipe.Warn(pipe, "[dejitter] discontinuity")
	} else if math.Abs(offset-d.offset) > float64(d.cfg.MaxJitter)+3*d.deviation {
		upipe.Warn(pipe, fmt.Sprintf("[dejitter] max jitter reached (%f ms)",
			(offset-d.offset)*1000/float64(uclock.Freq)))
		discontinuity = true
	}
	if discontinuity {
		d.offsetCount = 0
		d.offset = 0
		// but do not reset the deviation
	}

	// low-pass filter
	d.offset = (d.offset*float64(d.offsetCount) + offset) / float64(d.offsetCount+1)
	if d.offsetCount < d.offsetDivider {
		d.offsetCount++
	}

	deviation := offset - d.offset
	d.deviation = math.Sqrt((d.deviation*d.deviation*float64(d.deviationCount) +
		deviation*deviation) / float64(d.deviationCount+1))
	if d.deviationCount < d.deviationDivider {
		d.deviationCount++
	}
	if d.deviation < d.minDeviation {
		d.deviation = d.minDeviation
	}

	wantedOffset := int64(d.offset + 3*d.deviation)
	if d.offsetCount == 1 {
		d.lastCrProg = ev.CrProg
		d.lastCrSys = uint64(int64(ev.CrProg) + wantedOffset)
		d.driftRate = urational.One
	}

	// phase-locked loop
	realCrSys := d.lastCrSys + uint64(int64(ev.CrProg-d.lastCrProg)*
		d.driftRate.Num/int64(d.driftRate.Den))
	realOffset := int64(realCrSys) - int64(ev.CrProg)
	errorOffset := realOffset - wantedOffset

	if d.offsetCount > 1 {
		d.lastCrProg = ev.CrProg
		d.lastCrSys = realCrSys
		freq := int64(uclock.Freq)
		num := d.driftRate.Num * freq / int64(d.driftRate.Den)

		// thresholds for drift changes, slid toward the current state
		desperateLow := d.cfg.DriftDesperateLow
		if num > freq+PllStandard {
			desperateLow += d.cfg.DriftSlide
		}
		standardLow := d.cfg.DriftStandardLow
		if num > freq {
			standardLow += d.cfg.DriftSlide
		}
		standardHigh := d.cfg.DriftStandardHigh
		if num < freq {
			standardHigh -= d.cfg.DriftSlide
		}
		desperateHigh := d.cfg.DriftDesperateHigh
		if num < freq-PllStandard {
			desperateHigh -= d.cfg.DriftSlide
		}

		switch {
		case errorOffset < desperateLow:
			num = freq + PllDesperate
		case errorOffset < standardLow:
			num = freq + PllStandard
		case errorOffset > desperateHigh:
			num = freq - PllDesperate
		case errorOffset > standardHigh:
			num = freq - PllStandard
		default:
			num = freq
		}
		rate := urational.Rational{Num: num, Den: uclock.Freq}.Simplify()
		if rate != d.driftRate {
			upipe.Dbg(pipe, fmt.Sprintf("changing drift rate from %f to %f",
				d.driftRate.Float(), rate.Float()))
		}
		d.driftRate = rate
	}
	return nil
}

func (d *Dejitter) clockTs(pipe upipe.Pipe, ev *upipe.ClockTs) error {
	if ev.Ref == nil || d.offsetCount == 0 || d.driftRate.Den == 0 {
		return uerr.ErrInvalid
	}
	date, typ := ev.Ref.DateProg()
	if typ == uref.DateNone {
		return uerr.ErrInvalid
	}
	dateSys := int64(d.lastCrSys) +
		(int64(date)-int64(d.lastCrProg))*d.driftRate.Num/int64(d.driftRate.Den)
	ev.Ref.SetDateSys(uint64(dateSys), typ)
	ev.Ref.SetClockRate(d.driftRate)
	return nil
}

// vim: foldmethod=marker
